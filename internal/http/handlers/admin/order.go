package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// orderIDRequest 仅携带订单号的请求
type orderIDRequest struct {
	OrderID json.RawMessage `json:"orderId"`
}

func bindOrderID(c *gin.Context, raw json.RawMessage) (uint, bool) {
	orderID, ok := handlershared.ParseID(raw)
	if !ok {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return 0, false
	}
	return orderID, true
}

// AllOrders 订单分页列表
func (h *Handler) AllOrders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status_id")); raw != "" {
		statusID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
			return
		}
		filter.StatusID = uint(statusID)
	}
	if raw := strings.TrimSpace(c.Query("is_important")); raw != "" {
		important, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
			return
		}
		filter.IsImportant = &important
	}

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.SuccessWithPage(c, "Get all orders successful...", gin.H{"orders": orders}, response.NewPagination(page, pageSize, total))
}

// OrderDetail 订单详情（明细、备注、补充照片）
func (h *Handler) OrderDetail(c *gin.Context) {
	var req orderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return
	}
	orderID, ok := bindOrderID(c, req.OrderID)
	if !ok {
		return
	}
	order, err := h.OrderService.GetDetail(orderID)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Get order detail successful...", gin.H{"order": order})
}

// EditDetailOrderRequest 可编辑字段，未出现的字段不修改
type EditDetailOrderRequest struct {
	OrderID       json.RawMessage `json:"orderId"`
	Name          *string         `json:"name"`
	Email         *string         `json:"email"`
	Phone         *string         `json:"phone"`
	Address       *string         `json:"address"`
	SubDistrict   *string         `json:"subDistrict"`
	District      *string         `json:"district"`
	Province      *string         `json:"province"`
	PostalCode    *string         `json:"postalCode"`
	Remark        *string         `json:"remark"`
	EmsTracking   *string         `json:"emsTracking"`
	DiscountCode  *string         `json:"discountCode"`
	TotalAmt      *models.Money   `json:"totalAmt"`
	DeliveryCost  *models.Money   `json:"deliveryCost"`
	DiscountAmt   *models.Money   `json:"discountAmt"`
	GrandTotalAmt *models.Money   `json:"grandTotalAmt"`
	StatusID      *uint           `json:"statusId"`
	IsImportant   *bool           `json:"isImportant"`
}

func moneyPtr(m *models.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}
	value := m.Decimal
	return &value
}

func (r EditDetailOrderRequest) toInput() service.UpdateOrderInput {
	return service.UpdateOrderInput{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		SubDistrict:   r.SubDistrict,
		District:      r.District,
		Province:      r.Province,
		PostalCode:    r.PostalCode,
		Remark:        r.Remark,
		EmsTracking:   r.EmsTracking,
		DiscountCode:  r.DiscountCode,
		TotalAmt:      moneyPtr(r.TotalAmt),
		DeliveryCost:  moneyPtr(r.DeliveryCost),
		DiscountAmt:   moneyPtr(r.DiscountAmt),
		GrandTotalAmt: moneyPtr(r.GrandTotalAmt),
		StatusID:      r.StatusID,
		IsImportant:   r.IsImportant,
	}
}

// EditDetailOrder 后台编辑订单
func (h *Handler) EditDetailOrder(c *gin.Context) {
	var req EditDetailOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
		return
	}
	orderID, ok := bindOrderID(c, req.OrderID)
	if !ok {
		return
	}
	order, err := h.OrderService.UpdateOrder(orderID, req.toInput())
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Edit order successful...", gin.H{"order": order})
}

// ForwardStatusRequest 设置状态
type ForwardStatusRequest struct {
	OrderID  json.RawMessage `json:"orderId"`
	StatusID json.RawMessage `json:"statusId"`
}

// ForwardStatus 直接设置订单状态
func (h *Handler) ForwardStatus(c *gin.Context) {
	var req ForwardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
		return
	}
	orderID, ok := bindOrderID(c, req.OrderID)
	if !ok {
		return
	}
	statusID, ok := handlershared.ParseID(req.StatusID)
	if !ok {
		respondError(c, http.StatusBadRequest, response.CodeStatusNotFound, nil)
		return
	}
	order, err := h.OrderService.ForwardStatus(orderID, statusID)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Forward status successful...", gin.H{"order": order})
}

// EditCartRequest 整体替换明细
type EditCartRequest struct {
	OrderID json.RawMessage `json:"orderId"`
	Cart    json.RawMessage `json:"cart"`
}

// EditCart 后台替换购物车（事务内删除后批量写入）
func (h *Handler) EditCart(c *gin.Context) {
	var req EditCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeCartMissing, nil)
		return
	}
	orderID, ok := bindOrderID(c, req.OrderID)
	if !ok {
		return
	}
	cart, err := service.DecodeCart(req.Cart)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	details, err := h.OrderService.ReplaceCart(orderID, cart)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Edit cart successful...", gin.H{"orderDetails": details})
}

// AddNoteRequest 人工备注
type AddNoteRequest struct {
	OrderID json.RawMessage `json:"orderId"`
	NoteTxt string          `json:"noteTxt"`
}

// AddNote 添加人工备注
func (h *Handler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeNoteEmpty, nil)
		return
	}
	orderID, ok := bindOrderID(c, req.OrderID)
	if !ok {
		return
	}
	note, err := h.OrderService.AddNote(orderID, req.NoteTxt)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Add note successful...", gin.H{"note": note})
}

// AdminPhoto 上传补充照片（multipart: orderId, images[]）
func (h *Handler) AdminPhoto(c *gin.Context) {
	orderID, ok := handlershared.ParseFormID(c.PostForm("orderId"))
	if !ok {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return
	}
	files, err := handlershared.FormImages(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, response.CodeNoImageUploaded, nil)
		return
	}
	staged, err := h.UploadService.StageAll(files)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	defer service.RemoveStagedFiles(staged)

	photos, err := h.OrderService.AddAdminPhotos(c.Request.Context(), orderID, staged)
	if err != nil {
		respondMapped(c, err, adminOrderErrorRules)
		return
	}
	response.Success(c, "Upload admin photo successful...", gin.H{"adminPhotos": photos})
}

// Statuses 状态字典
func (h *Handler) Statuses(c *gin.Context) {
	statuses, err := h.OrderService.ListStatuses()
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.Success(c, "Get statuses successful...", gin.H{"statuses": statuses})
}

// ExportExcel 导出订单明细 xlsx
func (h *Handler) ExportExcel(c *gin.Context) {
	content, err := h.ExportService.ExportOrders()
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.Attachment(c, "data.xlsx", xlsxContentType, content)
}

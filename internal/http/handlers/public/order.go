package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AddOrderRequest 下单请求；金额与购物车保留原始 JSON 以区分缺失与类型错误
type AddOrderRequest struct {
	Input         map[string]interface{} `json:"input"`
	Cart          json.RawMessage        `json:"cart"`
	TotalAmt      json.RawMessage        `json:"totalAmt"`
	DeliveryCost  json.RawMessage        `json:"deliveryCost"`
	DiscountAmt   json.RawMessage        `json:"discountAmt"`
	GrandTotalAmt json.RawMessage        `json:"grandTotalAmt"`
	DiscountCode  string                 `json:"discountCode"`
}

// toInput 依次做结构缺失、收件信息、购物车明细三层校验
func (r AddOrderRequest) toInput() (service.CreateOrderInput, error) {
	if len(r.Input) == 0 {
		return service.CreateOrderInput{}, service.ErrMissing
	}
	totalAmt, ok := service.ParseAmount(r.TotalAmt)
	if !ok {
		return service.CreateOrderInput{}, service.ErrMissing
	}
	grandTotal, ok := service.ParseAmount(r.GrandTotalAmt)
	if !ok {
		return service.CreateOrderInput{}, service.ErrMissing
	}
	deliveryCost, ok := service.ParseAmount(r.DeliveryCost)
	if !ok {
		return service.CreateOrderInput{}, service.ErrMissing
	}
	discount := decimal.Zero
	if len(r.DiscountAmt) > 0 && strings.TrimSpace(string(r.DiscountAmt)) != "null" {
		if discount, ok = service.ParseAmount(r.DiscountAmt); !ok {
			return service.CreateOrderInput{}, service.ErrMissing
		}
	}
	cart, cartErr := service.DecodeCart(r.Cart)
	if errors.Is(cartErr, service.ErrMissing) {
		return service.CreateOrderInput{}, cartErr
	}

	customer := decodeCustomer(r.Input)
	if err := customer.Validate(); err != nil {
		return service.CreateOrderInput{}, err
	}
	if cartErr != nil {
		return service.CreateOrderInput{}, cartErr
	}
	return service.CreateOrderInput{
		Customer: customer,
		Cart:     cart,
		Totals: service.OrderTotals{
			TotalAmt:      totalAmt,
			DeliveryCost:  deliveryCost,
			DiscountAmt:   discount,
			GrandTotalAmt: grandTotal,
		},
		DiscountCode: r.DiscountCode,
	}, nil
}

// decodeCustomer 非字符串字段视为缺失
func decodeCustomer(input map[string]interface{}) service.CustomerInput {
	field := func(key string) string {
		value, _ := input[key].(string)
		return value
	}
	return service.CustomerInput{
		Name:        field("name"),
		Email:       field("email"),
		Phone:       field("phone"),
		Address:     field("address"),
		SubDistrict: field("subDistrict"),
		District:    field("district"),
		Province:    field("province"),
		PostalCode:  field("postalCode"),
		Remark:      field("remark"),
	}
}

// AddOrder 买家下单
func (h *Handler) AddOrder(c *gin.Context) {
	var req AddOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeMissing, nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondMapped(c, err, addOrderErrorRules)
		return
	}
	order, err := h.OrderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		if order != nil {
			requestLog(c).Warnw("order_created_without_qr", "order_id", order.OrderID)
		}
		respondMapped(c, err, addOrderErrorRules)
		return
	}
	response.Success(c, "Add Order successful...", gin.H{
		"orderId":       order.OrderID,
		"qrUrl":         order.PayQrURL,
		"grandTotalAmt": order.GrandTotalAmt,
	})
}

// SendOrder 买家上传付款凭证（multipart: orderId, images）
func (h *Handler) SendOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseFormID(c.PostForm("orderId"))
	if !ok {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return
	}
	file, err := handlershared.FormImage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, response.CodeNoImageUploaded, nil)
		return
	}
	staged, err := h.UploadService.Stage(file)
	if err != nil {
		respondMapped(c, err, sendOrderErrorRules)
		return
	}
	defer staged.Remove()

	order, err := h.OrderService.SubmitSlip(c.Request.Context(), orderID, staged)
	if err != nil {
		respondMapped(c, err, sendOrderErrorRules)
		return
	}
	response.Success(c, "Send order successful...", gin.H{
		"orderId":         order.OrderID,
		"statusId":        order.StatusID,
		"isCheckSlipFail": order.IsCheckSlipFail,
		"checkSlipNote":   order.CheckSlipNote,
	})
}

// CheckOrderRequest 查询订单
type CheckOrderRequest struct {
	OrderID json.RawMessage `json:"orderId"`
	Email   string          `json:"email"`
}

// OrderView 买家可见的订单信息
type OrderView struct {
	OrderID         uint                 `json:"orderId"`
	Name            string               `json:"name"`
	StatusID        uint                 `json:"statusId"`
	StatusName      string               `json:"statusName"`
	TotalAmt        models.Money         `json:"totalAmt"`
	DeliveryCost    models.Money         `json:"deliveryCost"`
	DiscountCode    string               `json:"discountCode"`
	DiscountAmt     models.Money         `json:"discountAmt"`
	GrandTotalAmt   models.Money         `json:"grandTotalAmt"`
	PayQrURL        string               `json:"payQrUrl"`
	IsCheckSlipFail *bool                `json:"isCheckSlipFail"`
	EmsTracking     string               `json:"emsTracking"`
	OrderDetails    []models.OrderDetail `json:"orderDetails"`
}

func newOrderView(order *models.Order) OrderView {
	view := OrderView{
		OrderID:         order.OrderID,
		Name:            order.Name,
		StatusID:        order.StatusID,
		TotalAmt:        order.TotalAmt,
		DeliveryCost:    order.DeliveryCost,
		DiscountCode:    order.DiscountCode,
		DiscountAmt:     order.DiscountAmt,
		GrandTotalAmt:   order.GrandTotalAmt,
		PayQrURL:        order.PayQrURL,
		IsCheckSlipFail: order.IsCheckSlipFail,
		EmsTracking:     order.EmsTracking,
		OrderDetails:    order.OrderDetails,
	}
	if order.Status != nil {
		view.StatusName = order.Status.Name
	}
	return view
}

// CheckOrder 按订单号与邮箱查询
func (h *Handler) CheckOrder(c *gin.Context) {
	var req CheckOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return
	}
	orderID, ok := handlershared.ParseID(req.OrderID)
	if !ok {
		respondError(c, http.StatusBadRequest, response.CodeInvalidOrderID, nil)
		return
	}
	order, err := h.OrderService.CheckOrder(orderID, req.Email)
	if err != nil {
		respondMapped(c, err, handlershared.ConcatMappedErrors(
			handlershared.OrderLookupRules,
			[]handlershared.MappedError{{Target: service.ErrInputMissing, Status: http.StatusBadRequest, Code: response.CodeInputMissing}},
		))
		return
	}
	response.Success(c, "Check order successful...", gin.H{"order": newOrderView(order)})
}

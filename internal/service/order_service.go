package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单生命周期：下单、凭证核验、后台调整，每次状态变更追加一条 Note
type OrderService struct {
	orderRepo  repository.OrderRepository
	noteRepo   repository.NoteRepository
	couponRepo repository.CouponRepository
	statusRepo repository.StatusRepository
	photoRepo  repository.AdminPhotoRepository
	pricing    *PricingValidator
	qr         QRGenerator
	uploader   storage.Uploader
	slip       SlipVerifier
	notifier   OrderNotifier
	receivers  map[string]struct{}
	maxWidth   int
	maxHeight  int
}

// OrderServiceOptions 订单服务依赖
type OrderServiceOptions struct {
	OrderRepo        repository.OrderRepository
	NoteRepo         repository.NoteRepository
	CouponRepo       repository.CouponRepository
	StatusRepo       repository.StatusRepository
	PhotoRepo        repository.AdminPhotoRepository
	Pricing          *PricingValidator
	QR               QRGenerator
	Uploader         storage.Uploader
	Slip             SlipVerifier
	Notifier         OrderNotifier
	ReceiverAccounts []string
	Upload           config.UploadConfig
}

// NewOrderService 创建订单服务
func NewOrderService(opts OrderServiceOptions) *OrderService {
	maxWidth := opts.Upload.MaxWidth
	if maxWidth <= 0 {
		maxWidth = constants.UploadMaxWidth
	}
	maxHeight := opts.Upload.MaxHeight
	if maxHeight <= 0 {
		maxHeight = constants.UploadMaxHeight
	}
	return &OrderService{
		orderRepo:  opts.OrderRepo,
		noteRepo:   opts.NoteRepo,
		couponRepo: opts.CouponRepo,
		statusRepo: opts.StatusRepo,
		photoRepo:  opts.PhotoRepo,
		pricing:    opts.Pricing,
		qr:         opts.QR,
		uploader:   opts.Uploader,
		slip:       opts.Slip,
		notifier:   opts.Notifier,
		receivers:  buildReceiverAllowlist(opts.ReceiverAccounts),
		maxWidth:   maxWidth,
		maxHeight:  maxHeight,
	}
}

// CustomerInput 收件信息
type CustomerInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	SubDistrict string `json:"subDistrict"`
	District    string `json:"district"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	Remark      string `json:"remark"`
}

func (c CustomerInput) normalized() CustomerInput {
	return CustomerInput{
		Name:        strings.TrimSpace(c.Name),
		Email:       strings.TrimSpace(c.Email),
		Phone:       strings.TrimSpace(c.Phone),
		Address:     strings.TrimSpace(c.Address),
		SubDistrict: strings.TrimSpace(c.SubDistrict),
		District:    strings.TrimSpace(c.District),
		Province:    strings.TrimSpace(c.Province),
		PostalCode:  strings.TrimSpace(c.PostalCode),
		Remark:      strings.TrimSpace(c.Remark),
	}
}

// Validate 姓名、邮箱、电话、地址必填
func (c CustomerInput) Validate() error {
	n := c.normalized()
	if n.Name == "" || n.Email == "" || n.Phone == "" || n.Address == "" {
		return ErrInputMissing
	}
	return nil
}

// CreateOrderInput 下单参数
type CreateOrderInput struct {
	Customer     CustomerInput
	Cart         []CartItem
	Totals       OrderTotals
	DiscountCode string
}

// CreateOrder 校验金额后在单个事务中写入订单、明细、核销优惠码与 Note；
// 二维码在事务提交后生成，失败时订单保留并返回 ErrQrUploadFailed
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := input.Customer.Validate(); err != nil {
		return nil, err
	}
	customer := input.Customer.normalized()
	details, err := s.pricing.Validate(input.Cart, input.Totals)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.DiscountCode)
	discount := round2(input.Totals.DiscountAmt)
	if code == "" {
		if !discount.IsZero() {
			return nil, ErrDiscountMismatch
		}
	} else {
		coupon, err := s.couponRepo.GetActiveByCode(code)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponNotFound
		}
		if !ComputeDiscount(coupon, input.Totals.TotalAmt).Equal(discount) {
			return nil, ErrDiscountMismatch
		}
	}

	order := &models.Order{
		Name:          customer.Name,
		Email:         customer.Email,
		Phone:         customer.Phone,
		Address:       customer.Address,
		SubDistrict:   customer.SubDistrict,
		District:      customer.District,
		Province:      customer.Province,
		PostalCode:    customer.PostalCode,
		Remark:        customer.Remark,
		TotalAmt:      models.NewMoneyFromDecimal(input.Totals.TotalAmt),
		DeliveryCost:  models.NewMoneyFromDecimal(input.Totals.DeliveryCost),
		DiscountCode:  code,
		DiscountAmt:   models.NewMoneyFromDecimal(discount),
		GrandTotalAmt: models.NewMoneyFromDecimal(input.Totals.GrandTotalAmt),
		StatusID:      constants.StatusUserNotPaid,
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, details); err != nil {
			return err
		}
		noteTxt := "order created, status userNotPaid"
		if code != "" {
			ok, err := s.couponRepo.WithTx(tx).DeactivateIfActive(code)
			if err != nil {
				return err
			}
			if !ok {
				return ErrCouponNotFound
			}
			noteTxt += fmt.Sprintf(", coupon %s redeemed (-%s)", code, order.DiscountAmt.String())
		}
		return s.noteRepo.WithTx(tx).Create(&models.Note{OrderID: order.OrderID, NoteTxt: noteTxt, IsRobot: true})
	})
	if err != nil {
		return nil, err
	}
	order.OrderDetails = details
	logger.Infow("order_created", "order_id", order.OrderID, "grand_total", order.GrandTotalAmt.String(), "discount_code", code)

	url, err := s.qr.Generate(ctx, order.OrderID, order.GrandTotalAmt.Decimal)
	if err == nil {
		err = s.orderRepo.Update(order.OrderID, map[string]interface{}{"pay_qr_url": url})
	}
	if err != nil {
		logger.Errorw("order_qr_failed", "order_id", order.OrderID, "error", err)
		return order, fmt.Errorf("%w: %v", ErrQrUploadFailed, err)
	}
	order.PayQrURL = url
	s.notifier.OrderCreated(order.OrderID)
	return order, nil
}

// CheckOrder 买家按订单号与邮箱查询订单
func (s *OrderService) CheckOrder(orderID uint, email string) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidOrderID
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInputMissing
	}
	order, err := s.orderRepo.GetByIDAndEmail(orderID, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetDetail 后台订单详情
func (s *OrderService) GetDetail(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidOrderID
	}
	order, err := s.orderRepo.GetWithRelations(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// FindOrdersMissingQR 超过 grace 仍无收款二维码的待付款订单，需人工补生成
func (s *OrderService) FindOrdersMissingQR(grace time.Duration) ([]uint, error) {
	orders, err := s.orderRepo.ListMissingQR(constants.StatusUserNotPaid, time.Now().Add(-grace))
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.OrderID)
	}
	return ids, nil
}

// ListStatuses 状态字典
func (s *OrderService) ListStatuses() ([]models.Status, error) {
	return s.statusRepo.List()
}

func (s *OrderService) mustGetOrder(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidOrderID
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) statusName(statusID uint) (string, error) {
	status, err := s.statusRepo.GetByID(statusID)
	if err != nil {
		return "", err
	}
	if status == nil {
		return "", ErrStatusNotFound
	}
	return status.Name, nil
}

func buildReceiverAllowlist(accounts []string) map[string]struct{} {
	allowlist := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		if normalized := normalizeAccount(account); normalized != "" {
			allowlist[normalized] = struct{}{}
		}
	}
	return allowlist
}

func moneyString(value decimal.Decimal) string {
	return value.Round(2).StringFixed(2)
}

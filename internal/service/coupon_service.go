package service

import (
	"strings"

	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠码服务
type CouponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService 创建优惠码服务
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// Apply 查询可用优惠码，仅返回条款，不做预占
func (s *CouponService) Apply(code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponCodeMissing
	}
	coupon, err := s.couponRepo.GetActiveByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// ComputeDiscount 根据优惠码条款计算折扣金额
func ComputeDiscount(coupon *models.Coupon, total decimal.Decimal) decimal.Decimal {
	if coupon == nil || !total.IsPositive() {
		return decimal.Zero
	}
	amount := coupon.DiscountAmt.Decimal
	switch coupon.DiscountType {
	case models.DiscountTypePercent:
		discount := round2(total.Mul(amount).Div(decimal.NewFromInt(100)))
		if limit := coupon.MaxDiscountAmt.Decimal; limit.IsPositive() && discount.GreaterThan(limit) {
			discount = round2(limit)
		}
		return discount
	case models.DiscountTypeFixed:
		if amount.GreaterThan(total) {
			return round2(total)
		}
		return round2(amount)
	default:
		return decimal.Zero
	}
}

// CreateCouponInput 创建优惠码参数
type CreateCouponInput struct {
	DiscountCode   string
	DiscountType   string
	DiscountAmt    decimal.Decimal
	MaxDiscountAmt decimal.Decimal
}

// Create 创建优惠码
func (s *CouponService) Create(input CreateCouponInput) (*models.Coupon, error) {
	code := strings.TrimSpace(input.DiscountCode)
	if code == "" {
		return nil, ErrCouponCodeMissing
	}
	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	if discountType != models.DiscountTypePercent && discountType != models.DiscountTypeFixed {
		return nil, ErrCouponInvalid
	}
	if !input.DiscountAmt.IsPositive() || input.MaxDiscountAmt.IsNegative() {
		return nil, ErrCouponInvalid
	}
	if discountType == models.DiscountTypePercent && input.DiscountAmt.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrCouponInvalid
	}

	existing, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponExists
	}
	coupon := &models.Coupon{
		DiscountCode:   code,
		DiscountType:   discountType,
		DiscountAmt:    models.NewMoneyFromDecimal(input.DiscountAmt),
		MaxDiscountAmt: models.NewMoneyFromDecimal(input.MaxDiscountAmt),
		IsActive:       true,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// List 优惠码列表
func (s *CouponService) List() ([]models.Coupon, error) {
	return s.couponRepo.List()
}

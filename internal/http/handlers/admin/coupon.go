package admin

import (
	"net/http"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCouponRequest 创建优惠码
type CreateCouponRequest struct {
	DiscountCode   string       `json:"discountCode"`
	DiscountType   string       `json:"discountType"`
	DiscountAmt    models.Money `json:"discountAmt"`
	MaxDiscountAmt models.Money `json:"maxDiscountAmt"`
}

// CreateCoupon 创建优惠码
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeCouponInvalid, nil)
		return
	}
	coupon, err := h.CouponService.Create(service.CreateCouponInput{
		DiscountCode:   req.DiscountCode,
		DiscountType:   req.DiscountType,
		DiscountAmt:    req.DiscountAmt.Decimal,
		MaxDiscountAmt: req.MaxDiscountAmt.Decimal,
	})
	if err != nil {
		respondMapped(c, err, handlershared.CouponRules)
		return
	}
	requestLog(c).Infow("admin_coupon_created", "discount_code", coupon.DiscountCode)
	response.Success(c, "Coupon added...", gin.H{"coupon": coupon})
}

// ListCoupons 优惠码列表
func (h *Handler) ListCoupons(c *gin.Context) {
	coupons, err := h.CouponService.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.Success(c, "Get coupons successful...", gin.H{"coupons": coupons})
}

package public

import (
	"net/http"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ApplyCouponRequest 查询优惠码
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon 返回优惠码条款，由前端计算折扣
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, response.CodeCouponMissing, nil)
		return
	}
	coupon, err := h.CouponService.Apply(req.Code)
	if err != nil {
		respondMapped(c, err, handlershared.CouponRules)
		return
	}
	response.Success(c, "Apply coupon successful...", gin.H{
		"discountCode":   coupon.DiscountCode,
		"discountType":   coupon.DiscountType,
		"discountAmt":    coupon.DiscountAmt,
		"maxDiscountAmt": coupon.MaxDiscountAmt,
	})
}

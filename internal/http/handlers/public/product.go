package public

import (
	"net/http"

	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetProducts 上架商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.ProductService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, response.CodeInternal, err)
		return
	}
	response.Success(c, "Get products successful...", gin.H{"products": products})
}

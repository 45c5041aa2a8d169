package shared

import (
	"net/http"

	"github.com/ICMM2025/icmm-server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUint 从上下文读取 uint 值，缺失时返回 401。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, http.StatusBadRequest, response.CodeBadRequest, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, http.StatusInternalServerError, response.CodeInternal, nil)
		return 0, false
	}
}

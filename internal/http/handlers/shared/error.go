package shared

import (
	"errors"
	"net/http"

	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误码响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, status int, code string, err error) {
	appErr := response.WrapError(status, code, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"status", appErr.Status,
			"code", appErr.Code,
			"error", err,
		)
	}
	response.Error(c, appErr.Status, appErr.Code)
}

// MappedError 业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Status int
	Code   string
}

// RespondMapped 按规则顺序匹配；5xx 规则同样记录原始错误，未命中时返回兜底错误码。
func RespondMapped(c *gin.Context, err error, rules []MappedError) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			var logged error
			if rule.Status >= http.StatusInternalServerError {
				logged = err
			}
			RespondError(c, rule.Status, rule.Code, logged)
			return
		}
	}
	RespondError(c, http.StatusInternalServerError, response.CodeInternal, err)
}

// ConcatMappedErrors 合并多组规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

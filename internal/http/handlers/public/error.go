package public

import (
	"net/http"

	handlershared "github.com/ICMM2025/icmm-server/internal/http/handlers/shared"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, status int, code string, err error) {
	handlershared.RespondError(c, status, code, err)
}

func respondMapped(c *gin.Context, err error, rules []handlershared.MappedError) {
	handlershared.RespondMapped(c, err, rules)
}

var addOrderErrorRules = handlershared.ConcatMappedErrors(
	handlershared.OrderValidationRules,
	handlershared.UploadRules,
)

var sendOrderErrorRules = handlershared.ConcatMappedErrors(
	handlershared.OrderLookupRules,
	handlershared.UploadRules,
)

var virtualRunErrorRules = handlershared.ConcatMappedErrors(
	[]handlershared.MappedError{
		{Target: service.ErrRunnerNotFound, Status: http.StatusBadRequest, Code: response.CodeRunnerNotFound},
		{Target: service.ErrInputMissing, Status: http.StatusBadRequest, Code: response.CodeInputMissing},
	},
	handlershared.UploadRules,
)

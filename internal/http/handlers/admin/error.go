package admin

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

var adminOrderErrorRules = handlershared.ConcatMappedErrors(
	handlershared.OrderLookupRules,
	handlershared.OrderValidationRules,
	handlershared.UploadRules,
	[]handlershared.MappedError{
		{Target: service.ErrStatusNotFound, Status: http.StatusBadRequest, Code: response.CodeStatusNotFound},
		{Target: service.ErrNoUpdateFields, Status: http.StatusBadRequest, Code: response.CodeNoUpdateFields},
		{Target: service.ErrNoteEmpty, Status: http.StatusBadRequest, Code: response.CodeNoteEmpty},
	},
)

var loginErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: response.CodeInvalidCredentials},
}

var runnerErrorRules = []handlershared.MappedError{
	{Target: service.ErrInputMissing, Status: http.StatusBadRequest, Code: response.CodeInputMissing},
}

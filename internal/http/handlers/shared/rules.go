package shared

import (
	"net/http"

	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/service"
)

// OrderValidationRules 下单与改购物车的校验错误
var OrderValidationRules = []MappedError{
	{Target: service.ErrMissing, Status: http.StatusBadRequest, Code: response.CodeMissing},
	{Target: service.ErrInputMissing, Status: http.StatusBadRequest, Code: response.CodeInputMissing},
	{Target: service.ErrCartMissing, Status: http.StatusBadRequest, Code: response.CodeCartMissing},
	{Target: service.ErrInvalidProductOpt, Status: http.StatusBadRequest, Code: response.CodeInvalidProductOptID},
	{Target: service.ErrTotalAmtMismatch, Status: http.StatusBadRequest, Code: response.CodeTotalAmtMismatch},
	{Target: service.ErrGrandTotalMismatch, Status: http.StatusBadRequest, Code: response.CodeGrandTotalMismatch},
	{Target: service.ErrDiscountMismatch, Status: http.StatusBadRequest, Code: response.CodeDiscountMismatch},
	{Target: service.ErrInvalidAmount, Status: http.StatusBadRequest, Code: response.CodeInvalidAmount},
	{Target: service.ErrCouponNotFound, Status: http.StatusBadRequest, Code: response.CodeCouponNotFound},
}

// OrderLookupRules 订单定位错误
var OrderLookupRules = []MappedError{
	{Target: service.ErrInvalidOrderID, Status: http.StatusBadRequest, Code: response.CodeInvalidOrderID},
	{Target: service.ErrOrderNotFound, Status: http.StatusNotFound, Code: response.CodeOrderNotFound},
}

// UploadRules 上传相关错误
var UploadRules = []MappedError{
	{Target: service.ErrNoImageUploaded, Status: http.StatusBadRequest, Code: response.CodeNoImageUploaded},
	{Target: service.ErrUploadInvalid, Status: http.StatusBadRequest, Code: response.CodeUploadInvalid},
	{Target: service.ErrEvidenceUploadFailed, Status: http.StatusInternalServerError, Code: response.CodeFailToUploadEvidence},
	{Target: service.ErrQrUploadFailed, Status: http.StatusInternalServerError, Code: response.CodeFailToUploadQr},
}

// CouponRules 优惠码错误
var CouponRules = []MappedError{
	{Target: service.ErrCouponCodeMissing, Status: http.StatusBadRequest, Code: response.CodeCouponMissing},
	{Target: service.ErrCouponNotFound, Status: http.StatusBadRequest, Code: response.CodeCouponNotFound},
	{Target: service.ErrCouponInvalid, Status: http.StatusBadRequest, Code: response.CodeCouponInvalid},
	{Target: service.ErrCouponExists, Status: http.StatusConflict, Code: response.CodeCouponExists},
}

// EmailRules 邮件发送错误
var EmailRules = []MappedError{
	{Target: service.ErrInvalidEmail, Status: http.StatusBadRequest, Code: response.CodeInvalidEmail},
	{Target: service.ErrEmailRecipientRejected, Status: http.StatusBadRequest, Code: response.CodeEmailRejected},
	{Target: service.ErrEmailServiceDisabled, Status: http.StatusServiceUnavailable, Code: response.CodeEmailUnavailable},
	{Target: service.ErrEmailServiceNotConfigured, Status: http.StatusServiceUnavailable, Code: response.CodeEmailUnavailable},
}

package response

// 客户端可见的错误码，前端按字符串匹配
const (
	CodeMissing              = "errMissing"
	CodeInputMissing         = "errInputMissing"
	CodeCartMissing          = "errCartMissing"
	CodeInvalidProductOptID  = "errInvalidProdectOptId"
	CodeTotalAmtMismatch     = "errTotalAmtMismatch"
	CodeGrandTotalMismatch   = "errGrandTotalMismatch"
	CodeDiscountMismatch     = "errDiscountMismatch"
	CodeInvalidAmount        = "errInvalidAmount"
	CodeInvalidOrderID       = "errInvalidOrderId"
	CodeOrderNotFound        = "errOrderNotFound"
	CodeFailToUploadEvidence = "errFailToUploadEvidence"
	CodeFailToUploadQr       = "errFailToUploadQr"
	CodeCouponNotFound       = "errCodeNotFound"
	CodeCouponMissing        = "errPlaseFillCode"
	CodeCouponInvalid        = "errCouponInvalid"
	CodeCouponExists         = "errCouponExists"
	CodeRunnerNotFound       = "errRunnerNotFound"
	CodeNoImageUploaded      = "errNoImageUploaded"
	CodeUploadInvalid        = "errUploadInvalid"
	CodeStatusNotFound       = "errStatusNotFound"
	CodeNoUpdateFields       = "errNoUpdateFields"
	CodeNoteEmpty            = "errNoteEmpty"
	CodeInvalidEmail         = "errInvalidEmail"
	CodeEmailUnavailable     = "errEmailUnavailable"
	CodeEmailRejected        = "errEmailRejected"
	CodeInvalidCredentials   = "errInvalidCredentials"
	CodeUnauthorized         = "errUnauthorized"
	CodeTooManyRequests      = "errTooManyRequests"
	CodeBadRequest           = "errBadRequest"
	CodeNotFound             = "errNotFound"
	CodeInternal             = "errInternal"
)

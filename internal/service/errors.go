package service

import "errors"

// 下单与订单查询
var (
	ErrMissing            = errors.New("order payload missing")
	ErrInputMissing       = errors.New("customer input missing")
	ErrCartMissing        = errors.New("cart item invalid")
	ErrInvalidProductOpt  = errors.New("product option not found")
	ErrTotalAmtMismatch   = errors.New("total amount mismatch")
	ErrGrandTotalMismatch = errors.New("grand total mismatch")
	ErrDiscountMismatch   = errors.New("discount amount mismatch")
	ErrInvalidAmount      = errors.New("amount out of range")
	ErrInvalidOrderID     = errors.New("invalid order id")
	ErrOrderNotFound      = errors.New("order not found")
	ErrQrUploadFailed     = errors.New("qr upload failed")
)

// 付款凭证与上传
var (
	ErrEvidenceUploadFailed = errors.New("evidence upload failed")
	ErrNoImageUploaded      = errors.New("no image uploaded")
	ErrUploadInvalid        = errors.New("upload file invalid")
)

// 优惠码
var (
	ErrCouponCodeMissing = errors.New("coupon code missing")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponInvalid     = errors.New("coupon terms invalid")
	ErrCouponExists      = errors.New("coupon already exists")
)

// 后台
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStatusNotFound     = errors.New("status not found")
	ErrNoUpdateFields     = errors.New("no fields to update")
	ErrNoteEmpty          = errors.New("note text empty")
	ErrRunnerNotFound     = errors.New("runner not found")
)

// 邮件
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

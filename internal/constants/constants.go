package constants

// 订单状态（对应 statuses 表主键）
const (
	StatusUserNotPaid      uint = 1
	StatusWaitConfirm      uint = 2
	StatusPaymentConfirmed uint = 3
	StatusPaymentRejected  uint = 4
	StatusShipped          uint = 5
	StatusCanceled         uint = 6
)

// 对象存储目录
const (
	FolderQR         = "qr"
	FolderSlip       = "slip"
	FolderAdminPhoto = "admin_photo"
	FolderVirtualRun = "virtual_run"
)

// 上传图片尺寸上限
const (
	UploadMaxWidth  = 1000
	UploadMaxHeight = 1000
)

// 商品列表缓存
const (
	ProductsCacheKey        = "products:list"
	ProductsCacheTTLSeconds = 60
)

// CheckSlipErrorMarker 凭证接口异常时写入 checkSlipNote 的前缀
const CheckSlipErrorMarker = "errCheckSlip"

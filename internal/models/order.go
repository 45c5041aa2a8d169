package models

import (
	"time"
)

// Order 订单表
type Order struct {
	OrderID          uint      `gorm:"primaryKey" json:"orderId"`                                          // 订单号
	Name             string    `gorm:"type:varchar(200);not null" json:"name"`                             // 收件人
	Email            string    `gorm:"type:varchar(200);index;not null" json:"email"`                      // 邮箱
	Phone            string    `gorm:"type:varchar(50);not null" json:"phone"`                             // 电话
	Address          string    `gorm:"type:text;not null" json:"address"`                                  // 地址
	SubDistrict      string    `gorm:"type:varchar(200)" json:"subDistrict"`                               // 街道
	District         string    `gorm:"type:varchar(200)" json:"district"`                                  // 区
	Province         string    `gorm:"type:varchar(200)" json:"province"`                                  // 府
	PostalCode       string    `gorm:"type:varchar(20)" json:"postalCode"`                                 // 邮编
	Remark           string    `gorm:"type:text" json:"remark"`                                            // 备注
	TotalAmt         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"totalAmt"`              // 商品合计
	DeliveryCost     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"deliveryCost"`          // 运费
	DiscountCode     string    `gorm:"type:varchar(100);index" json:"discountCode"`                        // 优惠码（冗余保存，不做外键）
	DiscountAmt      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discountAmt"`           // 优惠金额
	GrandTotalAmt    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"grandTotalAmt"`         // 应付金额
	PayQrURL         string    `gorm:"type:varchar(500)" json:"payQrUrl"`                                  // 收款二维码
	UserUploadPicURL string    `gorm:"type:varchar(500)" json:"userUploadPicUrl"`                          // 付款凭证
	SlipAmt          *Money    `gorm:"type:decimal(20,2)" json:"slipAmt"`                                  // 凭证金额
	SlipSenderName   string    `gorm:"type:varchar(200)" json:"slipSenderName"`                            // 付款人
	SlipSenderAcc    string    `gorm:"type:varchar(100)" json:"slipSenderAcc"`                             // 付款账号
	SlipReceiverName string    `gorm:"type:varchar(200)" json:"slipReceiverName"`                          // 收款人
	SlipReceiverAcc  string    `gorm:"type:varchar(100)" json:"slipReceiverAcc"`                           // 收款账号
	IsCheckSlipFail  *bool     `json:"isCheckSlipFail"`                                                    // 凭证核验结果（nil 表示待人工确认）
	CheckSlipNote    string    `gorm:"type:text" json:"checkSlipNote"`                                     // 核验说明
	StatusID         uint      `gorm:"index;not null;default:1" json:"statusId"`                           // 状态
	IsImportant      bool      `gorm:"not null;default:false" json:"isImportant"`                          // 重点关注
	EmsTracking      string    `gorm:"type:varchar(100)" json:"emsTracking"`                               // 物流单号
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`                                             // 创建时间
	UpdatedAt        time.Time `json:"updatedAt"`                                                          // 更新时间

	// 关联
	Status       *Status       `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderDetails,omitempty"`
	Notes        []Note        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	AdminPhotos  []AdminPhoto  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"adminPhotos,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderDetail 订单明细（下单时快照单价）
type OrderDetail struct {
	OrderDetailID uint  `gorm:"primaryKey" json:"orderDetailId"`
	OrderID       uint  `gorm:"index;not null" json:"orderId"`
	ProductID     uint  `gorm:"index;not null" json:"productId"`
	ProductOptID  uint  `gorm:"index;not null" json:"productOptId"`
	Unit          int   `gorm:"not null" json:"unit"`
	Price         Money `gorm:"type:decimal(20,2);not null" json:"price"`

	Product    *Product    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductOpt *ProductOpt `gorm:"foreignKey:ProductOptID" json:"productOpt,omitempty"`
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_details"
}

// Note 订单审计记录，只追加不修改
type Note struct {
	NoteID    uint      `gorm:"primaryKey" json:"noteId"`
	OrderID   uint      `gorm:"index;not null" json:"orderId"`
	NoteTxt   string    `gorm:"type:text;not null" json:"noteTxt"`
	IsRobot   bool      `gorm:"not null;default:false" json:"isRobot"` // 系统生成 / 人工录入
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName 指定表名
func (Note) TableName() string {
	return "notes"
}

// AdminPhoto 管理员补充的订单照片
type AdminPhoto struct {
	AdminPhotoID uint      `gorm:"primaryKey" json:"adminPhotoId"`
	OrderID      uint      `gorm:"index;not null" json:"orderId"`
	URL          string    `gorm:"type:varchar(500);not null" json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName 指定表名
func (AdminPhoto) TableName() string {
	return "admin_photos"
}

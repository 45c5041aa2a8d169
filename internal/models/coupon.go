package models

import (
	"time"
)

// 优惠类型
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// Coupon 一次性优惠码
type Coupon struct {
	CouponID       uint      `gorm:"primaryKey" json:"couponId"`
	DiscountCode   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"discountCode"`  // 区分大小写
	DiscountType   string    `gorm:"type:varchar(20);not null" json:"discountType"`               // percent / fixed
	DiscountAmt    Money     `gorm:"type:decimal(20,2);not null" json:"discountAmt"`              // 百分比或固定金额
	MaxDiscountAmt Money     `gorm:"type:decimal(20,2);not null;default:0" json:"maxDiscountAmt"` // 0 表示不封顶
	IsActive       bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

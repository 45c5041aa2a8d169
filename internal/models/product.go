package models

import (
	"time"
)

// Product 商品表
type Product struct {
	ProductID uint      `gorm:"primaryKey" json:"productId"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Detail    string    `gorm:"type:text" json:"detail"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProductOpts []ProductOpt `gorm:"foreignKey:ProductID" json:"productOpts,omitempty"`
	ProductPics []ProductPic `gorm:"foreignKey:ProductID" json:"productPics,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductOpt 商品规格，价格以此为准
type ProductOpt struct {
	ProductOptID uint   `gorm:"primaryKey" json:"productOptId"`
	ProductID    uint   `gorm:"index;not null" json:"productId"`
	OptName      string `gorm:"type:varchar(200);not null" json:"optName"`
	Price        Money  `gorm:"type:decimal(20,2);not null" json:"price"`
	IsActive     bool   `gorm:"not null;default:true" json:"isActive"`
}

// TableName 指定表名
func (ProductOpt) TableName() string {
	return "product_opts"
}

// ProductPic 商品图片
type ProductPic struct {
	ProductPicID uint   `gorm:"primaryKey" json:"productPicId"`
	ProductID    uint   `gorm:"index;not null" json:"productId"`
	URL          string `gorm:"type:varchar(500);not null" json:"url"`
	Rank         int    `gorm:"column:sort_rank;not null;default:0" json:"rank"` // 升序展示
}

// TableName 指定表名
func (ProductPic) TableName() string {
	return "product_pics"
}

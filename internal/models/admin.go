package models

import (
	"time"
)

// Admin 后台账号
type Admin struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}

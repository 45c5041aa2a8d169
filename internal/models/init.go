package models

import (
	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStatuses 固定的订单状态字典
func DefaultStatuses() []Status {
	return []Status{
		{StatusID: constants.StatusUserNotPaid, Name: "userNotPaid", Label: "รอชำระเงิน", SortOrder: 1},
		{StatusID: constants.StatusWaitConfirm, Name: "waitConfirm", Label: "รอตรวจสอบการชำระเงิน", SortOrder: 2},
		{StatusID: constants.StatusPaymentConfirmed, Name: "paymentConfirmed", Label: "ชำระเงินแล้ว", SortOrder: 3},
		{StatusID: constants.StatusPaymentRejected, Name: "paymentRejected", Label: "การชำระเงินไม่ถูกต้อง", SortOrder: 4},
		{StatusID: constants.StatusShipped, Name: "shipped", Label: "จัดส่งแล้ว", SortOrder: 5},
		{StatusID: constants.StatusCanceled, Name: "canceled", Label: "ยกเลิก", SortOrder: 6},
	}
}

// SeedStatuses 写入状态字典，已存在的记录更新名称与展示文案
func SeedStatuses(db *gorm.DB) error {
	statuses := DefaultStatuses()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "status_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "label", "sort_order"}),
	}).Create(&statuses).Error
}

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := db.Create(&Admin{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}

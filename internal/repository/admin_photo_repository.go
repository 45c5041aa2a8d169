package repository

import (
	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// AdminPhotoRepository 订单补充照片数据访问接口
type AdminPhotoRepository interface {
	CreateBatch(photos []models.AdminPhoto) error
	ListByOrder(orderID uint) ([]models.AdminPhoto, error)
	WithTx(tx *gorm.DB) *GormAdminPhotoRepository
}

// GormAdminPhotoRepository GORM 实现
type GormAdminPhotoRepository struct {
	db *gorm.DB
}

// NewAdminPhotoRepository 创建照片仓库
func NewAdminPhotoRepository(db *gorm.DB) *GormAdminPhotoRepository {
	return &GormAdminPhotoRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAdminPhotoRepository) WithTx(tx *gorm.DB) *GormAdminPhotoRepository {
	if tx == nil {
		return r
	}
	return &GormAdminPhotoRepository{db: tx}
}

// CreateBatch 批量写入照片
func (r *GormAdminPhotoRepository) CreateBatch(photos []models.AdminPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return r.db.Create(&photos).Error
}

// ListByOrder 列出订单照片
func (r *GormAdminPhotoRepository) ListByOrder(orderID uint) ([]models.AdminPhoto, error) {
	var photos []models.AdminPhoto
	if err := r.db.Where("order_id = ?", orderID).Order("admin_photo_id asc").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

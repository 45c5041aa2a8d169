package repository

import (
	"errors"

	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// StatusRepository 订单状态字典接口
type StatusRepository interface {
	List() ([]models.Status, error)
	GetByID(id uint) (*models.Status, error)
}

// GormStatusRepository GORM 实现
type GormStatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository 创建状态仓库
func NewStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// List 按展示顺序列出状态
func (r *GormStatusRepository) List() ([]models.Status, error) {
	var statuses []models.Status
	if err := r.db.Order("sort_order asc, status_id asc").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetByID 获取状态
func (r *GormStatusRepository) GetByID(id uint) (*models.Status, error) {
	var status models.Status
	if err := r.db.First(&status, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

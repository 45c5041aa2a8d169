package repository

import (
	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// NoteRepository 订单备注数据访问接口
type NoteRepository interface {
	Create(note *models.Note) error
	ListByOrder(orderID uint) ([]models.Note, error)
	WithTx(tx *gorm.DB) *GormNoteRepository
}

// GormNoteRepository GORM 实现
type GormNoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository 创建备注仓库
func NewNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNoteRepository) WithTx(tx *gorm.DB) *GormNoteRepository {
	if tx == nil {
		return r
	}
	return &GormNoteRepository{db: tx}
}

// Create 追加备注
func (r *GormNoteRepository) Create(note *models.Note) error {
	return r.db.Create(note).Error
}

// ListByOrder 按时间顺序列出订单备注
func (r *GormNoteRepository) ListByOrder(orderID uint) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.Where("order_id = ?", orderID).Order("note_id asc").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

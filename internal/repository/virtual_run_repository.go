package repository

import (
	"errors"

	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// VirtualRunRepository 线上跑数据访问接口
type VirtualRunRepository interface {
	FindRunner(userName, email string) (*models.Runner, error)
	CreateRunner(runner *models.Runner) error
	Create(run *models.VirtualRun) error
	List(filter VirtualRunListFilter) ([]models.VirtualRun, int64, error)
}

// GormVirtualRunRepository GORM 实现
type GormVirtualRunRepository struct {
	db *gorm.DB
}

// NewVirtualRunRepository 创建线上跑仓库
func NewVirtualRunRepository(db *gorm.DB) *GormVirtualRunRepository {
	return &GormVirtualRunRepository{db: db}
}

// FindRunner 按姓名与邮箱查找选手
func (r *GormVirtualRunRepository) FindRunner(userName, email string) (*models.Runner, error) {
	var runner models.Runner
	if err := r.db.Where("user_name = ? AND email = ?", userName, email).First(&runner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &runner, nil
}

// CreateRunner 登记选手
func (r *GormVirtualRunRepository) CreateRunner(runner *models.Runner) error {
	return r.db.Create(runner).Error
}

// Create 写入成绩记录
func (r *GormVirtualRunRepository) Create(run *models.VirtualRun) error {
	return r.db.Omit("Runner").Create(run).Error
}

// List 成绩记录列表
func (r *GormVirtualRunRepository) List(filter VirtualRunListFilter) ([]models.VirtualRun, int64, error) {
	query := r.db.Model(&models.VirtualRun{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []models.VirtualRun
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Runner").Order("virtual_run_id desc").Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

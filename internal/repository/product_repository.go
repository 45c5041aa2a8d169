package repository

import (
	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	ListWithOptions(onlyActive bool) ([]models.Product, error)
	ListOptsByIDs(ids []uint) ([]models.ProductOpt, error)
	Create(product *models.Product) error
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// ListWithOptions 获取商品及规格、图片（图片按 rank 升序）
func (r *GormProductRepository) ListWithOptions(onlyActive bool) ([]models.Product, error) {
	query := r.db.Model(&models.Product{}).
		Preload("ProductOpts", func(db *gorm.DB) *gorm.DB { return db.Order("product_opt_id asc") }).
		Preload("ProductPics", func(db *gorm.DB) *gorm.DB { return db.Order("sort_rank asc") })
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var products []models.Product
	if err := query.Order("product_id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListOptsByIDs 按规格 ID 批量查询
func (r *GormProductRepository) ListOptsByIDs(ids []uint) ([]models.ProductOpt, error) {
	if len(ids) == 0 {
		return []models.ProductOpt{}, nil
	}
	var opts []models.ProductOpt
	if err := r.db.Where("product_opt_id IN ?", ids).Find(&opts).Error; err != nil {
		return nil, err
	}
	return opts, nil
}

// Create 创建商品（连同规格与图片）
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

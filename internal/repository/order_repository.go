package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, details []models.OrderDetail) error
	GetByID(id uint) (*models.Order, error)
	GetWithRelations(id uint) (*models.Order, error)
	GetByIDAndEmail(id uint, email string) (*models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListForExport() ([]models.Order, error)
	ListMissingQR(statusID uint, createdBefore time.Time) ([]models.Order, error)
	Update(id uint, updates map[string]interface{}) error
	ListDetails(orderID uint) ([]models.OrderDetail, error)
	ReplaceDetails(orderID uint, details []models.OrderDetail) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建订单，明细单次批量写入
func (r *GormOrderRepository) Create(order *models.Order, details []models.OrderDetail) error {
	if err := r.db.Omit("Status", "OrderDetails", "Notes", "AdminPhotos").Create(order).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].OrderID = order.OrderID
	}
	return r.db.Omit("Product", "ProductOpt").Create(&details).Error
}

// GetByID 根据 ID 获取订单（含状态）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Status").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetWithRelations 获取订单及明细、备注、照片
func (r *GormOrderRepository) GetWithRelations(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Status").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB { return db.Order("order_detail_id asc") }).
		Preload("OrderDetails.Product").
		Preload("OrderDetails.ProductOpt").
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("note_id asc") }).
		Preload("AdminPhotos", func(db *gorm.DB) *gorm.DB { return db.Order("admin_photo_id asc") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndEmail 顾客查单，邮箱需一致
func (r *GormOrderRepository) GetByIDAndEmail(id uint, email string) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Status").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB { return db.Order("order_detail_id asc") }).
		Preload("OrderDetails.Product").
		Preload("OrderDetails.ProductOpt").
		Where("order_id = ? AND email = ?", id, strings.TrimSpace(email)).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListAdmin 后台订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.StatusID != 0 {
		query = query.Where("status_id = ?", filter.StatusID)
	}
	if filter.IsImportant != nil {
		query = query.Where("is_important = ?", *filter.IsImportant)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		op := caseInsensitiveLike(r.db)
		pattern := "%" + search + "%"
		query = query.Where(
			"name "+op+" ? OR email "+op+" ? OR phone "+op+" ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Status").Order("order_id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListForExport 导出全部订单（含明细、商品图片、状态）
func (r *GormOrderRepository) ListForExport() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("Status").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB { return db.Order("order_detail_id asc") }).
		Preload("OrderDetails.Product").
		Preload("OrderDetails.Product.ProductPics", func(db *gorm.DB) *gorm.DB { return db.Order("sort_rank asc") }).
		Preload("OrderDetails.ProductOpt").
		Order("order_id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMissingQR 下单后未生成收款二维码的订单
func (r *GormOrderRepository) ListMissingQR(statusID uint, createdBefore time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("status_id = ? AND (pay_qr_url = '' OR pay_qr_url IS NULL) AND created_at < ?", statusID, createdBefore).
		Order("order_id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Update 按字段更新订单
func (r *GormOrderRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("order_id = ?", id).Updates(updates).Error
}

// ListDetails 获取订单明细
func (r *GormOrderRepository) ListDetails(orderID uint) ([]models.OrderDetail, error) {
	var details []models.OrderDetail
	if err := r.db.Where("order_id = ?", orderID).Order("order_detail_id asc").Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// ReplaceDetails 删除订单全部明细后批量写入新明细，需在事务中调用
func (r *GormOrderRepository) ReplaceDetails(orderID uint, details []models.OrderDetail) error {
	if err := r.db.Where("order_id = ?", orderID).Delete(&models.OrderDetail{}).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].OrderDetailID = 0
		details[i].OrderID = orderID
	}
	return r.db.Omit("Product", "ProductOpt").Create(&details).Error
}

package repository

import (
	"errors"

	"github.com/ICMM2025/icmm-server/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠码数据访问接口
type CouponRepository interface {
	Create(coupon *models.Coupon) error
	GetByCode(code string) (*models.Coupon, error)
	GetActiveByCode(code string) (*models.Coupon, error)
	DeactivateIfActive(code string) (bool, error)
	List() ([]models.Coupon, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠码仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// Create 创建优惠码
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// GetByCode 按优惠码精确查询（区分大小写）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.Where("discount_code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetActiveByCode 查询仍可使用的优惠码
func (r *GormCouponRepository) GetActiveByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.Where("discount_code = ? AND is_active = ?", code, true).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// DeactivateIfActive 条件更新停用优惠码，返回是否由本次调用停用
func (r *GormCouponRepository) DeactivateIfActive(code string) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("discount_code = ? AND is_active = ?", code, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List 列出全部优惠码
func (r *GormCouponRepository) List() ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.Order("coupon_id desc").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

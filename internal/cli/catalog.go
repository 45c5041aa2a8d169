package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/cache"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Catalog 商品目录种子文件
type Catalog struct {
	Products []CatalogProduct `yaml:"products"`
	Coupons  []CatalogCoupon  `yaml:"coupons"`
}

// CatalogProduct 商品，按名称匹配已有记录
type CatalogProduct struct {
	Name     string          `yaml:"name"`
	Detail   string          `yaml:"detail"`
	IsActive *bool           `yaml:"is_active"`
	Options  []CatalogOption `yaml:"options"`
	Pics     []string        `yaml:"pics"`
}

// CatalogOption 规格，按名称匹配
type CatalogOption struct {
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	IsActive *bool  `yaml:"is_active"`
}

// CatalogCoupon 优惠码，已存在时跳过
type CatalogCoupon struct {
	Code           string `yaml:"code"`
	Type           string `yaml:"type"`
	Amount         string `yaml:"amount"`
	MaxDiscountAmt string `yaml:"max_discount_amt"`
}

// SeedResult 导入统计
type SeedResult struct {
	ProductsCreated int
	ProductsUpdated int
	CouponsCreated  int
	CouponsSkipped  int
}

// LoadCatalog 读取并校验 YAML 目录
func LoadCatalog(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(content)
}

// ParseCatalog 解析目录内容
func ParseCatalog(content []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, product := range catalog.Products {
		if strings.TrimSpace(product.Name) == "" {
			return nil, fmt.Errorf("product #%d: name is required", i+1)
		}
		for _, opt := range product.Options {
			if strings.TrimSpace(opt.Name) == "" {
				return nil, fmt.Errorf("product %q: option name is required", product.Name)
			}
			price, err := decimal.NewFromString(strings.TrimSpace(opt.Price))
			if err != nil || !price.IsPositive() {
				return nil, fmt.Errorf("product %q option %q: invalid price %q", product.Name, opt.Name, opt.Price)
			}
		}
	}
	return &catalog, nil
}

// SeedCatalog 幂等导入：商品与规格按名称更新或新建，图片整体替换，优惠码只新增
func SeedCatalog(ctx context.Context, db *gorm.DB, c *cache.Cache, catalog *Catalog) (*SeedResult, error) {
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	result := &SeedResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range catalog.Products {
			created, err := upsertProduct(tx, item)
			if err != nil {
				return fmt.Errorf("product %q: %w", item.Name, err)
			}
			if created {
				result.ProductsCreated++
			} else {
				result.ProductsUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	service.NewProductService(repository.NewProductRepository(db), c).Invalidate(ctx)

	coupons := service.NewCouponService(repository.NewCouponRepository(db))
	for _, item := range catalog.Coupons {
		input, err := item.toInput()
		if err != nil {
			return result, err
		}
		if _, err := coupons.Create(input); err != nil {
			if errors.Is(err, service.ErrCouponExists) {
				result.CouponsSkipped++
				continue
			}
			return result, fmt.Errorf("coupon %q: %w", item.Code, err)
		}
		result.CouponsCreated++
	}
	logger.Infow("cli_catalog_seeded",
		"products_created", result.ProductsCreated,
		"products_updated", result.ProductsUpdated,
		"coupons_created", result.CouponsCreated,
		"coupons_skipped", result.CouponsSkipped,
	)
	return result, nil
}

func (c CatalogCoupon) toInput() (service.CreateCouponInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Amount))
	if err != nil {
		return service.CreateCouponInput{}, fmt.Errorf("coupon %q: invalid amount %q", c.Code, c.Amount)
	}
	maxDiscount := decimal.Zero
	if raw := strings.TrimSpace(c.MaxDiscountAmt); raw != "" {
		if maxDiscount, err = decimal.NewFromString(raw); err != nil {
			return service.CreateCouponInput{}, fmt.Errorf("coupon %q: invalid max_discount_amt %q", c.Code, c.MaxDiscountAmt)
		}
	}
	return service.CreateCouponInput{
		DiscountCode:   c.Code,
		DiscountType:   c.Type,
		DiscountAmt:    amount,
		MaxDiscountAmt: maxDiscount,
	}, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func upsertProduct(tx *gorm.DB, item CatalogProduct) (bool, error) {
	name := strings.TrimSpace(item.Name)
	var product models.Product
	err := tx.Where("name = ?", name).First(&product).Error
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = models.Product{Name: name, Detail: item.Detail, IsActive: boolOr(item.IsActive, true)}
		if err := tx.Create(&product).Error; err != nil {
			return false, err
		}
		created = true
	case err != nil:
		return false, err
	default:
		updates := map[string]interface{}{"detail": item.Detail, "is_active": boolOr(item.IsActive, true)}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return false, err
		}
	}

	for _, opt := range item.Options {
		price, _ := decimal.NewFromString(strings.TrimSpace(opt.Price))
		optName := strings.TrimSpace(opt.Name)
		var existing models.ProductOpt
		err := tx.Where("product_id = ? AND opt_name = ?", product.ProductID, optName).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			newOpt := models.ProductOpt{
				ProductID: product.ProductID,
				OptName:   optName,
				Price:     models.NewMoneyFromDecimal(price),
				IsActive:  boolOr(opt.IsActive, true),
			}
			if err := tx.Create(&newOpt).Error; err != nil {
				return false, err
			}
		case err != nil:
			return false, err
		default:
			updates := map[string]interface{}{"price": models.NewMoneyFromDecimal(price), "is_active": boolOr(opt.IsActive, true)}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return false, err
			}
		}
	}

	if item.Pics != nil {
		if err := tx.Where("product_id = ?", product.ProductID).Delete(&models.ProductPic{}).Error; err != nil {
			return false, err
		}
		pics := make([]models.ProductPic, 0, len(item.Pics))
		for i, url := range item.Pics {
			if url = strings.TrimSpace(url); url != "" {
				pics = append(pics, models.ProductPic{ProductID: product.ProductID, URL: url, Rank: i + 1})
			}
		}
		if len(pics) > 0 {
			if err := tx.Create(&pics).Error; err != nil {
				return false, err
			}
		}
	}
	return created, nil
}

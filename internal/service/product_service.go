package service

import (
	"context"
	"time"

	"github.com/ICMM2025/icmm-server/internal/cache"
	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
)

// ProductService 商品目录
type ProductService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
}

// NewProductService 创建商品服务；cache 可为空
func NewProductService(productRepo repository.ProductRepository, c *cache.Cache) *ProductService {
	return &ProductService{productRepo: productRepo, cache: c}
}

// ListPublic 上架商品（含规格与按 rank 排序的图片），启用 Redis 时缓存 60 秒
func (s *ProductService) ListPublic(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	hit, err := s.cache.GetJSON(ctx, constants.ProductsCacheKey, &cached)
	if err != nil {
		logger.Warnw("products_cache_read_failed", "error", err)
	}
	if hit {
		return cached, nil
	}

	products, err := s.productRepo.ListWithOptions(true)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(constants.ProductsCacheTTLSeconds) * time.Second
	if err := s.cache.SetJSON(ctx, constants.ProductsCacheKey, products, ttl); err != nil {
		logger.Warnw("products_cache_write_failed", "error", err)
	}
	return products, nil
}

// Create 创建商品并清理缓存
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate 清理商品列表缓存
func (s *ProductService) Invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, constants.ProductsCacheKey); err != nil {
		logger.Warnw("products_cache_invalidate_failed", "error", err)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
)

func TestProductListPublicWithoutCache(t *testing.T) {
	db := openServiceTestDB(t)
	tee := seedTee(t, db)
	hidden := models.Product{Name: "Hidden Cap", IsActive: true}
	if err := db.Create(&hidden).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := db.Model(&hidden).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	svc := NewProductService(repository.NewProductRepository(db), nil)
	products, err := svc.ListPublic(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != tee.ProductID || len(products[0].ProductOpts) != 2 {
		t.Fatalf("unexpected products: %+v", products)
	}

	if err := svc.Create(context.Background(), &models.Product{Name: "Medal Hanger", IsActive: true}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	products, err = svc.ListPublic(context.Background())
	if err != nil || len(products) != 2 {
		t.Fatalf("expected two products after create, got %d err=%v", len(products), err)
	}
}

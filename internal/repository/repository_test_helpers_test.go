package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/ICMM2025/icmm-server/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := models.SeedStatuses(db); err != nil {
		t.Fatalf("seed statuses failed: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		Name:     "ICMM Finisher Tee",
		IsActive: true,
		ProductOpts: []models.ProductOpt{
			{OptName: "M", Price: models.NewMoneyFromFloat(50), IsActive: true},
			{OptName: "L", Price: models.NewMoneyFromFloat(75.5), IsActive: true},
		},
		ProductPics: []models.ProductPic{
			{URL: "https://cdn.example/back.jpg", Rank: 2},
			{URL: "https://cdn.example/front.jpg", Rank: 1},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

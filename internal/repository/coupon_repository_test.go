package repository

import (
	"testing"

	"github.com/ICMM2025/icmm-server/internal/models"
)

func TestCouponDeactivateIfActiveOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewCouponRepository(db)
	if err := repo.Create(&models.Coupon{
		DiscountCode: "SAVE10",
		DiscountType: models.DiscountTypeFixed,
		DiscountAmt:  models.NewMoneyFromFloat(10),
		IsActive:     true,
	}); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	first, err := repo.DeactivateIfActive("SAVE10")
	if err != nil || !first {
		t.Fatalf("expected first deactivation to win, got %v %v", first, err)
	}
	second, err := repo.DeactivateIfActive("SAVE10")
	if err != nil || second {
		t.Fatalf("expected second deactivation to lose, got %v %v", second, err)
	}

	active, err := repo.GetActiveByCode("SAVE10")
	if err != nil || active != nil {
		t.Fatalf("expected no active coupon, got %+v %v", active, err)
	}
	stored, err := repo.GetByCode("SAVE10")
	if err != nil || stored == nil || stored.IsActive {
		t.Fatalf("expected stored inactive coupon, got %+v %v", stored, err)
	}
}

func TestCouponLookupIsCaseSensitive(t *testing.T) {
	db := openTestDB(t)
	repo := NewCouponRepository(db)
	if err := repo.Create(&models.Coupon{
		DiscountCode: "SAVE10",
		DiscountType: models.DiscountTypeFixed,
		DiscountAmt:  models.NewMoneyFromFloat(10),
		IsActive:     true,
	}); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	got, err := repo.GetActiveByCode("save10")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected case-sensitive miss, got %+v", got)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/payment/slipcheck"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

// seedTee 创建商品：规格 M=50, L=75.50
func seedTee(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		Name:     "ICMM Finisher Tee",
		IsActive: true,
		ProductOpts: []models.ProductOpt{
			{OptName: "M", Price: models.NewMoneyFromFloat(50), IsActive: true},
			{OptName: "L", Price: models.NewMoneyFromFloat(75.5), IsActive: true},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func seedCoupon(t *testing.T, db *gorm.DB, code, discountType string, amount, max float64) {
	t.Helper()
	coupon := models.Coupon{
		DiscountCode:   code,
		DiscountType:   discountType,
		DiscountAmt:    models.NewMoneyFromFloat(amount),
		MaxDiscountAmt: models.NewMoneyFromFloat(max),
		IsActive:       true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
}

func countNotes(t *testing.T, db *gorm.DB, orderID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Note{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		t.Fatalf("count notes failed: %v", err)
	}
	return n
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type fakeUploader struct {
	mu     sync.Mutex
	err    error
	inputs []storage.UploadInput
}

func (f *fakeUploader) Upload(_ context.Context, input storage.UploadInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/" + input.Folder + "/" + input.PublicID, nil
}

type fakeQR struct {
	err    error
	calls  int
	amount decimal.Decimal
}

func (f *fakeQR) Generate(_ context.Context, orderID uint, amount decimal.Decimal) (string, error) {
	f.calls++
	f.amount = amount
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("https://cdn.test/qr/qr_%d", orderID), nil
}

type fakeSlip struct {
	result *slipcheck.Result
	err    error
}

func (f *fakeSlip) Verify(_ context.Context, _ string, _ []byte) (*slipcheck.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	created []uint
	changed []uint
}

func (f *fakeNotifier) OrderCreated(orderID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, orderID)
}

func (f *fakeNotifier) OrderStatusChanged(_ uint, statusID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, statusID)
}

type orderFixture struct {
	db       *gorm.DB
	svc      *OrderService
	coupons  *CouponService
	uploader *fakeUploader
	qr       *fakeQR
	slip     *fakeSlip
	notifier *fakeNotifier
	product  models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := openServiceTestDB(t)
	f := &orderFixture{
		db:       db,
		uploader: &fakeUploader{},
		qr:       &fakeQR{},
		slip:     &fakeSlip{},
		notifier: &fakeNotifier{},
		product:  seedTee(t, db),
	}
	couponRepo := repository.NewCouponRepository(db)
	f.coupons = NewCouponService(couponRepo)
	f.svc = NewOrderService(OrderServiceOptions{
		OrderRepo:        repository.NewOrderRepository(db),
		NoteRepo:         repository.NewNoteRepository(db),
		CouponRepo:       couponRepo,
		StatusRepo:       repository.NewStatusRepository(db),
		PhotoRepo:        repository.NewAdminPhotoRepository(db),
		Pricing:          NewPricingValidator(repository.NewProductRepository(db)),
		QR:               f.qr,
		Uploader:         f.uploader,
		Slip:             f.slip,
		Notifier:         f.notifier,
		ReceiverAccounts: []string{"123-4-56789-0"},
		Upload:           config.UploadConfig{},
	})
	return f
}

func (f *orderFixture) optM() models.ProductOpt {
	return f.product.ProductOpts[0]
}

// createOrder 下单：M x2 + 运费 30
func (f *orderFixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	opt := f.optM()
	order, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: CustomerInput{Name: "Somchai", Email: "somchai@example.com", Phone: "0812345678", Address: "1 Sukhumvit"},
		Cart:     []CartItem{{ProductID: opt.ProductID, ProductOptID: opt.ProductOptID, Unit: 2, Price: dec("50")}},
		Totals:   OrderTotals{TotalAmt: dec("100"), DeliveryCost: dec("30"), GrandTotalAmt: dec("130")},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func writeStagedFile(t *testing.T) *StagedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slip.png")
	content := []byte("\x89PNG\r\n\x1a\nslip")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write staged file failed: %v", err)
	}
	return &StagedFile{Path: path, Filename: "slip.png", ContentType: "image/png", Size: int64(len(content))}
}

var errForced = errors.New("forced failure")

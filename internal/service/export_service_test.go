package service

import (
	"bytes"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/xuri/excelize/v2"
)

func TestExportOrdersWritesOneRowPerDetail(t *testing.T) {
	f := newOrderFixture(t)
	pic := models.ProductPic{ProductID: f.product.ProductID, URL: "https://cdn.example/front.jpg", Rank: 1}
	if err := f.db.Create(&pic).Error; err != nil {
		t.Fatalf("create pic failed: %v", err)
	}
	order := f.createOrder(t)

	content, err := NewExportService(repository.NewOrderRepository(f.db)).ExportOrders()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open xlsx failed: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(ExportSheetName)
	if err != nil {
		t.Fatalf("read rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Order ID" || rows[0][9] != "Product Pic URL" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	row := rows[1]
	if row[1] != order.Name || row[4] != "ICMM Finisher Tee" || row[5] != "M" || row[6] != "2" || row[7] != "50" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[8] != "userNotPaid" || row[9] != pic.URL {
		t.Fatalf("unexpected status or pic: %v", row)
	}
}

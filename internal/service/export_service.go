package service

import (
	"bytes"
	"fmt"

	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"

	"github.com/xuri/excelize/v2"
)

// ExportSheetName 导出工作表名
const ExportSheetName = "Orders"

// ExportHeaders 导出列
var ExportHeaders = []string{
	"Order ID", "Name", "Email", "Phone", "Product", "Option", "Qty", "Price", "Status", "Product Pic URL",
}

// ExportService 订单导出
type ExportService struct {
	orderRepo repository.OrderRepository
}

// NewExportService 创建导出服务
func NewExportService(orderRepo repository.OrderRepository) *ExportService {
	return &ExportService{orderRepo: orderRepo}
}

// ExportOrders 每条明细一行，生成 xlsx
func (s *ExportService) ExportOrders() ([]byte, error) {
	orders, err := s.orderRepo.ListForExport()
	if err != nil {
		return nil, err
	}
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), ExportSheetName); err != nil {
		return nil, err
	}
	if err := setExportRow(file, 1, toCells(ExportHeaders)); err != nil {
		return nil, err
	}
	row := 2
	for _, order := range orders {
		for _, detail := range order.OrderDetails {
			if err := setExportRow(file, row, exportCells(order, detail)); err != nil {
				return nil, err
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCells(order models.Order, detail models.OrderDetail) []interface{} {
	productName, optName, picURL, statusName := "", "", "", ""
	if detail.Product != nil {
		productName = detail.Product.Name
		if len(detail.Product.ProductPics) > 0 {
			picURL = detail.Product.ProductPics[0].URL
		}
	}
	if detail.ProductOpt != nil {
		optName = detail.ProductOpt.OptName
	}
	if order.Status != nil {
		statusName = order.Status.Name
	}
	price, _ := detail.Price.Decimal.Float64()
	return []interface{}{
		order.OrderID, order.Name, order.Email, order.Phone,
		productName, optName, detail.Unit, price, statusName, picURL,
	}
}

func setExportRow(file *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return file.SetSheetRow(ExportSheetName, cell, &values)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}
	return cells
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateOrderInput 后台可编辑字段，nil 表示不修改
type UpdateOrderInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	SubDistrict   *string
	District      *string
	Province      *string
	PostalCode    *string
	Remark        *string
	EmsTracking   *string
	DiscountCode  *string
	TotalAmt      *decimal.Decimal
	DeliveryCost  *decimal.Decimal
	DiscountAmt   *decimal.Decimal
	GrandTotalAmt *decimal.Decimal
	StatusID      *uint
	IsImportant   *bool
}

func (in UpdateOrderInput) columns() map[string]interface{} {
	updates := make(map[string]interface{})
	putString := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	putMoney := func(column string, value *decimal.Decimal) {
		if value != nil {
			updates[column] = models.NewMoneyFromDecimal(*value)
		}
	}
	putString("name", in.Name)
	putString("email", in.Email)
	putString("phone", in.Phone)
	putString("address", in.Address)
	putString("sub_district", in.SubDistrict)
	putString("district", in.District)
	putString("province", in.Province)
	putString("postal_code", in.PostalCode)
	putString("remark", in.Remark)
	putString("ems_tracking", in.EmsTracking)
	putString("discount_code", in.DiscountCode)
	putMoney("total_amt", in.TotalAmt)
	putMoney("delivery_cost", in.DeliveryCost)
	putMoney("discount_amt", in.DiscountAmt)
	putMoney("grand_total_amt", in.GrandTotalAmt)
	if in.StatusID != nil {
		updates["status_id"] = *in.StatusID
	}
	if in.IsImportant != nil {
		updates["is_important"] = *in.IsImportant
	}
	return updates
}

// UpdateOrder 白名单字段部分更新，连同一条 Note 写入
func (s *OrderService) UpdateOrder(orderID uint, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.mustGetOrder(orderID)
	if err != nil {
		return nil, err
	}
	updates := input.columns()
	if len(updates) == 0 {
		return nil, ErrNoUpdateFields
	}
	statusID := order.StatusID
	if input.StatusID != nil {
		statusID = *input.StatusID
	}
	statusName, err := s.statusName(statusID)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(updates))
	for column := range updates {
		fields = append(fields, column)
	}
	sort.Strings(fields)
	noteTxt := fmt.Sprintf("admin edited order (%s), status %s", strings.Join(fields, ", "), statusName)

	if err := s.updateWithNote(orderID, updates, noteTxt); err != nil {
		return nil, err
	}
	if statusID != order.StatusID {
		s.notifier.OrderStatusChanged(orderID, statusID)
	}
	return s.orderRepo.GetByID(orderID)
}

// ReplaceCart 事务内整体替换明细；Note 在事务提交后追加
func (s *OrderService) ReplaceCart(orderID uint, cart []CartItem) ([]models.OrderDetail, error) {
	order, err := s.mustGetOrder(orderID)
	if err != nil {
		return nil, err
	}
	details, err := s.pricing.AdminDetails(cart)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).ReplaceDetails(orderID, details)
	}); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, detail := range details {
		sum = sum.Add(detail.Price.Decimal.Mul(decimal.NewFromInt(int64(detail.Unit))))
	}
	statusName, err := s.statusName(order.StatusID)
	if err != nil {
		statusName = fmt.Sprintf("%d", order.StatusID)
	}
	noteTxt := fmt.Sprintf("admin edited cart (%d lines, items total %s), status %s", len(details), moneyString(sum), statusName)
	if err := s.noteRepo.Create(&models.Note{OrderID: orderID, NoteTxt: noteTxt, IsRobot: true}); err != nil {
		logger.Errorw("order_cart_note_failed", "order_id", orderID, "error", err)
	}
	return s.orderRepo.ListDetails(orderID)
}

// ForwardStatus 直接设置状态，不校验流转方向
func (s *OrderService) ForwardStatus(orderID, statusID uint) (*models.Order, error) {
	if _, err := s.mustGetOrder(orderID); err != nil {
		return nil, err
	}
	statusName, err := s.statusName(statusID)
	if err != nil {
		return nil, err
	}
	noteTxt := fmt.Sprintf("admin forwarded status to %s", statusName)
	if err := s.updateWithNote(orderID, map[string]interface{}{"status_id": statusID}, noteTxt); err != nil {
		return nil, err
	}
	s.notifier.OrderStatusChanged(orderID, statusID)
	return s.orderRepo.GetByID(orderID)
}

// AddNote 人工备注
func (s *OrderService) AddNote(orderID uint, text string) (*models.Note, error) {
	if _, err := s.mustGetOrder(orderID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoteEmpty
	}
	note := &models.Note{OrderID: orderID, NoteTxt: text, IsRobot: false}
	if err := s.noteRepo.Create(note); err != nil {
		return nil, err
	}
	return note, nil
}

// AddAdminPhotos 上传补充照片并追加一条 Note
func (s *OrderService) AddAdminPhotos(ctx context.Context, orderID uint, files []*StagedFile) ([]models.AdminPhoto, error) {
	if _, err := s.mustGetOrder(orderID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoImageUploaded
	}
	stamp := time.Now().Unix()
	photos := make([]models.AdminPhoto, 0, len(files))
	for i, file := range files {
		url, err := s.uploader.Upload(ctx, storage.UploadInput{
			FilePath:    file.Path,
			ContentType: file.ContentType,
			Folder:      constants.FolderAdminPhoto,
			PublicID:    fmt.Sprintf("order_%d_%d_%d", orderID, stamp, i),
			MaxWidth:    s.maxWidth,
			MaxHeight:   s.maxHeight,
		})
		if err != nil {
			logger.Errorw("admin_photo_upload_failed", "order_id", orderID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrEvidenceUploadFailed, err)
		}
		photos = append(photos, models.AdminPhoto{OrderID: orderID, URL: url})
	}

	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.photoRepo.WithTx(tx).CreateBatch(photos); err != nil {
			return err
		}
		noteTxt := fmt.Sprintf("admin attached %d photo(s)", len(photos))
		return s.noteRepo.WithTx(tx).Create(&models.Note{OrderID: orderID, NoteTxt: noteTxt, IsRobot: true})
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

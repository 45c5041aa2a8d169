package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/payment/slipcheck"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"gorm.io/gorm"
)

// SlipVerifier 第三方转账凭证识别
type SlipVerifier interface {
	Verify(ctx context.Context, filename string, content []byte) (*slipcheck.Result, error)
}

func normalizeAccount(account string) string {
	return slipcheck.NormalizeAccount(account)
}

// SubmitSlip 买家上传付款凭证：上传存储、状态推进到 waitConfirm、调用凭证接口比对金额与收款账号。
// 存储上传失败时状态仍推进并返回 ErrEvidenceUploadFailed；凭证接口异常不判定结果，只写入诊断说明。
func (s *OrderService) SubmitSlip(ctx context.Context, orderID uint, file *StagedFile) (*models.Order, error) {
	if file == nil {
		return nil, ErrNoImageUploaded
	}
	order, err := s.mustGetOrder(orderID)
	if err != nil {
		return nil, err
	}
	log := logger.SW("order_id", orderID)

	url, uploadErr := s.uploader.Upload(ctx, storage.UploadInput{
		FilePath:    file.Path,
		ContentType: file.ContentType,
		Folder:      constants.FolderSlip,
		PublicID:    fmt.Sprintf("slip_%d_%d", orderID, time.Now().Unix()),
		MaxWidth:    s.maxWidth,
		MaxHeight:   s.maxHeight,
	})
	if uploadErr != nil {
		log.Errorw("slip_evidence_upload_failed", "error", uploadErr)
		updates := map[string]interface{}{"status_id": constants.StatusWaitConfirm}
		note := "slip submitted but evidence upload failed, status waitConfirm"
		if err := s.updateWithNote(orderID, updates, note); err != nil {
			return nil, err
		}
		s.notifier.OrderStatusChanged(orderID, constants.StatusWaitConfirm)
		return nil, fmt.Errorf("%w: %v", ErrEvidenceUploadFailed, uploadErr)
	}

	updates := map[string]interface{}{
		"user_upload_pic_url": url,
		"status_id":           constants.StatusWaitConfirm,
	}
	var note string

	content, readErr := file.Read()
	var result *slipcheck.Result
	verifyErr := readErr
	if verifyErr == nil {
		result, verifyErr = s.slip.Verify(ctx, file.Filename, content)
	}
	if verifyErr != nil {
		log.Warnw("slip_verify_failed", "error", verifyErr)
		updates["is_check_slip_fail"] = nil
		updates["check_slip_note"] = constants.CheckSlipErrorMarker + ": " + verifyErr.Error()
		note = "slip submitted, automatic check unavailable, status waitConfirm"
	} else {
		failed, reasons := s.reconcileSlip(order, result)
		updates["slip_amt"] = models.NewMoneyFromDecimal(result.Amount)
		updates["slip_sender_name"] = result.SenderName
		updates["slip_sender_acc"] = result.SenderAccount
		updates["slip_receiver_name"] = result.ReceiverName
		updates["slip_receiver_acc"] = result.ReceiverAccount
		updates["is_check_slip_fail"] = failed
		if failed {
			updates["check_slip_note"] = "slip mismatch: " + strings.Join(reasons, "; ")
			note = "slip submitted, automatic check mismatch, status waitConfirm"
		} else {
			updates["check_slip_note"] = "slip matched"
			note = "slip submitted, automatic check matched, status waitConfirm"
		}
		log.Infow("slip_verified", "is_check_slip_fail", failed, "slip_amt", moneyString(result.Amount))
	}

	if err := s.updateWithNote(orderID, updates, note); err != nil {
		return nil, err
	}
	s.notifier.OrderStatusChanged(orderID, constants.StatusWaitConfirm)
	return s.orderRepo.GetByID(orderID)
}

// reconcileSlip 金额不一致或收款账号不在白名单即判定失败
func (s *OrderService) reconcileSlip(order *models.Order, result *slipcheck.Result) (bool, []string) {
	var reasons []string
	if !result.Amount.Round(2).Equal(order.GrandTotalAmt.Decimal.Round(2)) {
		reasons = append(reasons, fmt.Sprintf("amount %s expected %s", moneyString(result.Amount), order.GrandTotalAmt.String()))
	}
	if !s.receiverAllowed(result.ReceiverAccount) {
		reasons = append(reasons, fmt.Sprintf("receiver %s not allowed", result.ReceiverAccount))
	}
	return len(reasons) > 0, reasons
}

// receiverAllowed 接口常返回掩码账号（xxx-x-x5678-x），白名单可填完整账号
func (s *OrderService) receiverAllowed(account string) bool {
	normalized := normalizeAccount(account)
	if _, ok := s.receivers[normalized]; ok {
		return true
	}
	for allowed := range s.receivers {
		if slipcheck.MaskedAccountMatches(normalized, allowed) {
			return true
		}
	}
	return false
}

func (s *OrderService) updateWithNote(orderID uint, updates map[string]interface{}, noteTxt string) error {
	return s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Update(orderID, updates); err != nil {
			return err
		}
		return s.noteRepo.WithTx(tx).Create(&models.Note{OrderID: orderID, NoteTxt: noteTxt, IsRobot: true})
	})
}

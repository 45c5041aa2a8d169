package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/payment/promptpay"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"github.com/shopspring/decimal"
)

const defaultQRSize = 400

// QRGenerator 生成收款二维码并返回图片地址
type QRGenerator interface {
	Generate(ctx context.Context, orderID uint, amount decimal.Decimal) (string, error)
}

// PromptPayQRService 基于 PromptPay 的二维码生成
type PromptPayQRService struct {
	cfg      config.PromptPayConfig
	uploader storage.Uploader
}

// NewPromptPayQRService 创建二维码服务
func NewPromptPayQRService(cfg config.PromptPayConfig, uploader storage.Uploader) *PromptPayQRService {
	return &PromptPayQRService{cfg: cfg, uploader: uploader}
}

// Payload 构造二维码内容，Ref1 使用订单号
func (s *PromptPayQRService) Payload(orderID uint, amount decimal.Decimal) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s.cfg.Mode)) {
	case "", "bill":
		return promptpay.BuildBillPayment(promptpay.BillPayment{
			BillerID: s.cfg.BillerID,
			Ref1:     strconv.FormatUint(uint64(orderID), 10),
			Ref2:     s.cfg.Ref2,
			Amount:   amount,
		})
	case "proxy":
		return promptpay.BuildCreditTransfer(promptpay.CreditTransfer{
			Target: s.cfg.ProxyID,
			Amount: amount,
		})
	default:
		return "", fmt.Errorf("%w: unsupported mode %s", promptpay.ErrConfigInvalid, s.cfg.Mode)
	}
}

// Generate 渲染 PNG 并上传
func (s *PromptPayQRService) Generate(ctx context.Context, orderID uint, amount decimal.Decimal) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: storage not configured", ErrQrUploadFailed)
	}
	payload, err := s.Payload(orderID, amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQrUploadFailed, err)
	}
	size := s.cfg.QRSize
	if size <= 0 {
		size = defaultQRSize
	}
	png, err := promptpay.RenderPNG(payload, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQrUploadFailed, err)
	}
	url, err := s.uploader.Upload(ctx, storage.UploadInput{
		Data:        png,
		ContentType: "image/png",
		Folder:      constants.FolderQR,
		PublicID:    fmt.Sprintf("qr_%d", orderID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQrUploadFailed, err)
	}
	return url, nil
}

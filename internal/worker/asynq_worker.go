package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/provider"
	"github.com/ICMM2025/icmm-server/internal/queue"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/hibiken/asynq"
)

// orderMailer 订单邮件发送
type orderMailer interface {
	SendOrderEmail(orderID uint, statusChanged bool) error
}

// customMailer 自定义邮件发送
type customMailer interface {
	SendCustomEmail(toEmail, subject, body string) error
}

// missingQRFinder 查找缺少收款二维码的订单
type missingQRFinder interface {
	FindOrdersMissingQR(grace time.Duration) ([]uint, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	orders orderMailer
	custom customMailer
	audit  missingQRFinder
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	consumer := &Consumer{}
	if c.Notifier != nil {
		consumer.orders = c.Notifier
	}
	if c.EmailService != nil {
		consumer.custom = c.EmailService
	}
	if c.OrderService != nil {
		consumer.audit = c.OrderService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCreatedEmail, c.handleOrderCreatedEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskCustomEmail, c.handleCustomEmail)
}

func (c *Consumer) handleOrderCreatedEmail(ctx context.Context, task *asynq.Task) error {
	return c.handleOrderEmail(ctx, task, false)
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	return c.handleOrderEmail(ctx, task, true)
}

func (c *Consumer) handleOrderEmail(_ context.Context, task *asynq.Task, statusChanged bool) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_email_unmarshal_failed", "task", task.Type(), "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_email_skip_invalid_payload", "task", task.Type())
		return nil
	}
	if c.orders == nil {
		logger.Warnw("worker_order_email_skip_notifier_nil", "order_id", payload.OrderID)
		return nil
	}
	err := c.orders.SendOrderEmail(payload.OrderID, statusChanged)
	return classifySendError(err, "order_id", payload.OrderID, "status_id", payload.StatusID, "task", task.Type())
}

func (c *Consumer) handleCustomEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_custom_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CustomEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_custom_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if c.custom == nil {
		logger.Warnw("worker_custom_email_skip_email_service_nil", "to", payload.To)
		return nil
	}
	err := c.custom.SendCustomEmail(payload.To, payload.Subject, payload.Text)
	return classifySendError(err, "to", payload.To, "task", task.Type())
}

// classifySendError 配置或收件人问题不重试，其余错误交给 asynq 重试
func classifySendError(err error, fields ...interface{}) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		logger.Debugw("worker_email_skip_order_not_found", fields...)
		return nil
	case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
		logger.Debugw("worker_email_skip_service_unavailable", append(fields, "error", err)...)
		return nil
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrEmailRecipientRejected):
		logger.Warnw("worker_email_recipient_rejected", append(fields, "error", err)...)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		logger.Warnw("worker_email_send_failed", append(fields, "error", err)...)
		return err
	}
}

// reportMissingQR 记录仍缺少收款二维码的订单，返回数量
func (c *Consumer) reportMissingQR() int {
	if c == nil || c.audit == nil {
		return 0
	}
	ids, err := c.audit.FindOrdersMissingQR(missingQRGrace)
	if err != nil {
		logger.Warnw("worker_missing_qr_scan_failed", "error", err)
		return 0
	}
	if len(ids) > 0 {
		logger.Warnw("worker_orders_missing_qr", "count", len(ids), "order_ids", ids)
	}
	return len(ids)
}

package service

import (
	"net/mail"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/queue"
	"github.com/ICMM2025/icmm-server/internal/repository"
)

// OrderNotifier 订单通知，发送失败只记录日志
type OrderNotifier interface {
	OrderCreated(orderID uint)
	OrderStatusChanged(orderID, statusID uint)
}

// MailNotifier 队列可用时投递异步任务，否则后台协程直接发送
type MailNotifier struct {
	queue     *queue.Client
	email     *EmailService
	orderRepo repository.OrderRepository
}

// NewMailNotifier 创建通知器
func NewMailNotifier(queueClient *queue.Client, email *EmailService, orderRepo repository.OrderRepository) *MailNotifier {
	return &MailNotifier{queue: queueClient, email: email, orderRepo: orderRepo}
}

// OrderCreated 下单通知
func (n *MailNotifier) OrderCreated(orderID uint) {
	if n == nil {
		return
	}
	if n.queue.Enabled() {
		if err := n.queue.EnqueueOrderCreatedEmail(queue.OrderEmailPayload{OrderID: orderID}); err != nil {
			logger.Warnw("order_created_email_enqueue_failed", "order_id", orderID, "error", err)
		}
		return
	}
	go func() {
		if err := n.SendOrderEmail(orderID, false); err != nil {
			logger.Warnw("order_created_email_send_failed", "order_id", orderID, "error", err)
		}
	}()
}

// OrderStatusChanged 状态变更通知
func (n *MailNotifier) OrderStatusChanged(orderID, statusID uint) {
	if n == nil {
		return
	}
	if n.queue.Enabled() {
		payload := queue.OrderEmailPayload{OrderID: orderID, StatusID: statusID}
		if err := n.queue.EnqueueOrderStatusEmail(payload); err != nil {
			logger.Warnw("order_status_email_enqueue_failed", "order_id", orderID, "status_id", statusID, "error", err)
		}
		return
	}
	go func() {
		if err := n.SendOrderEmail(orderID, true); err != nil {
			logger.Warnw("order_status_email_send_failed", "order_id", orderID, "status_id", statusID, "error", err)
		}
	}()
}

// SendOrderEmail 读取订单并立即发送，供 worker 与降级路径共用
func (n *MailNotifier) SendOrderEmail(orderID uint, statusChanged bool) error {
	order, err := n.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if statusChanged {
		return n.email.SendOrderStatusEmail(order)
	}
	return n.email.SendOrderCreatedEmail(order)
}

// SendCustom 后台自定义邮件；队列不可用时同步发送并返回结果
func (n *MailNotifier) SendCustom(to, subject, text string) error {
	to = strings.TrimSpace(to)
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidEmail
	}
	if n.queue.Enabled() {
		return n.queue.EnqueueCustomEmail(queue.CustomEmailPayload{To: to, Subject: subject, Text: text})
	}
	return n.email.SendCustomEmail(to, subject, text)
}

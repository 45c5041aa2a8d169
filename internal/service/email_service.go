package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendCustomEmail 发送自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "ICMM"
	}
	return s.sendTextEmail(toEmail, subject, strings.TrimSpace(body))
}

// SendOrderCreatedEmail 下单成功通知
func (s *EmailService) SendOrderCreatedEmail(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	subject, body := buildOrderCreatedContent(order)
	return s.sendTextEmail(order.Email, subject, body)
}

// SendOrderStatusEmail 订单状态变更通知
func (s *EmailService) SendOrderStatusEmail(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	subject, body := buildOrderStatusContent(order)
	return s.sendTextEmail(order.Email, subject, body)
}

func buildOrderCreatedContent(order *models.Order) (string, string) {
	subject := fmt.Sprintf("ICMM order #%d received", order.OrderID)
	var body strings.Builder
	body.WriteString(fmt.Sprintf("Hi %s,\n\n", order.Name))
	body.WriteString(fmt.Sprintf("We received your order #%d.\n", order.OrderID))
	body.WriteString(fmt.Sprintf("Amount due: %s THB\n", order.GrandTotalAmt.String()))
	if order.PayQrURL != "" {
		body.WriteString(fmt.Sprintf("Pay with this QR code: %s\n", order.PayQrURL))
	}
	body.WriteString("\nPlease upload your payment slip after transferring.")
	return subject, body.String()
}

func buildOrderStatusContent(order *models.Order) (string, string) {
	statusName := fmt.Sprintf("%d", order.StatusID)
	if order.Status != nil {
		statusName = order.Status.Name
		if label := strings.TrimSpace(order.Status.Label); label != "" {
			statusName = label
		}
	}
	subject := fmt.Sprintf("ICMM order #%d status updated", order.OrderID)
	body := fmt.Sprintf("Hi %s,\n\nYour order #%d is now: %s\nAmount: %s THB",
		order.Name, order.OrderID, statusName, order.GrandTotalAmt.String())
	if tracking := strings.TrimSpace(order.EmsTracking); tracking != "" {
		body += "\nEMS tracking: " + tracking
	}
	return subject, body
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	to := []string{toEmail}
	switch {
	case s.cfg.UseSSL:
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, to, []byte(msg)))
	case s.cfg.UseTLS:
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, to, []byte(msg)))
	default:
		return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.From, to, []byte(msg)))
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}
	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func authenticateSMTP(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"user unknown",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}

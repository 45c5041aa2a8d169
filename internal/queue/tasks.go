package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCreatedEmail 下单成功邮件
	TaskOrderCreatedEmail = "order:created_email"
	// TaskOrderStatusEmail 订单状态变更邮件
	TaskOrderStatusEmail = "order:status_email"
	// TaskCustomEmail 后台自定义邮件
	TaskCustomEmail = "mail:custom"
)

// OrderEmailPayload 订单邮件任务载荷
type OrderEmailPayload struct {
	OrderID  uint `json:"order_id"`
	StatusID uint `json:"status_id"`
}

// CustomEmailPayload 自定义邮件任务载荷
type CustomEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// NewOrderCreatedEmailTask 创建下单邮件任务
func NewOrderCreatedEmailTask(payload OrderEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderCreatedEmail, payload)
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderStatusEmail, payload)
}

// NewCustomEmailTask 创建自定义邮件任务
func NewCustomEmailTask(payload CustomEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskCustomEmail, payload)
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}

package queue

import (
	"fmt"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = "default"
	// CriticalQueue 订单通知队列
	CriticalQueue = "critical"

	defaultMaxRetry = 3
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	return &Client{
		client:       asynq.NewClient(buildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderCreatedEmail 推送下单邮件任务
func (c *Client) EnqueueOrderCreatedEmail(payload OrderEmailPayload, opts ...asynq.Option) error {
	task, err := NewOrderCreatedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, CriticalQueue, opts...)
}

// EnqueueOrderStatusEmail 推送订单状态邮件任务
func (c *Client) EnqueueOrderStatusEmail(payload OrderEmailPayload, opts ...asynq.Option) error {
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, CriticalQueue, opts...)
}

// EnqueueCustomEmail 推送自定义邮件任务
func (c *Client) EnqueueCustomEmail(payload CustomEmailPayload, opts ...asynq.Option) error {
	task, err := NewCustomEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, c.defaultQueue, opts...)
}

func (c *Client) enqueue(task *asynq.Task, queueName string, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	options := append([]asynq.Option{asynq.Queue(queueName), asynq.MaxRetry(defaultMaxRetry)}, opts...)
	_, err := c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 5
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CriticalQueue: 2}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

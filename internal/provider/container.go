package provider

import (
	"context"
	"time"

	"github.com/ICMM2025/icmm-server/internal/cache"
	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/payment/slipcheck"
	"github.com/ICMM2025/icmm-server/internal/queue"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/service"
	"github.com/ICMM2025/icmm-server/internal/storage"
	"github.com/ICMM2025/icmm-server/internal/vision"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	Cache       *cache.Cache
	QueueClient *queue.Client
	Uploader    storage.Uploader

	// Repositories
	AdminRepo      repository.AdminRepository
	OrderRepo      repository.OrderRepository
	NoteRepo       repository.NoteRepository
	PhotoRepo      repository.AdminPhotoRepository
	StatusRepo     repository.StatusRepository
	ProductRepo    repository.ProductRepository
	CouponRepo     repository.CouponRepository
	VirtualRunRepo repository.VirtualRunRepository

	// Services
	AuthService       *service.AuthService
	EmailService      *service.EmailService
	Notifier          *service.MailNotifier
	UploadService     *service.UploadService
	ProductService    *service.ProductService
	CouponService     *service.CouponService
	OrderService      *service.OrderService
	ExportService     *service.ExportService
	VirtualRunService *service.VirtualRunService
}

// NewContainer 初始化容器；Redis 与队列不可用时降级运行
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	uploader, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		Cache:       cache.New(&cfg.Redis),
		QueueClient: queueClient,
		Uploader:    uploader,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.NoteRepo = repository.NewNoteRepository(db)
	c.PhotoRepo = repository.NewAdminPhotoRepository(db)
	c.StatusRepo = repository.NewStatusRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.VirtualRunRepo = repository.NewVirtualRunRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.AuthService = service.NewAuthService(cfg.JWT, c.AdminRepo)
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.Notifier = service.NewMailNotifier(c.QueueClient, c.EmailService, c.OrderRepo)
	c.UploadService = service.NewUploadService(cfg.Upload)
	c.ProductService = service.NewProductService(c.ProductRepo, c.Cache)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.ExportService = service.NewExportService(c.OrderRepo)

	slipClient := slipcheck.NewClient(slipcheck.Config{
		BaseURL: cfg.Slip.BaseURL,
		Token:   cfg.Slip.Token,
		Timeout: time.Duration(cfg.Slip.TimeoutSeconds) * time.Second,
	})
	c.OrderService = service.NewOrderService(service.OrderServiceOptions{
		OrderRepo:        c.OrderRepo,
		NoteRepo:         c.NoteRepo,
		CouponRepo:       c.CouponRepo,
		StatusRepo:       c.StatusRepo,
		PhotoRepo:        c.PhotoRepo,
		Pricing:          service.NewPricingValidator(c.ProductRepo),
		QR:               service.NewPromptPayQRService(cfg.PromptPay, c.Uploader),
		Uploader:         c.Uploader,
		Slip:             slipClient,
		Notifier:         c.Notifier,
		ReceiverAccounts: cfg.Slip.ReceiverAccounts,
		Upload:           cfg.Upload,
	})

	c.VirtualRunService = service.NewVirtualRunService(c.VirtualRunRepo, c.Uploader, c.newAnalyzer())
}

// newAnalyzer 未配置 api_key 时返回 nil，线上跑提交跳过识别
func (c *Container) newAnalyzer() vision.Analyzer {
	visionCfg := c.Config.Vision
	if visionCfg.APIKey == "" {
		logger.Warnw("provider_vision_disabled", "reason", "api_key empty")
		return nil
	}
	gemini, err := vision.NewGemini(context.Background(), visionCfg.APIKey, visionCfg.Model, time.Duration(visionCfg.TimeoutSeconds)*time.Second)
	if err != nil {
		logger.Errorw("provider_init_vision_failed", "error", err)
		return nil
	}
	return gemini
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_cache_failed", "error", err)
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
}

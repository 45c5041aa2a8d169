package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"
	adminhandlers "github.com/ICMM2025/icmm-server/internal/http/handlers/admin"
	publichandlers "github.com/ICMM2025/icmm-server/internal/http/handlers/public"
	"github.com/ICMM2025/icmm-server/internal/http/response"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/provider"
	"github.com/ICMM2025/icmm-server/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "icmm"
	}
	redisClient := c.Cache.Client()
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon", redisPrefix),
		WindowSeconds: cfg.RateLimit.Coupon.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Coupon.MaxRequests,
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.RateLimit.Login.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Login.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.MaxMultipartMemory = multipartMemory(cfg.Upload.MaxSize)

	// 本地存储时直接提供上传文件
	if local, ok := c.Uploader.(*storage.Local); ok {
		r.Static("/uploads", local.Dir())
	}

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, "ok", nil)
	})

	api := r.Group("/api")
	{
		api.GET("/products", publicHandler.GetProducts)

		order := api.Group("/order")
		{
			order.POST("/add-order", publicHandler.AddOrder)
			order.POST("/send-order", publicHandler.SendOrder)
			order.POST("/check-order", publicHandler.CheckOrder)
			order.POST("/apply-coupon", RateLimitMiddleware(redisClient, couponRule, KeyByIP), publicHandler.ApplyCoupon)
		}

		api.POST("/virtual-run/upload", publicHandler.UploadVirtualRun)

		api.POST("/admin/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

		admin := api.Group("/admin")
		admin.Use(JWTAuthMiddleware(c.AuthService, c.AdminRepo))
		{
			admin.GET("/all-orders", adminHandler.AllOrders)
			admin.POST("/order-detail", adminHandler.OrderDetail)
			admin.POST("/edit-detail-order", adminHandler.EditDetailOrder)
			admin.POST("/forward-status", adminHandler.ForwardStatus)
			admin.POST("/edit-cart", adminHandler.EditCart)
			admin.POST("/add-note", adminHandler.AddNote)
			admin.POST("/admin-photo", adminHandler.AdminPhoto)
			admin.GET("/statuses", adminHandler.Statuses)
			admin.GET("/export-excel", adminHandler.ExportExcel)
			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.POST("/mailer", adminHandler.SendMail)
			admin.GET("/virtual-runs", adminHandler.VirtualRuns)
			admin.POST("/runners", adminHandler.RegisterRunner)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, response.CodeNotFound)
	})

	return r
}

// multipartMemory 表单内存上限略高于单文件上限，超出部分落盘
func multipartMemory(maxSize int64) int64 {
	if maxSize <= 0 {
		return 32 << 20
	}
	return maxSize + (1 << 20)
}

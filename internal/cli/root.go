package cli

import (
	"errors"

	"github.com/ICMM2025/icmm-server/internal/cache"
	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions 全局参数与初始化后的运行环境
type RootOptions struct {
	ConfigPath string

	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
}

// NewRootCommand 创建 icmmctl 根命令
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// newRootCommand 已注入 DB 时跳过配置加载
func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "icmmctl",
		Short:         "ICMM storefront operations",
		Long:          "Manual operations for the ICMM storefront: catalog seeding, coupons, admin accounts and order export.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.teardown()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (default: search config.yml)")

	cmd.AddCommand(NewSeedCatalogCommand(opts))
	cmd.AddCommand(NewAddCouponCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewExportOrdersCommand(opts))

	return cmd
}

// setup 加载配置、连接数据库并迁移
func (o *RootOptions) setup() error {
	if o.DB != nil {
		return nil
	}
	cfg := config.LoadFrom(o.ConfigPath)
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return err
	}
	if err := models.AutoMigrate(); err != nil {
		return err
	}
	if err := models.SeedStatuses(models.DB); err != nil {
		return err
	}
	o.Config = cfg
	o.DB = models.DB
	o.Cache = cache.New(&cfg.Redis)
	return nil
}

func (o *RootOptions) teardown() {
	if err := o.Cache.Close(); err != nil {
		logger.Warnw("cli_close_cache_failed", "error", err)
	}
}

func (o *RootOptions) db() (*gorm.DB, error) {
	if o == nil || o.DB == nil {
		return nil, errors.New("database not initialized")
	}
	return o.DB, nil
}

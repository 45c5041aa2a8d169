package cli

import (
	"fmt"
	"os"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/spf13/cobra"
)

// NewSeedCatalogCommand 从 YAML 导入商品与优惠码
func NewSeedCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-catalog <file.yml>",
		Short: "Load products, options, pictures and coupons from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.db()
			if err != nil {
				return err
			}
			catalog, err := LoadCatalog(args[0])
			if err != nil {
				return err
			}
			result, err := SeedCatalog(cmd.Context(), db, rootOpts.Cache, catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "products: %d created, %d updated; coupons: %d created, %d skipped\n",
				result.ProductsCreated, result.ProductsUpdated, result.CouponsCreated, result.CouponsSkipped)
			return nil
		},
	}
}

// NewAddCouponCommand 新增一次性优惠码
func NewAddCouponCommand(rootOpts *RootOptions) *cobra.Command {
	var code, discountType, amount, maxDiscount string
	cmd := &cobra.Command{
		Use:   "add-coupon",
		Short: "Create a single-use discount code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.db()
			if err != nil {
				return err
			}
			input, err := CatalogCoupon{Code: code, Type: discountType, Amount: amount, MaxDiscountAmt: maxDiscount}.toInput()
			if err != nil {
				return err
			}
			coupon, err := service.NewCouponService(repository.NewCouponRepository(db)).Create(input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coupon %s created (%s %s, cap %s)\n",
				coupon.DiscountCode, coupon.DiscountType, coupon.DiscountAmt.String(), coupon.MaxDiscountAmt.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "discount code (case sensitive)")
	cmd.Flags().StringVar(&discountType, "type", "fixed", "discount type: percent | fixed")
	cmd.Flags().StringVar(&amount, "amount", "", "percentage or fixed amount")
	cmd.Flags().StringVar(&maxDiscount, "max", "0", "discount cap, 0 for none")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// NewCreateAdminCommand 创建管理员或重置密码
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or reset its password if it exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.db()
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("ICMM_ADMIN_PASSWORD")
			}
			var jwtCfg config.JWTConfig
			if rootOpts.Config != nil {
				jwtCfg = rootOpts.Config.JWT
			}
			auth := service.NewAuthService(jwtCfg, repository.NewAdminRepository(db))
			admin, err := auth.CreateAdmin(username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %d)\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default: $ICMM_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// NewExportOrdersCommand 导出订单明细 xlsx
func NewExportOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-orders",
		Short: "Write the order export workbook to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.db()
			if err != nil {
				return err
			}
			content, err := service.NewExportService(repository.NewOrderRepository(db)).ExportOrders()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(content))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data.xlsx", "output path")
	return cmd
}


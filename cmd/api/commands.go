package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/config"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/infra/db"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/logger"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/server"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sidecart",
		Short:         "Side cart fragment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newHashAdminKeyCmd(),
	)
	return root
}

// 設定とロガーの読み込み（全コマンド共通）
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			e := server.New(cfg, log, a.handlers)
			return server.Start(ctx, e, cfg.Addr(), log)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			gormDB, err := db.Connect(cfg.DSN(), !cfg.IsProd())
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			if err := db.Migrate(gormDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migration completed")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import products and cross-sell links from a JSON catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			var in usecase.CatalogInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parse catalog: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.catalog.ImportCatalog(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products, %d cross-sell links\n", out.Products, out.CrossSells)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "catalog.json", "catalog JSON file")
	return cmd
}

func newHashAdminKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-admin-key <key>",
		Short: "Print a bcrypt hash for ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) < 12 {
				return fmt.Errorf("admin key must be at least 12 characters")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), 12)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/config"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/fragment"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/handler"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/infra/cache"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/infra/db"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/infra/events"
	infraRepo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/infra/repository"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/server"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"go.uber.org/zap"
)

// transientの上限（これより長いTTLは切り詰め）
const transientMaxTTL = 24 * time.Hour

// 期限切れtransientの掃除間隔（db storeのみ）
const purgeInterval = 10 * time.Minute

type app struct {
	handlers server.Handlers
	catalog  *usecase.ProductUsecase
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildAppはDB・キャッシュ・イベントを組み立ててhandlerまで配線する。
func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	gormDB, err := db.Connect(cfg.DSN(), !cfg.IsProd())
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	a := &app{}
	a.closers = append(a.closers, func() { _ = sqlDB.Close() })

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	settingRepo := infraRepo.NewSettingGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	var store repo.TransientStore
	switch cfg.TransientStore {
	case config.TransientStoreDB:
		dbStore := infraRepo.NewTransientGormStore(gormDB)
		store = dbStore
		stop := startPurger(ctx, dbStore, log)
		a.closers = append(a.closers, stop)
	default:
		store = cache.NewTransientLRU(cfg.TransientCapacity, transientMaxTTL)
	}

	bus := event.NewBus(log)

	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		b, err := events.NewBroadcaster(conn, log)
		if err != nil {
			_ = conn.Close()
			a.Close()
			return nil, err
		}
		b.Attach(bus)
		a.closers = append(a.closers, func() {
			_ = b.Close()
			_ = conn.Close()
		})
	}

	//Usecase生成
	settingsUC := usecase.NewSettingsUsecase(settingRepo, auditRepo, bus, cfg.Defaults, log)
	shippingUC := usecase.NewShippingBarUsecase(settingsUC, store, log)
	crossSellUC := usecase.NewCrossSellUsecase(productRepo, store, settingsUC, log)
	shippingUC.Attach(bus)
	crossSellUC.Attach(bus)

	pipeline := fragment.NewPipeline(settingsUC, fragment.DefaultProducers(cfg.CurrencySymbol, shippingUC, crossSellUC, log)...)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, txm, pipeline, bus, log)
	nonceUC := usecase.NewNonceUsecase(cfg.NonceSecret, cfg.NonceTTL)
	a.catalog = usecase.NewProductUsecase(productRepo, crossSellUC, log)

	//Handler生成
	a.handlers = server.Handlers{
		Cart:   handler.NewCartHandler(cartUC, nonceUC, settingsUC),
		Admin:  handler.NewAdminSettingsHandler(settingsUC, a.catalog),
		Health: handler.NewHealthHandler(sqlDB.PingContext),
	}
	return a, nil
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// startPurgerは期限切れtransientを定期的に消す。戻り値で停止する。
func startPurger(ctx context.Context, p expiredPurger, log *zap.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := p.PurgeExpired(ctx)
				if err != nil {
					log.Warn("transient purge failed", zap.Error(err))
					continue
				}
				if n > 0 {
					log.Debug("transients purged", zap.Int64("count", n))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

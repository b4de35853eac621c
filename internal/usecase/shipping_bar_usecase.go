package usecase

import (
	"context"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/shipping"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	shippingThresholdKey = "sidecart_shipping_threshold"
	shippingThresholdTTL = time.Hour
)

// ShippingBarUsecaseは送料無料バーの進捗を計算する。
// しきい値は設定から読み、1時間キャッシュする。
type ShippingBarUsecase struct {
	settings SettingsProvider
	store    repo.TransientStore
	log      *zap.Logger
}

// DI
func NewShippingBarUsecase(settings SettingsProvider, store repo.TransientStore, log *zap.Logger) *ShippingBarUsecase {
	return &ShippingBarUsecase{settings: settings, store: store, log: log}
}

// Thresholdは送料無料のしきい値。
func (u *ShippingBarUsecase) Threshold(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := u.store.Get(ctx, shippingThresholdKey)
	if err != nil {
		u.log.Warn("shipping threshold cache read failed", zap.Error(err))
	}
	if ok {
		if d, perr := decimal.NewFromString(string(raw)); perr == nil {
			return d, nil
		}
	}

	s, err := u.settings.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := u.store.Set(ctx, shippingThresholdKey, []byte(s.ShippingThreshold.String()), shippingThresholdTTL); err != nil {
		u.log.Warn("shipping threshold cache write failed", zap.Error(err))
	}
	return s.ShippingThreshold, nil
}

// Progressはカート小計に対する進捗。
func (u *ShippingBarUsecase) Progress(ctx context.Context, snap model.CartSnapshot) (shipping.Progress, error) {
	threshold, err := u.Threshold(ctx)
	if err != nil {
		return shipping.Progress{}, err
	}
	return shipping.ComputeProgress(snap.Subtotal, threshold), nil
}

func (u *ShippingBarUsecase) ClearCache(ctx context.Context) error {
	return u.store.Delete(ctx, shippingThresholdKey)
}

// Attachはしきい値の変更でキャッシュを消すよう購読する。
func (u *ShippingBarUsecase) Attach(bus *event.Bus) {
	bus.Subscribe(event.SettingsUpdated, "shipping_bar.clear_cache", func(ctx context.Context, ev event.Event) error {
		if !ev.Changed(model.SettingShippingThreshold, model.SettingShippingBarEnabled) {
			return nil
		}
		return u.ClearCache(ctx)
	})
}

package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"go.uber.org/zap"
)

const (
	CrossSellCachePrefix = "sidecart_cross_sells_"
	crossSellCacheTTL    = time.Hour
)

// CrossSellUsecaseはカート内容からおすすめ商品IDを選ぶ。
// 結果はfingerprintごとにキャッシュする（キャッシュは最適化のみ）。
type CrossSellUsecase struct {
	productRepo repo.ProductRepository
	store       repo.TransientStore
	settings    SettingsProvider
	log         *zap.Logger
}

// DI
func NewCrossSellUsecase(
	productRepo repo.ProductRepository,
	store repo.TransientStore,
	settings SettingsProvider,
	log *zap.Logger,
) *CrossSellUsecase {
	return &CrossSellUsecase{
		productRepo: productRepo,
		store:       store,
		settings:    settings,
		log:         log,
	}
}

func crossSellCacheKey(fingerprint string) string {
	return CrossSellCachePrefix + fingerprint
}

// SelectIDsは設定の上限でおすすめIDを返す。
func (u *CrossSellUsecase) SelectIDs(ctx context.Context, snap model.CartSnapshot) ([]int64, error) {
	if snap.IsEmpty() {
		return []int64{}, nil
	}

	s, err := u.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return u.Select(ctx, snap, s.CrossSellsLimit), nil
}

// Selectはキャッシュ→カタログの順で選ぶ。
// カタログの失敗は商品単位で飛ばすのでエラーは返さない。
func (u *CrossSellUsecase) Select(ctx context.Context, snap model.CartSnapshot, limit int) []int64 {
	if snap.IsEmpty() {
		return []int64{}
	}

	key := crossSellCacheKey(snap.Fingerprint())
	if ids, ok := u.cached(ctx, key); ok {
		return ids
	}

	ids := collectCrossSells(snap.ProductIDs(), limit, func(productID int64) ([]int64, error) {
		return u.productRepo.CrossSellIDs(ctx, productID)
	}, func(productID int64, err error) {
		u.log.Warn("cross-sell lookup failed", zap.Int64("product_id", productID), zap.Error(err))
	})

	raw, err := json.Marshal(ids)
	if err == nil {
		err = u.store.Set(ctx, key, raw, crossSellCacheTTL)
	}
	if err != nil {
		u.log.Warn("cross-sell cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ids
}

func (u *CrossSellUsecase) cached(ctx context.Context, key string) ([]int64, bool) {
	raw, ok, err := u.store.Get(ctx, key)
	if err != nil {
		u.log.Warn("cross-sell cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		u.log.Warn("cross-sell cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, true
}

// VisibleProductsは選んだIDを公開中の商品に解決する（表示時フィルタ）。
// 解決できないものは黙って飛ばす。
func (u *CrossSellUsecase) VisibleProducts(ctx context.Context, snap model.CartSnapshot) ([]model.Product, error) {
	ids, err := u.SelectIDs(ctx, snap)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		u.log.Warn("cross-sell products lookup failed", zap.Error(err))
		return []model.Product{}, nil
	}

	visible := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Visible() {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// ClearCacheはfingerprintのエントリだけ消す。
func (u *CrossSellUsecase) ClearCache(ctx context.Context, fingerprint string) error {
	if fingerprint == "" {
		return nil
	}
	return u.store.Delete(ctx, crossSellCacheKey(fingerprint))
}

// ClearAllは全エントリを消す（設定変更時）。
func (u *CrossSellUsecase) ClearAll(ctx context.Context) error {
	return u.store.DeletePrefix(ctx, CrossSellCachePrefix)
}

// Attachは無効化トリガーを購読する。
func (u *CrossSellUsecase) Attach(bus *event.Bus) {
	clear := func(ctx context.Context, ev event.Event) error {
		return u.ClearCache(ctx, ev.Fingerprint)
	}
	bus.Subscribe(event.CartItemAdded, "cross_sells.clear_cache", clear)
	bus.Subscribe(event.CartItemRemoved, "cross_sells.clear_cache", clear)
	bus.Subscribe(event.SettingsUpdated, "cross_sells.clear_all", func(ctx context.Context, ev event.Event) error {
		if !ev.Changed(model.SettingCrossSellsEnabled, model.SettingCrossSellsLimit) {
			return nil
		}
		return u.ClearAll(ctx)
	})
}

// collectCrossSellsは行順にクロスセルを連結し、重複とカート内商品を除いてlimitで切る。
func collectCrossSells(
	cartProductIDs []int64,
	limit int,
	lookup func(productID int64) ([]int64, error),
	onError func(productID int64, err error),
) []int64 {
	out := []int64{}
	if limit <= 0 {
		return out
	}

	exclude := make(map[int64]struct{}, len(cartProductIDs))
	for _, id := range cartProductIDs {
		exclude[id] = struct{}{}
	}

	seen := make(map[int64]struct{})
	for _, productID := range cartProductIDs {
		ids, err := lookup(productID)
		if err != nil {
			onError(productID, err)
			continue
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if _, inCart := exclude[id]; inCart {
				continue
			}
			out = append(out, id)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

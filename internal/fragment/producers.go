package fragment

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/shipping"

	"go.uber.org/zap"
)

type ProgressSource interface {
	Progress(ctx context.Context, snap model.CartSnapshot) (shipping.Progress, error)
}

type CrossSellSource interface {
	VisibleProducts(ctx context.Context, snap model.CartSnapshot) ([]model.Product, error)
}

// DefaultProducersは描画順（明細→合計→件数→送料バー→おすすめ）のproducer。
func DefaultProducers(currency string, progress ProgressSource, crossSells CrossSellSource, log *zap.Logger) []Producer {
	r := newRenderer(currency)
	return []Producer{
		&itemsProducer{r: r},
		&totalsProducer{r: r},
		&countProducer{r: r},
		&shippingBarProducer{r: r, progress: progress},
		&crossSellsProducer{r: r, source: crossSells, log: log},
	}
}

type itemsProducer struct{ r *renderer }

func (p *itemsProducer) Selector() string { return SelectorItems }

func (p *itemsProducer) Produce(_ context.Context, in Input) (string, error) {
	return execute(p.r.items, in.Snapshot)
}

type totalsProducer struct{ r *renderer }

func (p *totalsProducer) Selector() string { return SelectorTotals }

func (p *totalsProducer) Produce(_ context.Context, in Input) (string, error) {
	return execute(p.r.totals, in.Snapshot)
}

type countProducer struct{ r *renderer }

func (p *countProducer) Selector() string { return SelectorCartCount }

func (p *countProducer) Produce(_ context.Context, in Input) (string, error) {
	return execute(p.r.count, in.Snapshot.ItemCount())
}

// 無効・空カートは空のラッパーだけ返す（差し替え先を残す）
type shippingBarProducer struct {
	r        *renderer
	progress ProgressSource
}

func (p *shippingBarProducer) Selector() string { return SelectorShippingBar }

func (p *shippingBarProducer) Produce(ctx context.Context, in Input) (string, error) {
	if !in.Settings.ShippingBarEnabled || in.Snapshot.IsEmpty() {
		return execute(p.r.shippingBar, nil)
	}

	pr, err := p.progress.Progress(ctx, in.Snapshot)
	if err != nil {
		return "", err
	}
	return execute(p.r.shippingBar, &pr)
}

type crossSellsProducer struct {
	r      *renderer
	source CrossSellSource
	log    *zap.Logger
}

func (p *crossSellsProducer) Selector() string { return SelectorCrossSells }

// おすすめが取れなくてもカート操作は失敗させない
func (p *crossSellsProducer) Produce(ctx context.Context, in Input) (string, error) {
	if !in.Settings.CrossSellsEnabled || in.Snapshot.IsEmpty() {
		return execute(p.r.crossSells, nil)
	}

	products, err := p.source.VisibleProducts(ctx, in.Snapshot)
	if err != nil {
		p.log.Warn("cross-sells unavailable", zap.Error(err))
		products = nil
	}
	if len(products) == 0 {
		return execute(p.r.crossSells, nil)
	}
	return execute(p.r.crossSells, products)
}

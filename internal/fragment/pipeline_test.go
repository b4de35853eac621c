package fragment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/shipping"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/fragment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticSettings struct {
	s   model.SideCartSettings
	err error
}

func (f staticSettings) Get(ctx context.Context) (model.SideCartSettings, error) {
	return f.s, f.err
}

type progressFunc func(snap model.CartSnapshot) (shipping.Progress, error)

func (f progressFunc) Progress(ctx context.Context, snap model.CartSnapshot) (shipping.Progress, error) {
	return f(snap)
}

type crossSellsFunc func(snap model.CartSnapshot) ([]model.Product, error)

func (f crossSellsFunc) VisibleProducts(ctx context.Context, snap model.CartSnapshot) ([]model.Product, error) {
	return f(snap)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func enabledSettings() model.SideCartSettings {
	return model.SideCartSettings{
		ShippingThreshold:  dec("50"),
		ShippingBarEnabled: true,
		CrossSellsEnabled:  true,
		CrossSellsLimit:    6,
		AutoOpen:           true,
	}
}

func sampleCart() model.CartSnapshot {
	return model.NewCartSnapshot([]model.CartLine{
		{Key: "k1", ProductID: 1, Name: "Mug", Quantity: 2, UnitPrice: dec("10"), LineTotal: dec("20")},
		{Key: "k2", ProductID: 2, Name: "Tea <Green>", Quantity: 1, UnitPrice: dec("15"), LineTotal: dec("15")},
	})
}

func newPipeline(t *testing.T, s model.SideCartSettings, products []model.Product) *fragment.Pipeline {
	progress := progressFunc(func(snap model.CartSnapshot) (shipping.Progress, error) {
		return shipping.ComputeProgress(snap.Subtotal, s.ShippingThreshold), nil
	})
	cross := crossSellsFunc(func(model.CartSnapshot) ([]model.Product, error) {
		return products, nil
	})
	return fragment.NewPipeline(staticSettings{s: s}, fragment.DefaultProducers("$", progress, cross, zaptest.NewLogger(t))...)
}

func TestPipeline_SelectorsInOrder(t *testing.T) {
	p := newPipeline(t, enabledSettings(), nil)

	assert.Equal(t, []string{
		fragment.SelectorItems,
		fragment.SelectorTotals,
		fragment.SelectorCartCount,
		fragment.SelectorShippingBar,
		fragment.SelectorCrossSells,
	}, p.Selectors())
}

func TestPipeline_RenderFullCart(t *testing.T) {
	products := []model.Product{
		{ID: 7, Name: "Spoon", Slug: "spoon", Price: dec("4.5"), IsActive: true},
	}
	p := newPipeline(t, enabledSettings(), products)

	out, err := p.Render(context.Background(), sampleCart())
	require.NoError(t, err)
	require.Len(t, out, 5)

	items := out[fragment.SelectorItems]
	assert.Contains(t, items, `data-cart-key="k1"`)
	assert.Contains(t, items, `value="2"`)
	assert.Contains(t, items, "Tea &lt;Green&gt;")
	assert.Contains(t, items, "$20.00")

	assert.Contains(t, out[fragment.SelectorTotals], "$35.00")
	assert.Equal(t, `<span class="sidecart-cart-count">3</span>`, out[fragment.SelectorCartCount])

	bar := out[fragment.SelectorShippingBar]
	assert.Contains(t, bar, "Add <strong>$15.00</strong> more to get <strong>FREE Shipping</strong>")
	assert.Contains(t, bar, "width: 70.00%")

	cs := out[fragment.SelectorCrossSells]
	assert.Contains(t, cs, "You may also like")
	assert.Contains(t, cs, `data-product-id="7"`)
	assert.Contains(t, cs, `href="/product/spoon"`)
	assert.Contains(t, cs, "$4.50")
	assert.Contains(t, cs, ">ADD<")
}

func TestPipeline_Qualified(t *testing.T) {
	s := enabledSettings()
	s.ShippingThreshold = dec("30")
	p := newPipeline(t, s, nil)

	out, err := p.Render(context.Background(), sampleCart())
	require.NoError(t, err)

	bar := out[fragment.SelectorShippingBar]
	assert.Contains(t, bar, "You qualify for <strong>Free Shipping</strong>")
	assert.Contains(t, bar, "width: 100.00%")
}

func TestPipeline_EmptyCartKeepsWrappers(t *testing.T) {
	p := newPipeline(t, enabledSettings(), []model.Product{{ID: 9, Name: "X", IsActive: true}})

	out, err := p.Render(context.Background(), model.NewCartSnapshot(nil))
	require.NoError(t, err)

	assert.Contains(t, out[fragment.SelectorItems], "Your cart is empty.")
	assert.Equal(t, `<div class="sidecart-totals"></div>`, out[fragment.SelectorTotals])
	assert.Equal(t, `<span class="sidecart-cart-count">0</span>`, out[fragment.SelectorCartCount])
	assert.Equal(t, `<div class="sidecart-shipping-bar-wrapper"></div>`, out[fragment.SelectorShippingBar])
	assert.Equal(t, `<div class="sidecart-cross-sells-wrapper"></div>`, out[fragment.SelectorCrossSells])
}

func TestPipeline_DisabledRegions(t *testing.T) {
	s := enabledSettings()
	s.ShippingBarEnabled = false
	s.CrossSellsEnabled = false
	p := newPipeline(t, s, []model.Product{{ID: 9, Name: "X", IsActive: true}})

	out, err := p.Render(context.Background(), sampleCart())
	require.NoError(t, err)

	assert.Equal(t, `<div class="sidecart-shipping-bar-wrapper"></div>`, out[fragment.SelectorShippingBar])
	assert.Equal(t, `<div class="sidecart-cross-sells-wrapper"></div>`, out[fragment.SelectorCrossSells])
}

func TestPipeline_CrossSellFailureRendersEmpty(t *testing.T) {
	s := enabledSettings()
	progress := progressFunc(func(snap model.CartSnapshot) (shipping.Progress, error) {
		return shipping.ComputeProgress(snap.Subtotal, s.ShippingThreshold), nil
	})
	cross := crossSellsFunc(func(model.CartSnapshot) ([]model.Product, error) {
		return nil, errors.New("catalog down")
	})
	p := fragment.NewPipeline(staticSettings{s: s}, fragment.DefaultProducers("$", progress, cross, zaptest.NewLogger(t))...)

	out, err := p.Render(context.Background(), sampleCart())
	require.NoError(t, err)
	assert.Equal(t, `<div class="sidecart-cross-sells-wrapper"></div>`, out[fragment.SelectorCrossSells])
}

func TestPipeline_ProgressFailureAbortsAll(t *testing.T) {
	s := enabledSettings()
	progress := progressFunc(func(model.CartSnapshot) (shipping.Progress, error) {
		return shipping.Progress{}, errors.New("db error")
	})
	cross := crossSellsFunc(func(model.CartSnapshot) ([]model.Product, error) { return nil, nil })
	p := fragment.NewPipeline(staticSettings{s: s}, fragment.DefaultProducers("$", progress, cross, zaptest.NewLogger(t))...)

	out, err := p.Render(context.Background(), sampleCart())
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestPipeline_SettingsFailure(t *testing.T) {
	p := fragment.NewPipeline(staticSettings{err: errors.New("boom")})

	_, err := p.Render(context.Background(), sampleCart())
	assert.EqualError(t, err, "boom")
}

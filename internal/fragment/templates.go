package fragment

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

const itemsTmpl = `<div class="sidecart-items">
{{- if .Lines}}<ul class="sidecart-item-list">
{{- range .Lines}}<li class="sidecart-item" data-cart-key="{{.Key}}">
<span class="sidecart-item-name">{{.Name}}</span>
<span class="sidecart-item-price">{{money .UnitPrice}}</span>
<div class="quantity-controls">
<button type="button" class="qty-btn qty-minus" data-cart-key="{{.Key}}" data-qty-change="-1">-</button>
<input type="number" class="qty-input" data-cart-key="{{.Key}}" value="{{.Quantity}}" min="0">
<button type="button" class="qty-btn qty-plus" data-cart-key="{{.Key}}" data-qty-change="1">+</button>
</div>
<span class="sidecart-item-total">{{money .LineTotal}}</span>
<a href="#" class="remove-item" data-cart-key="{{.Key}}">Remove</a>
</li>{{end}}</ul>
{{- else}}<p class="sidecart-empty">Your cart is empty.</p>{{end -}}
</div>`

const totalsTmpl = `<div class="sidecart-totals">
{{- if .Lines}}<span class="sidecart-subtotal-label">Subtotal</span><span class="sidecart-subtotal-amount">{{money .Subtotal}}</span>{{end -}}
</div>`

const countTmpl = `<span class="sidecart-cart-count">{{.}}</span>`

const shippingBarTmpl = `<div class="sidecart-shipping-bar-wrapper">
{{- if .}}
<div class="sidecart-shipping-bar-message">
{{- if .Qualified}}<span class="success-message">You qualify for <strong>Free Shipping</strong></span>
{{- else}}<span class="progress-message">Add <strong>{{money .Remaining}}</strong> more to get <strong>FREE Shipping</strong></span>{{end -}}
</div>
<div class="sidecart-shipping-bar-progress"><div class="progress-bar-bg"><div class="progress-bar-fill" style="width: {{percent .Percentage}}%;"></div></div></div>
{{end -}}
</div>`

const crossSellsTmpl = `<div class="sidecart-cross-sells-wrapper">
{{- if .}}
<div class="cross-sells-header"><h4>You may also like</h4>
<div class="carousel-nav"><button type="button" class="carousel-prev" aria-label="Previous">&lsaquo;</button><button type="button" class="carousel-next" aria-label="Next">&rsaquo;</button></div>
</div>
<div class="cross-sells-carousel"><div class="carousel-track">
{{- range .}}
<div class="cross-sell-item">
<a href="{{.Permalink}}" class="product-image">{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{end}}</a>
<div class="product-details">
<a href="{{.Permalink}}" class="product-name">{{.Name}}</a>
<div class="product-price">{{money .Price}}</div>
<a href="?add-to-cart={{.ID}}" class="add-to-cart-btn" data-product-id="{{.ID}}">ADD</a>
</div>
</div>
{{- end}}
</div></div>
{{end -}}
</div>`

// renderer は通貨記号つきのテンプレート群
type renderer struct {
	items       *template.Template
	totals      *template.Template
	count       *template.Template
	shippingBar *template.Template
	crossSells  *template.Template
}

func newRenderer(currency string) *renderer {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return currency + d.StringFixed(2)
		},
		"percent": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
	}
	parse := func(name, text string) *template.Template {
		return template.Must(template.New(name).Funcs(funcs).Parse(text))
	}
	return &renderer{
		items:       parse("items", itemsTmpl),
		totals:      parse("totals", totalsTmpl),
		count:       parse("count", countTmpl),
		shippingBar: parse("shipping_bar", shippingBarTmpl),
		crossSells:  parse("cross_sells", crossSellsTmpl),
	}
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

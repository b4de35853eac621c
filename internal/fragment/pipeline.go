// Package fragment はサイドカートのHTML断片（selector→markup）を作る。
// producerは登録順に呼ばれ、結果はまとめて差し替えられる前提。
package fragment

import (
	"context"
	"fmt"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
)

// 断片のセレクタ
const (
	SelectorItems       = ".sidecart-items"
	SelectorTotals      = ".sidecart-totals"
	SelectorCartCount   = ".sidecart-cart-count"
	SelectorShippingBar = ".sidecart-shipping-bar-wrapper"
	SelectorCrossSells  = ".sidecart-cross-sells-wrapper"
)

// Fragmentsはselector→HTML
type Fragments map[string]string

// Inputは1回の描画で共有する値
type Input struct {
	Snapshot model.CartSnapshot
	Settings model.SideCartSettings
}

type Producer interface {
	Selector() string
	Produce(ctx context.Context, in Input) (string, error)
}

type SettingsSource interface {
	Get(ctx context.Context) (model.SideCartSettings, error)
}

// Pipelineは登録順にproducerを呼ぶ。
type Pipeline struct {
	settings  SettingsSource
	producers []Producer
}

func NewPipeline(settings SettingsSource, producers ...Producer) *Pipeline {
	return &Pipeline{settings: settings, producers: producers}
}

// Selectorsは登録順のセレクタ一覧
func (p *Pipeline) Selectors() []string {
	out := make([]string, 0, len(p.producers))
	for _, pr := range p.producers {
		out = append(out, pr.Selector())
	}
	return out
}

// Renderは全断片を作る。1つでも失敗したら何も返さない。
func (p *Pipeline) Render(ctx context.Context, snap model.CartSnapshot) (Fragments, error) {
	s, err := p.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	in := Input{Snapshot: snap, Settings: s}
	out := make(Fragments, len(p.producers))
	for _, pr := range p.producers {
		html, err := pr.Produce(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", pr.Selector(), err)
		}
		out[pr.Selector()] = html
	}
	return out, nil
}

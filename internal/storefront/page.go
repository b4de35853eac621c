package storefront

import (
	"sync"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"
)

type EventName string

const (
	EventFragmentsRefreshed EventName = "fragments_refreshed"
	EventAddedToCart        EventName = "added_to_cart"
)

type Event struct {
	Name      EventName
	Fragments transport.Fragments
	CartHash  string
	ProductID int64
}

// Pageは描画済みの断片を持つ。応答は発行順の番号で古いものを捨てる。
type Page struct {
	mu        sync.Mutex
	regions   map[string]string
	cartHash  string
	issued    uint64
	applied   uint64
	listeners map[EventName][]func(Event)
}

func NewPage(initial transport.Fragments) *Page {
	p := &Page{
		regions:   map[string]string{},
		listeners: map[EventName][]func(Event){},
	}
	for sel, html := range initial {
		p.regions[sel] = html
	}
	return p
}

// NextSeqはリクエスト開始時に呼ぶ
func (p *Page) NextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

// Applyは応答の断片をまとめて差し替える。より新しい応答が適用済みならfalse。
func (p *Page) Apply(seq uint64, resp transport.FragmentsResponse) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.applied {
		return false
	}
	p.applied = seq
	for sel, html := range resp.Fragments {
		p.regions[sel] = html
	}
	p.cartHash = resp.CartHash
	return true
}

func (p *Page) Region(selector string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	html, ok := p.regions[selector]
	return html, ok
}

func (p *Page) CartHash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cartHash
}

// Onは登録順に呼ばれる
func (p *Page) On(name EventName, fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[name] = append(p.listeners[name], fn)
}

func (p *Page) Emit(ev Event) {
	p.mu.Lock()
	fns := append([]func(Event){}, p.listeners[ev.Name]...)
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

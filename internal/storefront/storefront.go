package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

	"go.uber.org/zap"
)

const (
	LabelAdding = "Adding..."
	LabelAdded  = "Added!"

	addedResetDelay = 2 * time.Second
)

type CartAPI interface {
	LineAPI
	AddToCart(ctx context.Context, productID int64, quantity int64) (transport.FragmentsResponse, error)
	Fragments(ctx context.Context) (transport.FragmentsResponse, error)
}

// Buttonは「カートに追加」ボタンの表示状態
type Button struct {
	mu       sync.Mutex
	initial string
	label    string
	disabled bool
	reset    Timer
}

func NewButton(label string) *Button {
	return &Button{initial: label, label: label}
}

func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// 押下中は押せない
func (b *Button) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disabled {
		return false
	}
	if b.reset != nil {
		b.reset.Stop()
		b.reset = nil
	}
	b.disabled = true
	b.label = LabelAdding
	return true
}

func (b *Button) restore() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = false
	b.label = b.initial
	b.reset = nil
}

func (b *Button) added(clock Clock) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = false
	b.label = LabelAdded
	b.reset = clock.AfterFunc(addedResetDelay, b.restore)
}

// Storefrontはページ上のサイドカート一式
type Storefront struct {
	api     CartAPI
	page    *Page
	drawer  *Drawer
	batcher *QuantityBatcher
	notify  Notifier
	clock   Clock
	log     *zap.Logger
}

// autoOpenが有効なら追加成功でドロワーを開く
func New(api CartAPI, autoOpen bool, notify Notifier, clock Clock, log *zap.Logger) *Storefront {
	page := NewPage(nil)
	s := &Storefront{
		api:     api,
		page:    page,
		drawer:  NewDrawer(),
		batcher: NewQuantityBatcher(api, page, notify, clock, log),
		notify:  notify,
		clock:   clock,
		log:     log,
	}

	if autoOpen {
		page.On(EventAddedToCart, func(Event) { s.drawer.Open() })
	}
	return s
}

// Connectはconfigを取得してからStorefrontを組み立てる
func Connect(ctx context.Context, c *transport.Client, notify Notifier, log *zap.Logger) (*Storefront, error) {
	cfg, err := c.Config(ctx)
	if err != nil {
		return nil, err
	}
	s := New(c, cfg.AutoOpen, notify, SystemClock(), log)
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storefront) Page() *Page { return s.page }
func (s *Storefront) Drawer() *Drawer { return s.drawer }
func (s *Storefront) Batcher() *QuantityBatcher { return s.batcher }

// AddToCartはボタンを「Adding...」にして送信し、成功で「Added!」を2秒出す。
// 失敗時はボタンを元に戻して通知する。
func (s *Storefront) AddToCart(ctx context.Context, btn *Button, productID int64, quantity int64) error {
	if !btn.begin() {
		return ErrBusy
	}

	seq := s.page.NextSeq()
	resp, err := s.api.AddToCart(ctx, productID, quantity)
	if err != nil {
		btn.restore()
		s.log.Warn("add to cart failed", zap.Int64("product_id", productID), zap.Error(err))
		notifyError(s.notify, err, MsgAddFailed)
		return err
	}

	btn.added(s.clock)
	if s.page.Apply(seq, resp) {
		s.page.Emit(Event{Name: EventFragmentsRefreshed, Fragments: resp.Fragments, CartHash: resp.CartHash})
	}
	s.page.Emit(Event{Name: EventAddedToCart, Fragments: resp.Fragments, CartHash: resp.CartHash, ProductID: productID})
	return nil
}

// Refreshはカートを変えずに断片を取り直す
func (s *Storefront) Refresh(ctx context.Context) error {
	seq := s.page.NextSeq()
	resp, err := s.api.Fragments(ctx)
	if err != nil {
		return err
	}
	if s.page.Apply(seq, resp) {
		s.page.Emit(Event{Name: EventFragmentsRefreshed, Fragments: resp.Fragments, CartHash: resp.CartHash})
	}
	return nil
}

// Closeは保留中のタイマーを止める
func (s *Storefront) Close() {
	s.batcher.Stop()
}

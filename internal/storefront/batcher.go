package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

	"go.uber.org/zap"
)

const (
	// 数量変更をまとめる待ち時間
	QuantityDebounce = 500 * time.Millisecond

	flushTimeout = 15 * time.Second
)

// 別の更新が通信中
var ErrBusy = errors.New("another cart update is in flight")

type LineAPI interface {
	UpdateCartLine(ctx context.Context, line transport.LineUpdate) (transport.FragmentsResponse, error)
	UpdateCartLines(ctx context.Context, lines []transport.LineUpdate) (transport.FragmentsResponse, error)
}

// QuantityBatcherは数量変更を即時に表示へ反映し、送信は500ms静かになってから
// 1リクエストにまとめて行う。同じ行は最後の値だけ送る。
type QuantityBatcher struct {
	api    LineAPI
	page   *Page
	notify Notifier
	clock  Clock
	log    *zap.Logger

	mu       sync.Mutex
	display  map[string]int64
	pending  map[string]int64
	order    []string
	updating map[string]bool
	timer    Timer
	timerGen uint64
	inFlight bool
}

func NewQuantityBatcher(api LineAPI, page *Page, notify Notifier, clock Clock, log *zap.Logger) *QuantityBatcher {
	return &QuantityBatcher{
		api:      api,
		page:     page,
		notify:   notify,
		clock:    clock,
		log:      log,
		display:  map[string]int64{},
		pending:  map[string]int64{},
		updating: map[string]bool{},
	}
}

// Changeは+/-ボタン。currentは表示中の値。新しい表示値を返す。
func (b *QuantityBatcher) Change(key string, current int64, delta int64) int64 {
	next := current + delta
	if next < 0 {
		next = 0
	}
	return b.Set(key, next)
}

// Setは入力欄への直接入力
func (b *QuantityBatcher) Set(key string, qty int64) int64 {
	if qty < 0 {
		qty = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.display[key] = qty
	if _, ok := b.pending[key]; !ok {
		b.order = append(b.order, key)
	}
	b.pending[key] = qty
	b.restartTimerLocked()
	return qty
}

func (b *QuantityBatcher) restartTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timerGen++
	gen := b.timerGen
	b.timer = b.clock.AfterFunc(QuantityDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		b.mu.Lock()
		// 発火前に張り直されたタイマーは無視
		if gen != b.timerGen {
			b.mu.Unlock()
			return
		}
		_ = b.flushLocked(ctx)
	})
}

// Flushは保留中の変更をまとめて送る。通信中なら待ち直す。
func (b *QuantityBatcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	return b.flushLocked(ctx)
}

// b.muを持った状態で呼ぶ。戻る前に解放する。
func (b *QuantityBatcher) flushLocked(ctx context.Context) error {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	if b.inFlight {
		b.restartTimerLocked()
		b.mu.Unlock()
		return nil
	}

	lines := make([]transport.LineUpdate, 0, len(b.order))
	for _, key := range b.order {
		lines = append(lines, transport.LineUpdate{Key: key, Quantity: b.pending[key]})
		b.updating[key] = true
	}
	b.pending = map[string]int64{}
	b.order = nil
	b.inFlight = true
	seq := b.page.NextSeq()
	b.mu.Unlock()

	resp, err := b.api.UpdateCartLines(ctx, lines)

	b.mu.Lock()
	b.inFlight = false
	for _, l := range lines {
		delete(b.updating, l.Key)
		if _, again := b.pending[l.Key]; !again {
			delete(b.display, l.Key)
		}
	}
	b.mu.Unlock()

	return b.finish(seq, resp, err)
}

// Removeは行の削除。通信中の更新があれば何もしない。
func (b *QuantityBatcher) Remove(ctx context.Context, key string) error {
	b.mu.Lock()
	if b.inFlight {
		b.mu.Unlock()
		return ErrBusy
	}
	b.inFlight = true
	b.updating[key] = true
	if _, ok := b.pending[key]; ok {
		delete(b.pending, key)
		b.order = removeKey(b.order, key)
	}
	seq := b.page.NextSeq()
	b.mu.Unlock()

	resp, err := b.api.UpdateCartLine(ctx, transport.LineUpdate{Key: key, Quantity: 0})

	b.mu.Lock()
	b.inFlight = false
	delete(b.updating, key)
	delete(b.display, key)
	b.mu.Unlock()

	return b.finish(seq, resp, err)
}

func (b *QuantityBatcher) finish(seq uint64, resp transport.FragmentsResponse, err error) error {
	if err != nil {
		b.log.Warn("cart update failed", zap.Error(err))
		notifyError(b.notify, err, MsgUpdateFailed)
		return err
	}

	if !b.page.Apply(seq, resp) {
		b.log.Debug("stale fragments dropped", zap.Uint64("seq", seq))
		return nil
	}
	b.page.Emit(Event{Name: EventFragmentsRefreshed, Fragments: resp.Fragments, CartHash: resp.CartHash})
	return nil
}

// Stopは保留中の変更を送らずに捨てる
func (b *QuantityBatcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
	b.pending = map[string]int64{}
	b.order = nil
}

func (b *QuantityBatcher) Display(key string) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.display[key]
	return v, ok
}

// Updatingは通信中の行（操作不可にする）
func (b *QuantityBatcher) Updating(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updating[key]
}

func (b *QuantityBatcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func removeKey(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

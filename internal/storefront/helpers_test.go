package storefront

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

	"github.com/stretchr/testify/mock"
)

// 手動で進める時計。期限が来たコールバックはAdvanceの呼び出し元で実行する。
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// 動いているタイマー数
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type CartAPIMock struct{ mock.Mock }

func (m *CartAPIMock) UpdateCartLine(ctx context.Context, line transport.LineUpdate) (transport.FragmentsResponse, error) {
	args := m.Called(ctx, line)
	return args.Get(0).(transport.FragmentsResponse), args.Error(1)
}

func (m *CartAPIMock) UpdateCartLines(ctx context.Context, lines []transport.LineUpdate) (transport.FragmentsResponse, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(transport.FragmentsResponse), args.Error(1)
}

func (m *CartAPIMock) AddToCart(ctx context.Context, productID int64, quantity int64) (transport.FragmentsResponse, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(transport.FragmentsResponse), args.Error(1)
}

func (m *CartAPIMock) Fragments(ctx context.Context) (transport.FragmentsResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(transport.FragmentsResponse), args.Error(1)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.msgs...)
}

func fragmentsResp(count string) transport.FragmentsResponse {
	return transport.FragmentsResponse{
		Fragments: transport.Fragments{".sidecart-cart-count": count},
		CartHash:  "hash-" + count,
	}
}

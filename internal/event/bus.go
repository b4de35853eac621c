// Package event はプロセス内のイベント配信。
// 購読者は登録順に同期で呼ばれる。
package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Name string

const (
	CartItemAdded      Name = "cart.item_added"
	CartItemRemoved    Name = "cart.item_removed"
	CartUpdated        Name = "cart.updated"
	SettingsUpdated    Name = "settings.updated"
	FragmentsRefreshed Name = "sidecart.fragments_refreshed"
)

type Event struct {
	Name Name

	SessionID string
	// 変更後のカートのfingerprint（空カートは空文字）
	Fingerprint string
	// SettingsUpdatedで変わった設定キー
	ChangedKeys []string

	At time.Time
}

// 変更キーに含まれるか
func (e Event) Changed(keys ...string) bool {
	for _, c := range e.ChangedKeys {
		for _, k := range keys {
			if c == k {
				return true
			}
		}
	}
	return false
}

type Handler func(ctx context.Context, ev Event) error

type subscriber struct {
	label   string
	handler Handler
}

type Bus struct {
	mu   sync.RWMutex
	subs map[Name][]subscriber
	log  *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[Name][]subscriber), log: log}
}

// Subscribeはnameのイベントにhandlerを登録する。labelはログ用。
func (b *Bus) Subscribe(name Name, label string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], subscriber{label: label, handler: h})
}

// Publishは全購読者を登録順に呼ぶ。
// 途中で失敗しても残りは呼び、エラーはまとめて返す。
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs[ev.Name]...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.handler(ctx, ev); err != nil {
			b.log.Warn("event handler failed",
				zap.String("event", string(ev.Name)),
				zap.String("handler", s.label),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// 外部（合計ウィジェットや他サービス）向けに流すメッセージ
type Message struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	Producer    string    `json:"producer"`
	SessionID   string    `json:"sessionId,omitempty"`
	CartHash    string    `json:"cartHash,omitempty"`
	ChangedKeys []string  `json:"changedKeys,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AMQPChannel は使うメソッドだけ。テストで差し替える。
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Broadcaster はイベントバスの内容をRabbitMQへ流す。
type Broadcaster struct {
	mu  sync.Mutex
	ch  AMQPChannel
	log *zap.Logger
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	return conn, nil
}

func MustDial(url string) *amqp.Connection {
	conn, err := Dial(url)
	if err != nil {
		panic(err)
	}
	return conn
}

func NewBroadcaster(conn *amqp.Connection, log *zap.Logger) (*Broadcaster, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return NewBroadcasterWithChannel(ch, log), nil
}

func NewBroadcasterWithChannel(ch AMQPChannel, log *zap.Logger) *Broadcaster {
	return &Broadcaster{ch: ch, log: log}
}

// Attach はバスに購読を登録する。
func (b *Broadcaster) Attach(bus *event.Bus) {
	bus.Subscribe(event.FragmentsRefreshed, "amqp-broadcast", b.handle)
	bus.Subscribe(event.SettingsUpdated, "amqp-broadcast", b.handle)
}

func (b *Broadcaster) handle(ctx context.Context, ev event.Event) error {
	routingKey := FragmentsRefreshedRoutingKey
	if ev.Name == event.SettingsUpdated {
		routingKey = SettingsUpdatedRoutingKey
	}

	msg := Message{
		EventID:     uuid.NewString(),
		EventType:   string(ev.Name),
		Producer:    producerName,
		SessionID:   ev.SessionID,
		CartHash:    ev.Fingerprint,
		ChangedKeys: ev.ChangedKeys,
		Timestamp:   ev.At,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Name, err)
	}

	if err := b.publishJSON(ctx, routingKey, msg.EventID, body); err != nil {
		// 配信失敗でカート操作は失敗させない
		b.log.Warn("broadcast failed", zap.String("routing_key", routingKey), zap.Error(err))
		return nil
	}
	return nil
}

func (b *Broadcaster) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return b.ch.PublishWithContext(ctx, EventsExchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (b *Broadcaster) Close() error {
	return b.ch.Close()
}

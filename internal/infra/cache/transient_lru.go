package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// プロセス内のtransient。容量を超えたら古いものから捨てる。
// maxTTLを超える期限はmaxTTLで切られる。
type TransientLRU struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

func NewTransientLRU(capacity int, maxTTL time.Duration) *TransientLRU {
	return &TransientLRU{
		lru: expirable.NewLRU[string, entry](capacity, nil, maxTTL),
		now: time.Now,
	}
}

func (c *TransientLRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *TransientLRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	c.lru.Add(key, entry{value: buf, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *TransientLRU) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *TransientLRU) DeletePrefix(_ context.Context, prefix string) error {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}

func (c *TransientLRU) Len() int {
	return c.lru.Len()
}

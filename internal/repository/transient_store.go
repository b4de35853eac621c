package repository

import (
	"context"
	"time"
)

// 期限付きキャッシュ。見つからない・期限切れは ok=false。
type TransientStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// prefixで始まるキーを全削除
	DeletePrefix(ctx context.Context, prefix string) error
}

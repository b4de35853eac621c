package repository

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
)

// セッションごとのカート（1セッション1カート）
type CartRepository interface {
	// 無ければ作る
	ForSession(ctx context.Context, sessionID string) (model.Cart, error)
	// 無ければErrNotFound
	FindBySession(ctx context.Context, sessionID string) (model.Cart, error)
}

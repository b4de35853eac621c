package repository

import (
	"context"
	"errors"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 加算後の数量が上限を超える
var ErrStockExceeded = errors.New("stock exceeded")

// カートの行。Keyはクライアントに渡す行ID。
type CartItemRepository interface {
	// 追加順
	Lines(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同じ商品の行があれば数量を足す。価格は最初に入れたときのもの。
	// 足した結果がmaxQtyを超えるならErrStockExceeded。
	AddQuantity(ctx context.Context, cartID int64, productID int64, qty int64, maxQty int64, unitPrice decimal.Decimal) error
	FindByKey(ctx context.Context, cartID int64, key string) (model.CartItem, error)
	SetQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteLine(ctx context.Context, itemID int64) error
}

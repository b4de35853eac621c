package repository

import (
	"context"
	"errors"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// カタログ（商品とクロスセル設定）の取得を約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// idsの順序を保って返す。見つからないIDは含めない。
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	// 商品に設定されたクロスセルID（Position順）
	CrossSellIDs(ctx context.Context, productID int64) ([]int64, error)

	// seed用
	Upsert(ctx context.Context, p model.Product) (model.Product, error)
	ReplaceCrossSells(ctx context.Context, productID int64, crossSellIDs []int64) error
}

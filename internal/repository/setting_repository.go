package repository

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
)

// 設定（key/value）の保存・取得を約束。
type SettingRepository interface {
	// 保存済みの全設定
	All(ctx context.Context) ([]model.Setting, error)
	// 複数キーをまとめて保存
	SaveAll(ctx context.Context, settings []model.Setting) error
}

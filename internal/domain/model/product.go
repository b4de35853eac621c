package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	ImageURL  string          `gorm:"type:text" json:"image_url"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock     int64           `gorm:"not null" json:"stock"`
	IsActive  bool            `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// 公開中（一覧・おすすめに出してよい）か
func (p Product) Visible() bool {
	return p.IsActive && !p.DeletedAt.Valid
}

func (p Product) Permalink() string {
	return "/product/" + p.Slug
}

// 商品ごとのクロスセル設定。Positionの昇順が表示順。
type ProductCrossSell struct {
	ProductID   int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	CrossSellID int64 `gorm:"primaryKey;autoIncrement:false" json:"cross_sell_id"`
	Position    int   `gorm:"not null;default:0" json:"position"`
}

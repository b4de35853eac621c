package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// settingsテーブルのキー
const (
	SettingShippingThreshold  = "shipping_threshold"
	SettingShippingBarEnabled = "shipping_bar_enabled"
	SettingCrossSellsEnabled  = "cross_sells_enabled"
	SettingCrossSellsLimit    = "cross_sells_limit"
	SettingAutoOpen           = "auto_open"
)

// 管理画面で保存する設定（key/value）。
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイドカートの設定をまとめたもの
type SideCartSettings struct {
	ShippingThreshold  decimal.Decimal `json:"shipping_threshold"`
	ShippingBarEnabled bool            `json:"shipping_bar_enabled"`
	CrossSellsEnabled  bool            `json:"cross_sells_enabled"`
	CrossSellsLimit    int             `json:"cross_sells_limit"`
	AutoOpen           bool            `json:"auto_open"`
}

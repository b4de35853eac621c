package model

import "time"

// 期限付きのキャッシュ。設定(settings)とは別に保存する。
type Transient struct {
	Key       string    `gorm:"primaryKey;type:varchar(191)" json:"key"`
	Value     []byte    `gorm:"type:bytea;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

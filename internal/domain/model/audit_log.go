package model

import "time"

// 設定変更など
type AuditAction string

const (
	//サイドカート設定を更新した操作。
	AuditActionUpdateSettings AuditAction = "UPDATE_SETTINGS"
)

// 何に対する操作か
type AuditResourceType string

const (
	//設定に対する操作。
	AuditResourceSettings AuditResourceType = "settings"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した人（管理キーのラベルやリモートアドレス）。
	Actor string `gorm:"type:varchar(128);not null;index" json:"actor"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のキー（settingsなら設定キーをカンマ区切り）。
	ResourceKey string `gorm:"type:varchar(255);not null" json:"resource_key"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

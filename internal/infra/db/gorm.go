package db

import (
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// Migrate はサイドカートで使うテーブルを作る。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.ProductCrossSell{},
		&model.Cart{},
		&model.CartItem{},
		&model.Setting{},
		&model.Transient{},
		&model.AuditLog{},
	)
}

package repository

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingGormRepository struct {
	db *gorm.DB
}

// DI
func NewSettingGormRepository(db *gorm.DB) *SettingGormRepository {
	return &SettingGormRepository{db: db}
}

func (r *SettingGormRepository) All(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	if err := r.db.WithContext(ctx).Order("key asc").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// keyが同じなら上書き
func (r *SettingGormRepository) SaveAll(ctx context.Context, settings []model.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&settings).Error
}

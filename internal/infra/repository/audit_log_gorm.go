package repository

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditPage = 50
	maxAuditPage     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(resourceScope(filter.ResourceType), pageScope(filter.Limit, filter.Offset)).
		Order("id DESC").
		Find(&logs).Error
	return logs, err
}

func resourceScope(t model.AuditResourceType) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == "" {
			return db
		}
		return db.Where("resource_type = ?", t)
	}
}

// limitは1..200（範囲外は50）
func pageScope(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxAuditPage {
		limit = defaultAuditPage
	}
	if offset < 0 {
		offset = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}

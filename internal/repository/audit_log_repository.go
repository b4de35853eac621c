package repository

import (
	"context"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
)

// 空のResourceTypeは全件
type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	Limit        int
	Offset       int
}

// 管理操作の履歴
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}

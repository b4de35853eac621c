package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBに保存するtransient。複数プロセスでキャッシュを共有したいとき用。
type TransientGormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// DI
func NewTransientGormStore(db *gorm.DB) *TransientGormStore {
	return &TransientGormStore{db: db, now: time.Now}
}

func (s *TransientGormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var t model.Transient
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now()).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t.Value, true, nil
}

func (s *TransientGormStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	t := model.Transient{Key: key, Value: value, ExpiresAt: s.now().Add(ttl)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
		}).
		Create(&t).Error
}

func (s *TransientGormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.Transient{}).Error
}

func (s *TransientGormStore) DeletePrefix(ctx context.Context, prefix string) error {
	return s.db.WithContext(ctx).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Delete(&model.Transient{}).Error
}

// 期限切れを掃除する（serveの定期処理から呼ぶ）
func (s *TransientGormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&model.Transient{})
	return res.RowsAffected, res.Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")
	return r.Replace(s)
}

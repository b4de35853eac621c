package repository

import (
	"context"
	"errors"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postgresの一意制約違反
const pgUniqueViolation = "23505"

// CartGormRepositoryはcartsとcart_itemsの両方を扱う。
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) ForSession(ctx context.Context, sessionID string) (model.Cart, error) {
	cart, err := r.FindBySession(ctx, sessionID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, err
	}

	cart = model.Cart{SessionID: sessionID}
	createErr := r.db.WithContext(ctx).Create(&cart).Error
	if createErr == nil {
		return cart, nil
	}
	// 同じセッションの別リクエストが先に作った
	if isUniqueViolation(createErr) {
		return r.FindBySession(ctx, sessionID)
	}
	return model.Cart{}, createErr
}

func (r *CartGormRepository) FindBySession(ctx context.Context, sessionID string) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	return cart, err
}

func (r *CartGormRepository) Lines(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	return items, err
}

// (cart_id, product_id)の一意制約で数量を原子的に足す。
// 上限チェックはDO UPDATEのWHEREで行うので同時追加でも超えない。
func (r *CartGormRepository) AddQuantity(ctx context.Context, cartID int64, productID int64, qty int64, maxQty int64, unitPrice decimal.Decimal) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}
	if qty > maxQty {
		return repo.ErrStockExceeded
	}

	line := model.CartItem{
		CartID:            cartID,
		Key:               uuid.NewString(),
		ProductID:         productID,
		Quantity:          qty,
		UnitPriceSnapshot: unitPrice,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "cart_items.quantity + EXCLUDED.quantity <= ?", Vars: []any{maxQty}},
			}},
		}).
		Create(&line)
	if res.Error != nil {
		return res.Error
	}
	// WHEREで更新されなかった
	if res.RowsAffected == 0 {
		return repo.ErrStockExceeded
	}
	return nil
}

func (r *CartGormRepository) FindByKey(ctx context.Context, cartID int64, key string) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND key = ?", cartID, key).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	return item, err
}

func (r *CartGormRepository) SetQuantity(ctx context.Context, itemID int64, qty int64) error {
	return affectedOne(r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty))
}

func (r *CartGormRepository) DeleteLine(ctx context.Context, itemID int64) error {
	return affectedOne(r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID))
}

// 0行ならErrNotFound
func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

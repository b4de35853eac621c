package repository

import (
	"context"
	"errors"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 1クエリでまとめて取得し、idsの順に並べ直す
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var found []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return []model.Product{}, err
	}

	byID := make(map[int64]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]model.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// クロスセルIDをPosition順で取得
func (r *ProductGormRepository) CrossSellIDs(ctx context.Context, productID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductCrossSell{}).
		Where("product_id = ?", productID).
		Order("position asc").
		Order("cross_sell_id asc").
		Pluck("cross_sell_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// slugが同じなら更新、無ければ作成
func (r *ProductGormRepository) Upsert(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "image_url", "price", "stock", "is_active", "updated_at"}),
		}).
		Create(&p).Error
	if err != nil {
		return model.Product{}, err
	}

	//ON CONFLICTのときIDが返らないことがあるので取り直す
	if p.ID == 0 {
		if err := r.db.WithContext(ctx).Where("slug = ?", p.Slug).First(&p).Error; err != nil {
			return model.Product{}, err
		}
	}
	return p, nil
}

// クロスセル設定を入れ替える（並び順はcrossSellIDsの順）
func (r *ProductGormRepository) ReplaceCrossSells(ctx context.Context, productID int64, crossSellIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductCrossSell{}).Error; err != nil {
			return err
		}
		if len(crossSellIDs) == 0 {
			return nil
		}

		rows := make([]model.ProductCrossSell, 0, len(crossSellIDs))
		for i, id := range crossSellIDs {
			rows = append(rows, model.ProductCrossSell{ProductID: productID, CrossSellID: id, Position: i})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

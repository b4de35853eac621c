package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 取り込み後に全クロスセルキャッシュを捨てる
type crossSellCacheClearer interface {
	ClearAll(ctx context.Context) error
}

// ProductUsecase はカタログ（商品とクロスセル）の取り込み。
type ProductUsecase struct {
	productRepo repo.ProductRepository
	crossSells  crossSellCacheClearer
	log         *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	crossSells crossSellCacheClearer,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		crossSells:  crossSells,
		log:         log,
	}
}

// カタログファイルの1商品。cross_sellsはslugで指定する。
type CatalogProductInput struct {
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url"`
	Price      decimal.Decimal `json:"price"`
	Stock      int64           `json:"stock"`
	IsActive   bool            `json:"is_active"`
	CrossSells []string        `json:"cross_sells"`
}

type CatalogInput struct {
	Products []CatalogProductInput `json:"products"`
}

type ImportCatalogOutput struct {
	Products   int `json:"products"`
	CrossSells int `json:"cross_sells"`
}

// ImportCatalogは商品をslugでupsertし、クロスセルを置き換える。
func (u *ProductUsecase) ImportCatalog(ctx context.Context, in CatalogInput) (ImportCatalogOutput, error) {
	if len(in.Products) == 0 {
		return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, "no products")
	}

	//先に全件チェック
	slugs := make(map[string]struct{}, len(in.Products))
	for i, p := range in.Products {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: invalid slug", i))
		}
		if _, dup := slugs[slug]; dup {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: duplicate slug %q", i, slug))
		}
		slugs[slug] = struct{}{}

		if strings.TrimSpace(p.Name) == "" || len(p.Name) > 255 {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: invalid name", i))
		}
		if p.Price.IsNegative() {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: invalid price", i))
		}
		if p.Stock < 0 {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: invalid stock", i))
		}
	}
	for i, p := range in.Products {
		for _, cs := range p.CrossSells {
			if _, ok := slugs[cs]; !ok {
				return ImportCatalogOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("products[%d]: unknown cross-sell %q", i, cs))
			}
		}
	}

	idBySlug := make(map[string]int64, len(in.Products))
	for _, p := range in.Products {
		saved, err := u.productRepo.Upsert(ctx, model.Product{
			Name:     strings.TrimSpace(p.Name),
			Slug:     strings.TrimSpace(p.Slug),
			ImageURL: p.ImageURL,
			Price:    p.Price,
			Stock:    p.Stock,
			IsActive: p.IsActive,
		})
		if err != nil {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		idBySlug[saved.Slug] = saved.ID
	}

	out := ImportCatalogOutput{Products: len(in.Products)}
	for _, p := range in.Products {
		ids := make([]int64, 0, len(p.CrossSells))
		for _, cs := range p.CrossSells {
			ids = append(ids, idBySlug[cs])
		}
		if err := u.productRepo.ReplaceCrossSells(ctx, idBySlug[strings.TrimSpace(p.Slug)], ids); err != nil {
			return ImportCatalogOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.CrossSells += len(ids)
	}

	if err := u.crossSells.ClearAll(ctx); err != nil {
		u.log.Warn("cross-sell cache clear failed", zap.Error(err))
	}

	u.log.Info("catalog imported", zap.Int("products", out.Products), zap.Int("cross_sells", out.CrossSells))
	return out, nil
}

//go:build integration

package integration

import (
	"strconv"
	"testing"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func productIDs(t *testing.T, gormDB *gorm.DB, slugs ...string) map[string]int64 {
	t.Helper()

	var products []model.Product
	require.NoError(t, gormDB.Where("slug IN ?", slugs).Find(&products).Error)
	require.Len(t, products, len(slugs))

	out := make(map[string]int64, len(products))
	for _, p := range products {
		out[p.Slug] = p.ID
	}
	return out
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ForSession(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindBySession(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) Lines(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) AddQuantity(ctx context.Context, cartID int64, productID int64, addQty int64, maxQty int64, unitPriceSnapshot decimal.Decimal) error {
	args := m.Called(ctx, cartID, productID, addQty, maxQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByKey(ctx context.Context, cartID int64, key string) (model.CartItem, error) {
	args := m.Called(ctx, cartID, key)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) SetQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteLine(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) CrossSellIDs(ctx context.Context, productID int64) ([]int64, error) {
	args := m.Called(ctx, productID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *ProductRepoMock) Upsert(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	if fn, ok := args.Get(0).(func(context.Context, model.Product) model.Product); ok {
		return fn(ctx, p), args.Error(1)
	}
	saved, _ := args.Get(0).(model.Product)
	return saved, args.Error(1)
}

func (m *ProductRepoMock) ReplaceCrossSells(ctx context.Context, productID int64, crossSellIDs []int64) error {
	args := m.Called(ctx, productID, crossSellIDs)
	return args.Error(0)
}

type SettingRepoMock struct{ mock.Mock }

func (m *SettingRepoMock) All(ctx context.Context) ([]model.Setting, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]model.Setting)
	return rows, args.Error(1)
}

func (m *SettingRepoMock) SaveAll(ctx context.Context, settings []model.Setting) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type TransientStoreMock struct{ mock.Mock }

func (m *TransientStoreMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).([]byte)
	return v, args.Bool(1), args.Error(2)
}

func (m *TransientStoreMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *TransientStoreMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *TransientStoreMock) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

// 設定を固定で返す
type staticSettings struct {
	s   model.SideCartSettings
	err error
}

func (f *staticSettings) Get(ctx context.Context) (model.SideCartSettings, error) {
	return f.s, f.err
}

// txはそのままモックのrepoで実行
type txReposMock struct {
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
}

func (r *txReposMock) Carts() repo.CartRepository         { return r.carts }
func (r *txReposMock) CartItems() repo.CartItemRepository { return r.items }
func (r *txReposMock) Products() repo.ProductRepository   { return r.products }

type TxManagerMock struct {
	repos *txReposMock
	calls int
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	return fn(m.repos)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if !assert.Error(t, err) {
		return
	}
	assert.True(t, strings.Contains(err.Error(), want), "error=%q want contains %q", err.Error(), want)
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/fragment"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"go.uber.org/zap"
)

// 1回のまとめ更新で受け付ける最大行数
const maxBatchLines = 100

type FragmentRenderer interface {
	Render(ctx context.Context, snap model.CartSnapshot) (fragment.Fragments, error)
}

// CartUsecase はサイドカートのカート操作。
// 変更のたびに断片を作り直して返す。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	tx           repo.TransactionManager
	renderer     FragmentRenderer
	bus          *event.Bus
	log          *zap.Logger
}

// DI
func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	renderer FragmentRenderer,
	bus *event.Bus,
	log *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		tx:           tx,
		renderer:     renderer,
		bus:          bus,
		log:          log,
	}
}

// FragmentsResponse は差し替え用の断片とカートのハッシュ。
type FragmentsResponse struct {
	Fragments fragment.Fragments `json:"fragments"`
	CartHash  string             `json:"cart_hash"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// 0は削除
type UpdateCartLineInput struct {
	Key      string `json:"cart_key"`
	Quantity int64  `json:"new_qty"`
}

// Snapshotはセッションのカート内容（無ければ空）。
func (u *CartUsecase) Snapshot(ctx context.Context, sessionID string) (model.CartSnapshot, error) {
	if sessionID == "" {
		return model.CartSnapshot{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	cart, err := u.cartRepo.FindBySession(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.NewCartSnapshot(nil), nil
	}
	if err != nil {
		return model.CartSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildSnapshot(ctx, cart.ID)
}

// RefreshFragmentsはカートを変えずに全断片を返す。
func (u *CartUsecase) RefreshFragments(ctx context.Context, sessionID string) (FragmentsResponse, error) {
	snap, err := u.Snapshot(ctx, sessionID)
	if err != nil {
		return FragmentsResponse{}, err
	}
	return u.render(ctx, snap)
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (FragmentsResponse, error) {
	if sessionID == "" {
		return FragmentsResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if in.ProductID <= 0 {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// ACTIVEカート取得（無ければ作成）
	cart, err := u.cartRepo.ForSession(ctx, sessionID)
	if err != nil {
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.Visible() {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	items, err := u.cartItemRepo.Lines(ctx, cart.ID)
	if err != nil {
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}

	if existingQty+in.Quantity > p.Stock {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// unit_price_snapshot は「追加時点の価格」を渡す
	// 同時追加で在庫を超える分はDB側の条件で弾かれる
	err = u.cartItemRepo.AddQuantity(ctx, cart.ID, in.ProductID, in.Quantity, p.Stock, p.Price)
	if errors.Is(err, repo.ErrStockExceeded) {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}
	if err != nil {
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	snap, err := u.buildSnapshot(ctx, cart.ID)
	if err != nil {
		return FragmentsResponse{}, err
	}
	u.publish(ctx, event.CartItemAdded, sessionID, snap)

	return u.renderAndBroadcast(ctx, sessionID, snap)
}

// UpdateCartLine は1行の数量変更（0なら削除）。
func (u *CartUsecase) UpdateCartLine(ctx context.Context, sessionID string, in UpdateCartLineInput) (FragmentsResponse, error) {
	return u.UpdateCartLines(ctx, sessionID, []UpdateCartLineInput{in})
}

// UpdateCartLines は複数行をまとめて1トランザクションで更新する。
// 同じKeyが複数あれば最後の値だけ使う。
func (u *CartUsecase) UpdateCartLines(ctx context.Context, sessionID string, lines []UpdateCartLineInput) (FragmentsResponse, error) {
	if sessionID == "" {
		return FragmentsResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if len(lines) == 0 || len(lines) > maxBatchLines {
		return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid lines")
	}

	order := make([]string, 0, len(lines))
	want := make(map[string]int64, len(lines))
	for _, l := range lines {
		if l.Key == "" {
			return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid cart_key")
		}
		if l.Quantity < 0 {
			return FragmentsResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if _, ok := want[l.Key]; !ok {
			order = append(order, l.Key)
		}
		want[l.Key] = l.Quantity
	}

	var (
		cartID  int64
		removed bool
		updated bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindBySession(ctx, sessionID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cartID = cart.ID

		for _, key := range order {
			qty := want[key]

			item, err := r.CartItems().FindByKey(ctx, cart.ID, key)
			if errors.Is(err, repo.ErrNotFound) {
				// 既に消えている行の削除は成功扱い
				if qty == 0 {
					continue
				}
				return NewHTTPError(http.StatusNotFound, "cart item not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if qty == 0 {
				if err := r.CartItems().DeleteLine(ctx, item.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				removed = true
				continue
			}
			if qty == item.Quantity {
				continue
			}

			//商品の在庫チェック
			p, err := r.Products().FindByID(ctx, item.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.Visible() {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if qty > p.Stock {
				return NewHTTPError(http.StatusBadRequest, "stock exceeded")
			}

			if err := r.CartItems().SetQuantity(ctx, item.ID, qty); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusNotFound, "cart item not found")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			updated = true
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return FragmentsResponse{}, err
		}
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	snap, err := u.buildSnapshot(ctx, cartID)
	if err != nil {
		return FragmentsResponse{}, err
	}
	if removed {
		u.publish(ctx, event.CartItemRemoved, sessionID, snap)
	}
	if updated {
		u.publish(ctx, event.CartUpdated, sessionID, snap)
	}

	return u.renderAndBroadcast(ctx, sessionID, snap)
}

// cartIDの明細からスナップショットを作る。非公開・削除済み商品の行は出さない。
func (u *CartUsecase) buildSnapshot(ctx context.Context, cartID int64) (model.CartSnapshot, error) {
	items, err := u.cartItemRepo.Lines(ctx, cartID)
	if err != nil {
		return model.CartSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines := make([]model.CartLine, 0, len(items))
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.CartSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.Visible() {
			continue
		}

		lines = append(lines, model.CartLine{
			Key:       it.Key,
			ProductID: it.ProductID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceSnapshot,
			LineTotal: it.LineTotal(),
		})
	}

	return model.NewCartSnapshot(lines), nil
}

func (u *CartUsecase) render(ctx context.Context, snap model.CartSnapshot) (FragmentsResponse, error) {
	frags, err := u.renderer.Render(ctx, snap)
	if err != nil {
		u.log.Error("fragment render failed", zap.Error(err))
		if he, ok := AsHTTPError(err); ok {
			return FragmentsResponse{}, he
		}
		return FragmentsResponse{}, NewHTTPError(http.StatusInternalServerError, "render error")
	}
	return FragmentsResponse{Fragments: frags, CartHash: snap.Fingerprint()}, nil
}

func (u *CartUsecase) renderAndBroadcast(ctx context.Context, sessionID string, snap model.CartSnapshot) (FragmentsResponse, error) {
	out, err := u.render(ctx, snap)
	if err != nil {
		return FragmentsResponse{}, err
	}
	u.publish(ctx, event.FragmentsRefreshed, sessionID, snap)
	return out, nil
}

// 購読者の失敗はカート操作を失敗させない（ログはbus側）
func (u *CartUsecase) publish(ctx context.Context, name event.Name, sessionID string, snap model.CartSnapshot) {
	_ = u.bus.Publish(ctx, event.Event{
		Name:        name,
		SessionID:   sessionID,
		Fingerprint: snap.Fingerprint(),
	})
}

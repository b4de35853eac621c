package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/middleware"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartService interface {
	AddToCart(ctx context.Context, sessionID string, in usecase.AddCartInput) (usecase.FragmentsResponse, error)
	UpdateCartLine(ctx context.Context, sessionID string, in usecase.UpdateCartLineInput) (usecase.FragmentsResponse, error)
	UpdateCartLines(ctx context.Context, sessionID string, lines []usecase.UpdateCartLineInput) (usecase.FragmentsResponse, error)
	RefreshFragments(ctx context.Context, sessionID string) (usecase.FragmentsResponse, error)
}

type NonceService interface {
	middleware.NonceVerifier
	Issue(sessionID string) (string, time.Time, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (model.SideCartSettings, error)
}

// /sidecart のHTTP
type CartHandler struct {
	uc       CartService
	nonce    NonceService
	settings SettingsReader
}

// DI
func NewCartHandler(uc CartService, nonce NonceService, settings SettingsReader) *CartHandler {
	return &CartHandler{uc: uc, nonce: nonce, settings: settings}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id" form:"product_id"`
	Quantity  int64 `json:"quantity" form:"quantity"`
}

type UpdateCartLineRequest struct {
	CartKey string `json:"cart_key"`
	NewQty  *int64 `json:"new_qty"`
}

type UpdateCartLinesRequest struct {
	Lines []usecase.UpdateCartLineInput `json:"lines"`
}

type UpdateCartResponse struct {
	Success bool                      `json:"success"`
	Data    usecase.FragmentsResponse `json:"data"`
}

// クライアントに渡す設定
type ClientConfigResponse struct {
	AutoOpen bool   `json:"auto_open"`
	Nonce    string `json:"nonce"`
	AjaxURL  string `json:"ajax_url"`
}

// /sidecart 以下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cookieSecure bool) {
	g := e.Group("/sidecart")
	g.Use(middleware.Session(cookieSecure))

	g.GET("/config", h.config)
	g.GET("/fragments", h.fragments)
	g.POST("/fragments", h.fragments)
	g.POST("/cart/add", h.addToCart)

	guarded := g.Group("/cart", middleware.NonceGuard(h.nonce))
	guarded.POST("/update", h.updateLine)
	guarded.POST("/update-batch", h.updateLines)
}

func (h *CartHandler) config(c echo.Context) error {
	sessionID := middleware.SessionID(c)

	s, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	nonce, _, err := h.nonce.Issue(sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, ClientConfigResponse{
		AutoOpen: s.AutoOpen,
		Nonce:    nonce,
		AjaxURL:  "/sidecart",
	})
}

func (h *CartHandler) fragments(c echo.Context) error {
	out, err := h.uc.RefreshFragments(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	// 数量省略は1個
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	out, err := h.uc.AddToCart(c.Request().Context(), middleware.SessionID(c), usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateLine(c echo.Context) error {
	var req UpdateCartLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, FailureResponse{Error: "invalid body"})
	}
	if req.NewQty == nil {
		return c.JSON(http.StatusBadRequest, FailureResponse{Error: "invalid quantity"})
	}

	out, err := h.uc.UpdateCartLine(c.Request().Context(), middleware.SessionID(c), usecase.UpdateCartLineInput{
		Key:      req.CartKey,
		Quantity: *req.NewQty,
	})
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, UpdateCartResponse{Success: true, Data: out})
}

func (h *CartHandler) updateLines(c echo.Context) error {
	var req UpdateCartLinesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, FailureResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateCartLines(c.Request().Context(), middleware.SessionID(c), req.Lines)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, UpdateCartResponse{Success: true, Data: out})
}

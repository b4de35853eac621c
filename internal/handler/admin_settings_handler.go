package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/middleware"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SettingsService interface {
	Get(ctx context.Context) (model.SideCartSettings, error)
	Update(ctx context.Context, actor string, in usecase.UpdateSettingsInput) (model.SideCartSettings, error)
	ListAuditLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, error)
}

type CatalogService interface {
	ImportCatalog(ctx context.Context, in usecase.CatalogInput) (usecase.ImportCatalogOutput, error)
}

// /admin のHTTP（X-Admin-Key必須）
type AdminSettingsHandler struct {
	settings SettingsService
	catalog  CatalogService
}

// DI
func NewAdminSettingsHandler(settings SettingsService, catalog CatalogService) *AdminSettingsHandler {
	return &AdminSettingsHandler{settings: settings, catalog: catalog}
}

func (h *AdminSettingsHandler) RegisterRoutes(e *echo.Echo, adminKeyHash string) {
	g := e.Group("/admin", middleware.AdminKeyGuard(adminKeyHash))

	g.GET("/settings", h.get)
	g.PUT("/settings", h.update)
	g.GET("/audit-logs", h.auditLogs)
	g.POST("/catalog", h.importCatalog)
}

func (h *AdminSettingsHandler) get(c echo.Context) error {
	s, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminSettingsHandler) update(c echo.Context) error {
	var req usecase.UpdateSettingsInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.settings.Update(c.Request().Context(), middleware.AdminActor(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminSettingsHandler) auditLogs(c echo.Context) error {
	limit := 20
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		offset = n
	}

	logs, err := h.settings.ListAuditLogs(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]model.AuditLog{"items": logs})
}

func (h *AdminSettingsHandler) importCatalog(c echo.Context) error {
	var req usecase.CatalogInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.catalog.ImportCatalog(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

package server

import (
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/config"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart   *handler.CartHandler
	Admin  *handler.AdminSettingsHandler
	Health *handler.HealthHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Health.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg.CookieSecure)
	h.Admin.RegisterRoutes(e, cfg.AdminKeyHash)
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const NonceHeader = "X-Sidecart-Nonce"

type NonceVerifier interface {
	Verify(raw string, sessionID string) error
}

// NonceGuardは更新系リクエストのnonceを検証する。
// nonceはヘッダかフォーム値(nonce)で受け取る。
func NonceGuard(v NonceVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(NonceHeader)
			if raw == "" {
				raw = c.QueryParam("nonce")
			}
			if raw == "" && c.Request().Header.Get(echo.HeaderContentType) != echo.MIMEApplicationJSON {
				raw = c.FormValue("nonce")
			}

			if err := v.Verify(raw, SessionID(c)); err != nil {
				return c.JSON(http.StatusForbidden, errorJSON("invalid nonce"))
			}
			return next(c)
		}
	}
}

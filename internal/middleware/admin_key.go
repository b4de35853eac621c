package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKeyGuardはX-Admin-Keyをbcryptハッシュと照合する。
// ハッシュ未設定なら管理APIは無いものとして404。
func AdminKeyGuard(hash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if hash == "" {
				return c.JSON(http.StatusNotFound, errorJSON("not found"))
			}

			key := c.Request().Header.Get(AdminKeyHeader)
			if key == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			//監査ログ用
			c.Set(CtxAdminActorKey, "admin@"+c.RealIP())
			return next(c)
		}
	}
}

// AdminActorはAdminKeyGuardが入れた操作者ラベル。
func AdminActor(c echo.Context) string {
	actor, _ := c.Get(CtxAdminActorKey).(string)
	if actor == "" {
		return "admin"
	}
	return actor
}

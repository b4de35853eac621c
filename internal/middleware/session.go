package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey   = "session_id"   // string
	CtxAdminActorKey  = "admin_actor"  // string
	SessionCookieName = "sidecart_session"

	sessionMaxAge = 30 * 24 * time.Hour
)

// Sessionはsidecart_sessionクッキーからセッションIDを取り出す。
// 無い・壊れている場合は新しく発行する。
func Session(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					sessionID = id.String()
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(CtxSessionIDKey, sessionID)
			return next(c)
		}
	}
}

// SessionIDはSessionが入れたIDを返す（無ければ空）。
func SessionID(c echo.Context) string {
	id, _ := c.Get(CtxSessionIDKey).(string)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const validSession = "7b2f0c55-9f55-4b8e-8f3f-2f8f3c0d6a10"

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, middleware.SessionID(c))
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// Session
// =====================

func TestSession_IssuesCookieWhenMissing(t *testing.T) {
	e := echo.New()
	e.GET("/", okHandler, middleware.Session(true))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestSession_ReusesValidCookie(t *testing.T) {
	e := echo.New()
	e.GET("/", okHandler, middleware.Session(false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: validSession})
	rec := serve(e, req)

	assert.Equal(t, validSession, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSession_ReplacesBrokenCookie(t *testing.T) {
	e := echo.New()
	e.GET("/", okHandler, middleware.Session(false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-uuid"})
	rec := serve(e, req)

	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, "not-a-uuid", rec.Body.String())
}

// =====================
// NonceGuard
// =====================

type verifierFunc func(raw, sessionID string) error

func (f verifierFunc) Verify(raw, sessionID string) error { return f(raw, sessionID) }

func nonceEcho() *echo.Echo {
	v := verifierFunc(func(raw, sessionID string) error {
		if raw == "good" && sessionID == validSession {
			return nil
		}
		return errors.New("bad")
	})
	e := echo.New()
	e.POST("/", okHandler, middleware.Session(false), middleware.NonceGuard(v))
	return e
}

func TestNonceGuard(t *testing.T) {
	cases := map[string]struct {
		header string
		query  string
		want   int
	}{
		"header":  {header: "good", want: http.StatusOK},
		"query":   {query: "?nonce=good", want: http.StatusOK},
		"missing": {want: http.StatusForbidden},
		"wrong":   {header: "bad", want: http.StatusForbidden},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/"+tc.query, nil)
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: validSession})
			if tc.header != "" {
				req.Header.Set(middleware.NonceHeader, tc.header)
			}

			rec := serve(nonceEcho(), req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"invalid nonce"}`, rec.Body.String())
			}
		})
	}
}

// =====================
// AdminKeyGuard
// =====================

func TestAdminKeyGuard(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	actorHandler := func(c echo.Context) error {
		return c.String(http.StatusOK, middleware.AdminActor(c))
	}

	cases := map[string]struct {
		hash string
		key  string
		want int
	}{
		"disabled": {hash: "", key: "s3cret", want: http.StatusNotFound},
		"missing":  {hash: string(hash), want: http.StatusUnauthorized},
		"wrong":    {hash: string(hash), key: "nope", want: http.StatusForbidden},
		"ok":       {hash: string(hash), key: "s3cret", want: http.StatusOK},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/admin", actorHandler, middleware.AdminKeyGuard(tc.hash))

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.RemoteAddr = "10.0.0.9:1234"
			if tc.key != "" {
				req.Header.Set(middleware.AdminKeyHeader, tc.key)
			}
			rec := serve(e, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "admin@10.0.0.9", rec.Body.String())
			}
		})
	}
}

// =====================
// RequestLogger
// =====================

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(middleware.RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["route"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
}

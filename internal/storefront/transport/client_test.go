package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, mux *http.ServeMux) *transport.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := transport.New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := transport.New("  ")
	assert.EqualError(t, err, "base URL is required")
}

func TestClient_ConfigStoresNonceAndSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sidecart/config", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sidecart_session", Value: "sess-1", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"auto_open": true, "nonce": "n-1", "ajax_url": "/sidecart"})
	})
	mux.HandleFunc("/sidecart/cart/update", func(w http.ResponseWriter, r *http.Request) {
		//nonceとcookieが付いていること
		assert.Equal(t, "n-1", r.Header.Get("X-Sidecart-Nonce"))
		ck, err := r.Cookie("sidecart_session")
		if assert.NoError(t, err) {
			assert.Equal(t, "sess-1", ck.Value)
		}

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "k1", body["cart_key"])
		assert.EqualValues(t, 0, body["new_qty"])

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"fragments": map[string]string{".sidecart-cart-count": "<span>0</span>"}, "cart_hash": ""},
		})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	cfg, err := c.Config(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.AutoOpen)
	assert.Equal(t, "n-1", cfg.Nonce)

	out, err := c.UpdateCartLine(ctx, transport.LineUpdate{Key: "k1", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, "<span>0</span>", out.Fragments[".sidecart-cart-count"])
}

func TestClient_UpdateCartLinesSendsOneRequest(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/sidecart/cart/update-batch", func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body struct {
			Lines []transport.LineUpdate `json:"lines"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []transport.LineUpdate{{Key: "a", Quantity: 2}, {Key: "b", Quantity: 0}}, body.Lines)

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"fragments": map[string]string{}, "cart_hash": "h"}})
	})
	c := newServer(t, mux)

	out, err := c.UpdateCartLines(context.Background(), []transport.LineUpdate{{Key: "a", Quantity: 2}, {Key: "b", Quantity: 0}})
	require.NoError(t, err)
	assert.Equal(t, "h", out.CartHash)
	assert.Equal(t, 1, calls)
}

func TestClient_AddToCartAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sidecart/cart/add", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock exceeded"})
	})
	c := newServer(t, mux)

	_, err := c.AddToCart(context.Background(), 10, 5)
	require.Error(t, err)

	ae, ok := transport.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "stock exceeded", ae.Message)
}

func TestClient_ErrorWithoutBodyUsesStatusText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sidecart/fragments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newServer(t, mux)

	_, err := c.Fragments(context.Background())
	ae, ok := transport.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Bad Gateway", ae.Message)
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	url := srv.URL
	srv.Close()

	c, err := transport.New(url)
	require.NoError(t, err)

	_, err = c.Fragments(context.Background())
	require.Error(t, err)
	_, ok := transport.AsAPIError(err)
	assert.False(t, ok)
}

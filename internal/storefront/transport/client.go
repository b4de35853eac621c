package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// サーバーが受け付けるnonceヘッダー
const nonceHeader = "X-Sidecart-Nonce"

// Fragmentsはセレクタ→HTML
type Fragments map[string]string

// 断片の再描画結果
type FragmentsResponse struct {
	Fragments Fragments `json:"fragments"`
	CartHash  string    `json:"cart_hash"`
}

// GET /sidecart/config
type ClientConfig struct {
	AutoOpen bool   `json:"auto_open"`
	Nonce    string `json:"nonce"`
	AjaxURL  string `json:"ajax_url"`
}

// 数量更新1行分。0で削除。
type LineUpdate struct {
	Key      string `json:"cart_key"`
	Quantity int64  `json:"new_qty"`
}

// APIErrorはサーバーが返した4xx/5xx。メッセージはそのまま利用者に見せる。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sidecart: %d %s", e.Status, e.Message)
}

// AsAPIErrorはerrがサーバー応答由来か判定する。
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Client はサイドカートAPIのHTTPクライアント。
// セッションはcookie jarで保持する。
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	nonce string
}

func New(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Configは設定とnonceを取得する。nonceは以降の更新系で使う。
func (c *Client) Config(ctx context.Context) (ClientConfig, error) {
	var out ClientConfig
	if err := c.doJSON(ctx, http.MethodGet, "/sidecart/config", nil, &out); err != nil {
		return ClientConfig{}, err
	}

	c.mu.Lock()
	c.nonce = out.Nonce
	c.mu.Unlock()
	return out, nil
}

func (c *Client) Fragments(ctx context.Context) (FragmentsResponse, error) {
	var out FragmentsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/sidecart/fragments", nil, &out); err != nil {
		return FragmentsResponse{}, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int64) (FragmentsResponse, error) {
	body := map[string]int64{"product_id": productID, "quantity": quantity}

	var out FragmentsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sidecart/cart/add", body, &out); err != nil {
		return FragmentsResponse{}, err
	}
	return out, nil
}

func (c *Client) UpdateCartLine(ctx context.Context, line LineUpdate) (FragmentsResponse, error) {
	var out updateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sidecart/cart/update", line, &out); err != nil {
		return FragmentsResponse{}, err
	}
	return out.Data, nil
}

// UpdateCartLinesは複数行を1リクエストで送る。
func (c *Client) UpdateCartLines(ctx context.Context, lines []LineUpdate) (FragmentsResponse, error) {
	body := struct {
		Lines []LineUpdate `json:"lines"`
	}{Lines: lines}

	var out updateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sidecart/cart/update-batch", body, &out); err != nil {
		return FragmentsResponse{}, err
	}
	return out.Data, nil
}

type updateResponse struct {
	Success bool              `json:"success"`
	Data    FragmentsResponse `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	if c.nonce != "" {
		req.Header.Set(nonceHeader, c.nonce)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = json.Unmarshal(data, &er)
		if er.Error == "" {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: er.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

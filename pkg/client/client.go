package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Auth endpoints, posted to with Credentials.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
)

// DefaultConnectPath receives scanned EANs. Some deployments use /api/connect.
const DefaultConnectPath = "/integration/connect"

// TokenSource supplies the bearer token. It is read on every request so a
// login or logout takes effect without rebuilding the client.
type TokenSource interface {
	Token() string
}

// Credentials is the payload for the login and register endpoints.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AddFridgeItemRequest is the payload for adding an item to a fridge.
type AddFridgeItemRequest struct {
	FridgeID       string  `json:"fridgeId"`
	ProductID      string  `json:"productId"`
	CustomName     *string `json:"customName"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit"`
	BestBeforeDate *string `json:"bestBeforeDate"`
	OpenDate       *string `json:"openDate"`
}

// CreateProductRequest is the payload for adding a catalog product.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	EAN         *string `json:"ean"`
	ProductType string  `json:"productType"`
	DefaultUnit string  `json:"defaultUnit"`
}

// Client is the fridge API client.
type Client struct {
	baseURL     string
	tokens      TokenSource
	httpClient  *http.Client
	connectPath string
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc, so later options never touch the
// caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTransport wraps requests in rt, e.g. a logging or metrics transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithConnectPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.connectPath = path
		}
	}
}

// New creates a new API client. tokens may be nil for unauthenticated calls.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		connectPath: DefaultConnectPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate posts credentials to an auth endpoint and returns the raw
// payload. Token extraction is left to the session.
func (c *Client) Authenticate(ctx context.Context, path string, creds Credentials) (any, error) {
	payload, err := c.Do(ctx, http.MethodPost, path, creds)
	if err != nil {
		return payload, fmt.Errorf("client.Authenticate: %w", err)
	}
	return payload, nil
}

// ListFridges returns the fridges visible to the current user.
func (c *Client) ListFridges(ctx context.Context) ([]any, error) {
	return c.list(ctx, "/api/fridges", "client.ListFridges")
}

// CreateFridge creates a fridge and returns the created entity, if any.
func (c *Client) CreateFridge(ctx context.Context, name string) (any, error) {
	payload, err := c.Do(ctx, http.MethodPost, "/api/fridges", map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("client.CreateFridge: %w", err)
	}
	return payload, nil
}

// ListFridgeItems returns the items stored in a fridge.
func (c *Client) ListFridgeItems(ctx context.Context, fridgeID string) ([]any, error) {
	return c.list(ctx, "/api/fridge-items/"+url.PathEscape(fridgeID), "client.ListFridgeItems")
}

func (c *Client) AddFridgeItem(ctx context.Context, item AddFridgeItemRequest) (any, error) {
	payload, err := c.Do(ctx, http.MethodPost, "/api/fridge-items", item)
	if err != nil {
		return nil, fmt.Errorf("client.AddFridgeItem: %w", err)
	}
	return payload, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]any, error) {
	return c.list(ctx, "/api/products", "client.ListProducts")
}

func (c *Client) CreateProduct(ctx context.Context, product CreateProductRequest) (any, error) {
	payload, err := c.Do(ctx, http.MethodPost, "/api/products", product)
	if err != nil {
		return nil, fmt.Errorf("client.CreateProduct: %w", err)
	}
	return payload, nil
}

func (c *Client) ListProductTypes(ctx context.Context) ([]any, error) {
	return c.list(ctx, "/api/product-types", "client.ListProductTypes")
}

func (c *Client) ListUnits(ctx context.Context) ([]any, error) {
	return c.list(ctx, "/api/units", "client.ListUnits")
}

// Connect submits a scanned EAN and returns the server's message, or "OK".
func (c *Client) Connect(ctx context.Context, ean string) (string, error) {
	payload, err := c.Do(ctx, http.MethodPost, c.connectPath, map[string]string{"ean": ean})
	if err != nil {
		return "", fmt.Errorf("client.Connect: %w", err)
	}
	return MessageOf(payload, "OK"), nil
}

// MessageOf returns payload.message when present, otherwise fallback.
func MessageOf(payload any, fallback string) string {
	m, ok := payload.(map[string]any)
	if !ok {
		return fallback
	}
	switch v := m["message"].(type) {
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
	}
	return fallback
}

// Items coerces a payload to a list. Anything that is not a JSON array is
// an empty list.
func Items(payload any) []any {
	if items, ok := payload.([]any); ok {
		return items
	}
	return []any{}
}

// Do performs a request and returns the parsed body: a JSON value (numbers as
// json.Number), the raw text when the body is not JSON, or nil when empty.
// Non-2xx responses return *APIError; transport failures *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	payload := readPayload(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return payload, &APIError{
			StatusCode: resp.StatusCode,
			Message:    MessageOf(payload, statusMessage(resp.StatusCode)),
			Payload:    payload,
		}
	}
	return payload, nil
}

func (c *Client) list(ctx context.Context, path, op string) ([]any, error) {
	payload, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Items(payload), nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// readPayload never fails: unreadable bodies degrade to nil.
func readPayload(r io.Reader) any {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20)) // 1 MB max body
	if err != nil {
		return nil
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return text
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return text
	}
	return v
}

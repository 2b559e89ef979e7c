// Package gateway is the HTTP client for the remote order backend. The
// backend is a black box with fail/succeed semantics; the terminal only
// needs create-order, status updates, the product catalog, a reachability
// probe, and the order-events stream.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Error is a failed gateway call: network, auth or server-side rejection.
// StatusCode is zero when the request never reached the backend.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Message)
}

// Client talks to the remote order backend over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a gateway client. An empty baseURL or apiKey leaves the
// client unconfigured: IsConfigured reports false and every call fails.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// IsConfigured reports whether the client has an endpoint and credentials.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// --- Request / response payloads ---

// CreateOrderRequest is the create-order wire shape. ClientOrderID carries
// the terminal's local order id as an idempotency key, so a retry after a
// timed-out-but-committed create does not duplicate the order server-side.
type CreateOrderRequest struct {
	ClientOrderID string             `json:"client_order_id"`
	Items         []OrderItemPayload `json:"items"`
	Payment       PaymentPayload     `json:"payment"`
	Customer      *CustomerPayload   `json:"customer,omitempty"`
}

type OrderItemPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Notes       string `json:"notes,omitempty"`
}

type PaymentPayload struct {
	Method   string `json:"method"`
	Amount   string `json:"amount"`
	Change   string `json:"change,omitempty"`
	CardType string `json:"card_type,omitempty"`
	PixCode  string `json:"pix_code,omitempty"`
}

type CustomerPayload struct {
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	TableNumber string `json:"table_number,omitempty"`
	OrderType   string `json:"order_type,omitempty"`
	GuestCount  int    `json:"guest_count,omitempty"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// ProductPayload is a catalog entry as the backend serves it.
type ProductPayload struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Price              string `json:"price"`
	Category           string `json:"category"`
	ImageURL           string `json:"image_url"`
	Available          bool   `json:"available"`
	PreparationMinutes int    `json:"preparation_minutes"`
}

type listProductsResponse struct {
	Products []ProductPayload `json:"products"`
}

// --- Operations ---

// CreateOrder publishes a locally created order and returns the id the
// backend assigned to it.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var resp createOrderResponse
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &Error{Op: "create order", Message: "backend returned no order id"}
	}
	return resp.ID, nil
}

// UpdateOrderStatus propagates a workflow status change for a synced order.
func (c *Client) UpdateOrderStatus(ctx context.Context, remoteID, status string) error {
	path := "/orders/" + remoteID + "/status"
	return c.do(ctx, "update order status", http.MethodPatch, path, updateStatusRequest{Status: status}, nil)
}

// ListProducts fetches the catalog for the local product cache.
func (c *Client) ListProducts(ctx context.Context) ([]ProductPayload, error) {
	var resp listProductsResponse
	if err := c.do(ctx, "list products", http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Ping probes backend reachability. Used by the connectivity monitor.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if !c.IsConfigured() {
		return &Error{Op: op, Message: "gateway is not configured"}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(b) == 0 {
		return "request failed"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return string(b)
}

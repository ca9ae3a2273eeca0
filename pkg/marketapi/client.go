package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/pkg/enums"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/pagination"
)

const (
	cartPath              = "/users/me/cart"
	costPath              = "/pharmacies/cost"
	ordersPath            = "/users/me/orders"
	responseBodyReadLimit = 1024
)

var errBaseURLRequired = errors.New("marketplace base url is required")

// StatusError surfaces an upstream HTTP failure with enough metadata for logs.
type StatusError struct {
	Status int
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("marketplace %s returned %d: %s", e.Path, e.Status, e.Body)
}

// StatusCode returns the upstream HTTP status.
func (e *StatusError) StatusCode() int { return e.Status }

// Endpoint returns the upstream path that failed.
func (e *StatusError) Endpoint() string { return e.Path }

// Client talks to the marketplace REST API on behalf of an authenticated user.
// The bearer token is supplied per call because it belongs to the end user,
// not to the gateway process.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the marketplace client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client, nil
}

// Ping checks upstream reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeUpstream, "marketplace client not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("/health"), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build ping request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "ping marketplace")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, c.statusError(resp, "/health"), "marketplace unhealthy")
	}
	return nil
}

// FetchCartPage retrieves one page of the user's cart.
func (c *Client) FetchCartPage(ctx context.Context, token string, params pagination.Params) (*CartPage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "marketplace client not configured")
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(pagination.NormalizeLimit(params.Limit)))
	query.Set("page", strconv.Itoa(pagination.NormalizePage(params.Page)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(cartPath)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build cart request")
	}
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "fetch cart")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, c.statusError(resp, cartPath), "cart request failed")
	}

	var page CartPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode cart response")
	}
	return &page, nil
}

// FetchFullCart follows the paging links until every cart page is loaded.
func (c *Client) FetchFullCart(ctx context.Context, token string, limit int) ([]PharmacyCart, error) {
	var pharmacies []PharmacyCart
	page := 1
	for {
		result, err := c.FetchCartPage(ctx, token, pagination.Params{Limit: limit, Page: page})
		if err != nil {
			return nil, err
		}
		pharmacies = append(pharmacies, result.Pharmacies...)
		if !result.Paging.HasMore() {
			return pharmacies, nil
		}
		page++
	}
}

// UpdateQuantity mirrors a local quantity edit to the remote cart.
func (c *Client) UpdateQuantity(ctx context.Context, token string, pharmacyProductID uuid.UUID, quantity int) error {
	payload := map[string]any{
		"pharmacy_product_id": pharmacyProductID,
		"quantity":            quantity,
	}
	return c.send(ctx, token, http.MethodPut, cartPath, payload, nil)
}

// RemoveCartItem deletes the line item from the remote cart.
func (c *Client) RemoveCartItem(ctx context.Context, token string, pharmacyProductID uuid.UUID) error {
	path := fmt.Sprintf("%s/%s", cartPath, pharmacyProductID)
	return c.send(ctx, token, http.MethodDelete, path, nil, nil)
}

// QuoteShipping requests carrier quotes for one pharmacy group.
func (c *Client) QuoteShipping(ctx context.Context, token string, req CostRequest) ([]ShippingOption, error) {
	var options []ShippingOption
	if err := c.send(ctx, token, http.MethodPost, costPath, req, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// SubmitOrders posts the aggregate checkout payload, one entry per pharmacy.
func (c *Client) SubmitOrders(ctx context.Context, token string, groups []OrderSubmission) error {
	return c.send(ctx, token, http.MethodPost, ordersPath, groups, nil)
}

// UpdateOrderStatus transitions one order, used by bulk console actions.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, orderID uuid.UUID, status enums.OrderStatus) error {
	path := fmt.Sprintf("/pharmacies/orders/%s/status", orderID)
	payload := map[string]any{"status": status}
	return c.send(ctx, token, http.MethodPatch, path, payload, nil)
}

func (c *Client) send(ctx context.Context, token, method, path string, payload, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeUpstream, "marketplace client not configured")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "marshal request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, c.statusError(resp, path), "marketplace request failed")
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode response")
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request, token string) {
	trimmed := strings.TrimSpace(token)
	if trimmed != "" {
		req.Header.Set("Authorization", "Bearer "+trimmed)
	}
}

func (c *Client) statusError(resp *http.Response, path string) *StatusError {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return &StatusError{
		Status: resp.StatusCode,
		Path:   path,
		Body:   strings.TrimSpace(string(msg)),
	}
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

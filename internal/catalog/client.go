package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
)

const (
	requestTimeout = 10 * time.Second
	tokenHeader    = "token"
)

// Notifier receives the single user-visible notification the client emits
// per failed call. Callers must not notify again for the same failure.
type Notifier interface {
	NotifyError(ctx context.Context, message string)
}

// Client wraps HTTP JSON calls to the external Catalog API. Every call
// attaches the session's raw upstream token (when present) and classifies
// failures into the APIError taxonomy. Transport and 5xx failures trip a
// circuit breaker shared across all endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	notifier   Notifier

	sessionExpiredHooks []func(ctx context.Context)
}

// NewClient creates a Catalog API client rooted at baseURL.
func NewClient(baseURL string, notifier Notifier) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		notifier: notifier,
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "catalog-api",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// 4xx responses are upstream decisions, not upstream outages.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Kind != KindNetwork && apiErr.Kind != KindServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Warn("catalog breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// OnSessionExpired registers fn to run whenever any upstream call returns
// 401. The client performs no navigation itself; the subscriber owns
// clearing the session.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.sessionExpiredHooks = append(c.sessionExpiredHooks, fn)
}

type requestOpts struct {
	endpoint string
	// quietStatuses suppress the user-visible notification for statuses
	// the caller treats as a normal outcome (e.g. 404 on an empty cart).
	quietStatuses []int
}

func (c *Client) request(ctx context.Context, method, path, token string, body, out any, opts requestOpts) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
		if reqErr != nil {
			return nil, fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(tokenHeader, token)
		}

		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, &APIError{Kind: KindNetwork, Message: "Network error. Please check your connection."}
		}
		if r.StatusCode >= 500 {
			defer r.Body.Close()
			return nil, classify(r.StatusCode, readUpstreamMessage(r.Body))
		}
		return r, nil
	})

	if err != nil {
		apiErr := asAPIError(err)
		c.observe(opts.endpoint, method, apiErr.Status, time.Since(start))
		c.fail(ctx, apiErr, opts)
		return apiErr
	}
	defer resp.Body.Close()

	c.observe(opts.endpoint, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := classify(resp.StatusCode, readUpstreamMessage(resp.Body))
		c.fail(ctx, apiErr, opts)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		apiErr := &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: "An unexpected error occurred."}
		c.fail(ctx, apiErr, opts)
		return apiErr
	}
	return nil
}

// fail is the single point that surfaces a failed call: one notification,
// and the session-expired hooks on any 401 regardless of caller intent.
func (c *Client) fail(ctx context.Context, apiErr *APIError, opts requestOpts) {
	observability.FromContext(ctx).Warn("catalog api call failed",
		"endpoint", opts.endpoint,
		"kind", string(apiErr.Kind),
		"status", apiErr.Status)

	if apiErr.Kind == KindUnauthorized {
		for _, hook := range c.sessionExpiredHooks {
			hook(ctx)
		}
	}

	for _, quiet := range opts.quietStatuses {
		if apiErr.Status == quiet {
			return
		}
	}
	if c.notifier != nil {
		c.notifier.NotifyError(ctx, apiErr.Message)
	}
}

func (c *Client) observe(endpoint, method string, status int, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "network"
	}
	observability.CatalogRequestDuration.WithLabelValues(endpoint, method, label).Observe(elapsed.Seconds())
	observability.CatalogRequestsTotal.WithLabelValues(endpoint, method, label).Inc()
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &APIError{Kind: KindNetwork, Message: "Network error. Please check your connection."}
	}
	return &APIError{Kind: KindUnknown, Message: "An unexpected error occurred."}
}

// readUpstreamMessage pulls the {"message": ...} field from an error body.
func readUpstreamMessage(body io.Reader) string {
	var env statusEnvelope
	if err := json.NewDecoder(io.LimitReader(body, 8192)).Decode(&env); err != nil {
		return ""
	}
	return env.Message
}

// Public catalog reads.

func (c *Client) Products(ctx context.Context) ([]domain.ProductSummary, error) {
	var env productListEnvelope
	if err := c.request(ctx, http.MethodGet, "/products", "", nil, &env, requestOpts{endpoint: "products"}); err != nil {
		return nil, err
	}
	products := make([]domain.ProductSummary, 0, len(env.Data))
	for _, p := range env.Data {
		products = append(products, p.toDomain())
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*domain.ProductSummary, error) {
	var env productEnvelope
	if err := c.request(ctx, http.MethodGet, "/products/"+id, "", nil, &env, requestOpts{endpoint: "product"}); err != nil {
		return nil, err
	}
	product := env.Data.toDomain()
	return &product, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var env categoryListEnvelope
	if err := c.request(ctx, http.MethodGet, "/categories", "", nil, &env, requestOpts{endpoint: "categories"}); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(env.Data))
	for _, cat := range env.Data {
		categories = append(categories, domain.Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Image: cat.Image})
	}
	return categories, nil
}

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	var env categoryListEnvelope
	if err := c.request(ctx, http.MethodGet, "/brands", "", nil, &env, requestOpts{endpoint: "brands"}); err != nil {
		return nil, err
	}
	brands := make([]domain.Brand, 0, len(env.Data))
	for _, b := range env.Data {
		brands = append(brands, domain.Brand{ID: b.ID, Name: b.Name, Slug: b.Slug, Image: b.Image})
	}
	return brands, nil
}

// Auth.

func (c *Client) SignIn(ctx context.Context, email, password string) (string, User, error) {
	body := map[string]string{"email": email, "password": password}
	var env authEnvelope
	if err := c.request(ctx, http.MethodPost, "/auth/signin", "", body, &env, requestOpts{endpoint: "auth.signin"}); err != nil {
		return "", User{}, err
	}
	return env.Token, env.User, nil
}

func (c *Client) SignUp(ctx context.Context, fields SignUpFields) (string, User, error) {
	var env authEnvelope
	if err := c.request(ctx, http.MethodPost, "/auth/signup", "", fields, &env, requestOpts{endpoint: "auth.signup"}); err != nil {
		return "", User{}, err
	}
	return env.Token, env.User, nil
}

// Cart.

// GetCart fetches the authoritative cart. A 404 means the user has no cart
// yet and yields an empty snapshot, not an error.
func (c *Client) GetCart(ctx context.Context, token string) (*domain.CartSnapshot, error) {
	var env cartEnvelope
	err := c.request(ctx, http.MethodGet, "/cart", token, nil, &env,
		requestOpts{endpoint: "cart.get", quietStatuses: []int{http.StatusNotFound}})
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return &domain.CartSnapshot{}, nil
		}
		return nil, err
	}
	return env.toDomain(), nil
}

func (c *Client) AddCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error) {
	body := map[string]string{"productId": productID}
	var env cartEnvelope
	if err := c.request(ctx, http.MethodPost, "/cart", token, body, &env, requestOpts{endpoint: "cart.add"}); err != nil {
		return nil, err
	}
	return env.toDomain(), nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (*domain.CartSnapshot, error) {
	body := map[string]int{"count": quantity}
	var env cartEnvelope
	if err := c.request(ctx, http.MethodPut, "/cart/"+productID, token, body, &env, requestOpts{endpoint: "cart.update"}); err != nil {
		return nil, err
	}
	return env.toDomain(), nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error) {
	var env cartEnvelope
	if err := c.request(ctx, http.MethodDelete, "/cart/"+productID, token, nil, &env, requestOpts{endpoint: "cart.remove"}); err != nil {
		return nil, err
	}
	return env.toDomain(), nil
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.request(ctx, http.MethodDelete, "/cart", token, nil, nil, requestOpts{endpoint: "cart.clear"})
}

// Wishlist.

func (c *Client) Wishlist(ctx context.Context, token string) ([]domain.ProductSummary, error) {
	var env wishlistEnvelope
	err := c.request(ctx, http.MethodGet, "/wishlist", token, nil, &env,
		requestOpts{endpoint: "wishlist.get", quietStatuses: []int{http.StatusNotFound}})
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	items := make([]domain.ProductSummary, 0, len(env.Data))
	for _, p := range env.Data {
		items = append(items, p.toDomain())
	}
	return items, nil
}

// AddWishlistItem performs the mutation only. The upstream does not always
// return the updated collection inline, so callers re-fetch afterwards.
func (c *Client) AddWishlistItem(ctx context.Context, token, productID string) error {
	body := map[string]string{"productId": productID}
	return c.request(ctx, http.MethodPost, "/wishlist", token, body, nil, requestOpts{endpoint: "wishlist.add"})
}

func (c *Client) RemoveWishlistItem(ctx context.Context, token, productID string) error {
	return c.request(ctx, http.MethodDelete, "/wishlist/"+productID, token, nil, nil, requestOpts{endpoint: "wishlist.remove"})
}

// Orders & checkout.

func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	var payloads []orderPayload
	err := c.request(ctx, http.MethodGet, "/orders", token, nil, &payloads,
		requestOpts{endpoint: "orders.list", quietStatuses: []int{http.StatusNotFound}})
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	orders := make([]domain.Order, 0, len(payloads))
	for _, p := range payloads {
		orders = append(orders, p.toDomain())
	}
	return orders, nil
}

func (c *Client) CreateCashOrder(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) error {
	body := map[string]any{"shippingAddress": shipping}
	return c.request(ctx, http.MethodPost, "/orders/"+cartID, token, body, nil, requestOpts{endpoint: "orders.cash"})
}

// CheckoutSession creates an upstream payment session and returns the
// external payment gateway URL the UI shell should redirect to.
func (c *Client) CheckoutSession(ctx context.Context, token, cartID, returnURL string, shipping domain.ShippingAddress) (string, error) {
	body := map[string]any{"shippingAddress": shipping}
	path := "/orders/checkout-session/" + cartID + "?url=" + returnURL
	var env checkoutEnvelope
	if err := c.request(ctx, http.MethodPost, path, token, body, &env, requestOpts{endpoint: "orders.checkout"}); err != nil {
		return "", err
	}
	return env.Session.URL, nil
}

// Addresses.

func (c *Client) Addresses(ctx context.Context, token string) ([]domain.Address, error) {
	var env addressListEnvelope
	if err := c.request(ctx, http.MethodGet, "/addresses", token, nil, &env, requestOpts{endpoint: "addresses.list"}); err != nil {
		return nil, err
	}
	addresses := make([]domain.Address, 0, len(env.Data))
	for _, a := range env.Data {
		addresses = append(addresses, domain.Address{ID: a.ID, Name: a.Name, Details: a.Details, Phone: a.Phone, City: a.City})
	}
	return addresses, nil
}

func (c *Client) AddAddress(ctx context.Context, token string, fields AddressFields) error {
	return c.request(ctx, http.MethodPost, "/addresses", token, fields, nil, requestOpts{endpoint: "addresses.add"})
}

func (c *Client) UpdateAddress(ctx context.Context, token, id string, fields AddressFields) error {
	return c.request(ctx, http.MethodPut, "/addresses/"+id, token, fields, nil, requestOpts{endpoint: "addresses.update"})
}

func (c *Client) DeleteAddress(ctx context.Context, token, id string) error {
	return c.request(ctx, http.MethodDelete, "/addresses/"+id, token, nil, nil, requestOpts{endpoint: "addresses.delete"})
}

// Profile.

func (c *Client) UpdateMe(ctx context.Context, token, name, email, phone string) (User, error) {
	body := map[string]string{"name": name, "email": email, "phone": phone}
	var env authEnvelope
	if err := c.request(ctx, http.MethodPut, "/users/updateMe", token, body, &env, requestOpts{endpoint: "users.update"}); err != nil {
		return User{}, err
	}
	return env.User, nil
}

// ChangePassword rotates the upstream password. The upstream invalidates
// the current token, so callers must end the session afterwards.
func (c *Client) ChangePassword(ctx context.Context, token, current, next, confirm string) error {
	body := map[string]string{"currentPassword": current, "password": next, "rePassword": confirm}
	return c.request(ctx, http.MethodPut, "/users/changeMyPassword", token, body, nil, requestOpts{endpoint: "users.password"})
}

package testutil

import (
	"context"
	"sync"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
)

// MockSessionRepository is an in-memory domain.SessionRepository. Func
// fields override individual methods; the map-backed default behavior
// covers the common cases.
type MockSessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*domain.Session

	CreateFunc        func(ctx context.Context, session *domain.Session) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Session, error)
	UpdateUserFunc    func(ctx context.Context, id, displayName, email, role string) error
	DeleteFunc        func(ctx context.Context, id string) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[string]*domain.Session)}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.Sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionRepository) UpdateUser(ctx context.Context, id, displayName, email, role string) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, displayName, email, role)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.Sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.DisplayName = displayName
	session.Email = email
	session.Role = role
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, id)
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockSessionResolver satisfies middleware.SessionResolver.
type MockSessionResolver struct {
	ResolveFunc func(ctx context.Context, id string) (*domain.Session, error)
}

func (m *MockSessionResolver) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	return m.ResolveFunc(ctx, id)
}

// MockSnapshotCache is an in-memory cache.SnapshotCache.
type MockSnapshotCache struct {
	mu        sync.Mutex
	Carts     map[string]*domain.CartSnapshot
	Wishlists map[string]*domain.WishlistSnapshot
	Dropped   []string
}

func NewMockSnapshotCache() *MockSnapshotCache {
	return &MockSnapshotCache{
		Carts:     make(map[string]*domain.CartSnapshot),
		Wishlists: make(map[string]*domain.WishlistSnapshot),
	}
}

func (m *MockSnapshotCache) GetCart(_ context.Context, sessionID string) (*domain.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.Carts[sessionID]
	if !ok {
		return nil, domain.ErrCartUnavailable
	}
	return snapshot, nil
}

func (m *MockSnapshotCache) SetCart(_ context.Context, sessionID string, snapshot *domain.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Carts[sessionID] = snapshot
	return nil
}

func (m *MockSnapshotCache) GetWishlist(_ context.Context, sessionID string) (*domain.WishlistSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.Wishlists[sessionID]
	if !ok {
		return nil, domain.ErrCartUnavailable
	}
	return snapshot, nil
}

func (m *MockSnapshotCache) SetWishlist(_ context.Context, sessionID string, snapshot *domain.WishlistSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Wishlists[sessionID] = snapshot
	return nil
}

func (m *MockSnapshotCache) DropSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Carts, sessionID)
	delete(m.Wishlists, sessionID)
	m.Dropped = append(m.Dropped, sessionID)
	return nil
}

// MockNotifier records notifications. Satisfies both catalog.Notifier
// and the state mirrors' notifier interface.
type MockNotifier struct {
	mu        sync.Mutex
	Errors    []string
	Successes []string
}

func (m *MockNotifier) NotifyError(_ context.Context, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, message)
}

func (m *MockNotifier) NotifySuccess(_ context.Context, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, message)
}

func (m *MockNotifier) AllErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Errors...)
}

func (m *MockNotifier) AllSuccesses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Successes...)
}

// MockCatalog is a func-field mock of the catalog client slices the
// state mirrors and handlers consume. Unset methods panic loudly, which
// is the point: a test only wires what it expects to be called.
type MockCatalog struct {
	ProductsFunc   func(ctx context.Context) ([]domain.ProductSummary, error)
	ProductFunc    func(ctx context.Context, id string) (*domain.ProductSummary, error)
	CategoriesFunc func(ctx context.Context) ([]domain.Category, error)
	BrandsFunc     func(ctx context.Context) ([]domain.Brand, error)

	SignInFunc         func(ctx context.Context, email, password string) (string, catalog.User, error)
	SignUpFunc         func(ctx context.Context, fields catalog.SignUpFields) (string, catalog.User, error)
	UpdateMeFunc       func(ctx context.Context, token, name, email, phone string) (catalog.User, error)
	ChangePasswordFunc func(ctx context.Context, token, current, next, confirm string) error

	GetCartFunc        func(ctx context.Context, token string) (*domain.CartSnapshot, error)
	AddCartItemFunc    func(ctx context.Context, token, productID string) (*domain.CartSnapshot, error)
	UpdateCartItemFunc func(ctx context.Context, token, productID string, quantity int) (*domain.CartSnapshot, error)
	RemoveCartItemFunc func(ctx context.Context, token, productID string) (*domain.CartSnapshot, error)
	ClearCartFunc      func(ctx context.Context, token string) error

	WishlistFunc           func(ctx context.Context, token string) ([]domain.ProductSummary, error)
	AddWishlistItemFunc    func(ctx context.Context, token, productID string) error
	RemoveWishlistItemFunc func(ctx context.Context, token, productID string) error

	OrdersFunc          func(ctx context.Context, token string) ([]domain.Order, error)
	CreateCashOrderFunc func(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) error
	CheckoutSessionFunc func(ctx context.Context, token, cartID, returnURL string, shipping domain.ShippingAddress) (string, error)

	AddressesFunc     func(ctx context.Context, token string) ([]domain.Address, error)
	AddAddressFunc    func(ctx context.Context, token string, fields catalog.AddressFields) error
	UpdateAddressFunc func(ctx context.Context, token, id string, fields catalog.AddressFields) error
	DeleteAddressFunc func(ctx context.Context, token, id string) error
}

func (m *MockCatalog) Products(ctx context.Context) ([]domain.ProductSummary, error) {
	return m.ProductsFunc(ctx)
}

func (m *MockCatalog) Product(ctx context.Context, id string) (*domain.ProductSummary, error) {
	return m.ProductFunc(ctx, id)
}

func (m *MockCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return m.CategoriesFunc(ctx)
}

func (m *MockCatalog) Brands(ctx context.Context) ([]domain.Brand, error) {
	return m.BrandsFunc(ctx)
}

func (m *MockCatalog) SignIn(ctx context.Context, email, password string) (string, catalog.User, error) {
	return m.SignInFunc(ctx, email, password)
}

func (m *MockCatalog) SignUp(ctx context.Context, fields catalog.SignUpFields) (string, catalog.User, error) {
	return m.SignUpFunc(ctx, fields)
}

func (m *MockCatalog) UpdateMe(ctx context.Context, token, name, email, phone string) (catalog.User, error) {
	return m.UpdateMeFunc(ctx, token, name, email, phone)
}

func (m *MockCatalog) ChangePassword(ctx context.Context, token, current, next, confirm string) error {
	return m.ChangePasswordFunc(ctx, token, current, next, confirm)
}

func (m *MockCatalog) GetCart(ctx context.Context, token string) (*domain.CartSnapshot, error) {
	return m.GetCartFunc(ctx, token)
}

func (m *MockCatalog) AddCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error) {
	return m.AddCartItemFunc(ctx, token, productID)
}

func (m *MockCatalog) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (*domain.CartSnapshot, error) {
	return m.UpdateCartItemFunc(ctx, token, productID, quantity)
}

func (m *MockCatalog) RemoveCartItem(ctx context.Context, token, productID string) (*domain.CartSnapshot, error) {
	return m.RemoveCartItemFunc(ctx, token, productID)
}

func (m *MockCatalog) ClearCart(ctx context.Context, token string) error {
	return m.ClearCartFunc(ctx, token)
}

func (m *MockCatalog) Wishlist(ctx context.Context, token string) ([]domain.ProductSummary, error) {
	return m.WishlistFunc(ctx, token)
}

func (m *MockCatalog) AddWishlistItem(ctx context.Context, token, productID string) error {
	return m.AddWishlistItemFunc(ctx, token, productID)
}

func (m *MockCatalog) RemoveWishlistItem(ctx context.Context, token, productID string) error {
	return m.RemoveWishlistItemFunc(ctx, token, productID)
}

func (m *MockCatalog) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	return m.OrdersFunc(ctx, token)
}

func (m *MockCatalog) CreateCashOrder(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) error {
	return m.CreateCashOrderFunc(ctx, token, cartID, shipping)
}

func (m *MockCatalog) CheckoutSession(ctx context.Context, token, cartID, returnURL string, shipping domain.ShippingAddress) (string, error) {
	return m.CheckoutSessionFunc(ctx, token, cartID, returnURL, shipping)
}

func (m *MockCatalog) Addresses(ctx context.Context, token string) ([]domain.Address, error) {
	return m.AddressesFunc(ctx, token)
}

func (m *MockCatalog) AddAddress(ctx context.Context, token string, fields catalog.AddressFields) error {
	return m.AddAddressFunc(ctx, token, fields)
}

func (m *MockCatalog) UpdateAddress(ctx context.Context, token, id string, fields catalog.AddressFields) error {
	return m.UpdateAddressFunc(ctx, token, id, fields)
}

func (m *MockCatalog) DeleteAddress(ctx context.Context, token, id string) error {
	return m.DeleteAddressFunc(ctx, token, id)
}

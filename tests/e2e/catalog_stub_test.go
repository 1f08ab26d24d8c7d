//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// catalogStub is an in-memory stand-in for the external Catalog API. It
// speaks the upstream wire format: _id identifiers, {data} envelopes and
// the raw token header.
type catalogStub struct {
	mu sync.Mutex

	tokens    map[string]string         // token -> email
	accounts  map[string]stubAccount    // email -> account
	carts     map[string]map[string]int // token -> productID -> count
	wishlists map[string][]string       // token -> productIDs
	addresses map[string][]stubAddress  // token -> addresses

	nextID    int
	lastToken string

	// failNext forces a 500 on the next request whose path contains the
	// given fragment. Used to provoke error notifications.
	failNext string
}

type stubAccount struct {
	name     string
	phone    string
	password string
}

type stubAddress struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

type stubProduct struct {
	id       string
	title    string
	price    string
	stock    int
	category [2]string // id, name
	brand    [2]string
}

var stubProducts = []stubProduct{
	{"prod-1", "Wireless Mouse", "25", 10, [2]string{"cat-1", "Electronics"}, [2]string{"brand-1", "Logi"}},
	{"prod-2", "Mechanical Keyboard", "120", 5, [2]string{"cat-1", "Electronics"}, [2]string{"brand-2", "Keychron"}},
	{"prod-3", "Running Shoes", "80", 3, [2]string{"cat-2", "Sportswear"}, [2]string{"brand-3", "Asics"}},
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		tokens:    make(map[string]string),
		accounts:  make(map[string]stubAccount),
		carts:     make(map[string]map[string]int),
		wishlists: make(map[string][]string),
		addresses: make(map[string][]stubAddress),
	}
}

// FailNext makes the next request whose path contains fragment return a
// 500. Resets after it fires.
func (s *catalogStub) FailNext(fragment string) {
	s.mu.Lock()
	s.failNext = fragment
	s.mu.Unlock()
}

// RevokeToken invalidates a token so subsequent calls with it get a 401.
func (s *catalogStub) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func (s *catalogStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != "" && strings.Contains(r.URL.Path, s.failNext) {
		s.failNext = ""
		writeStubJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "internal error"})
		return
	}

	path, method := r.URL.Path, r.Method
	switch {
	case path == "/auth/signup" && method == http.MethodPost:
		s.signUp(w, r)
	case path == "/auth/signin" && method == http.MethodPost:
		s.signIn(w, r)
	case path == "/products" && method == http.MethodGet:
		writeStubJSON(w, http.StatusOK, map[string]any{"results": len(stubProducts), "data": productPayloads()})
	case strings.HasPrefix(path, "/products/") && method == http.MethodGet:
		s.product(w, strings.TrimPrefix(path, "/products/"))
	case path == "/categories" && method == http.MethodGet:
		writeStubJSON(w, http.StatusOK, map[string]any{"data": []map[string]string{
			{"_id": "cat-1", "name": "Electronics", "slug": "electronics"},
			{"_id": "cat-2", "name": "Sportswear", "slug": "sportswear"},
		}})
	case path == "/brands" && method == http.MethodGet:
		writeStubJSON(w, http.StatusOK, map[string]any{"data": []map[string]string{
			{"_id": "brand-1", "name": "Logi", "slug": "logi"},
			{"_id": "brand-2", "name": "Keychron", "slug": "keychron"},
			{"_id": "brand-3", "name": "Asics", "slug": "asics"},
		}})
	default:
		s.authed(w, r)
	}
}

// authed routes everything that requires the token header.
func (s *catalogStub) authed(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("token")
	email, ok := s.tokens[token]
	if !ok {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}

	path, method := r.URL.Path, r.Method
	switch {
	case path == "/cart" && method == http.MethodGet:
		if len(s.carts[token]) == 0 {
			writeStubJSON(w, http.StatusNotFound, map[string]string{"status": "fail", "message": "no cart"})
			return
		}
		s.writeCart(w, token, email)
	case path == "/cart" && method == http.MethodPost:
		var body struct {
			ProductID string `json:"productId"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if s.carts[token] == nil {
			s.carts[token] = make(map[string]int)
		}
		s.carts[token][body.ProductID]++
		s.writeCart(w, token, email)
	case strings.HasPrefix(path, "/cart/") && method == http.MethodPut:
		var body struct {
			Count int `json:"count"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		productID := strings.TrimPrefix(path, "/cart/")
		if s.carts[token] == nil {
			s.carts[token] = make(map[string]int)
		}
		s.carts[token][productID] = body.Count
		s.writeCart(w, token, email)
	case strings.HasPrefix(path, "/cart/") && method == http.MethodDelete:
		delete(s.carts[token], strings.TrimPrefix(path, "/cart/"))
		s.writeCart(w, token, email)
	case path == "/cart" && method == http.MethodDelete:
		delete(s.carts, token)
		writeStubJSON(w, http.StatusOK, map[string]string{"message": "success"})
	case path == "/wishlist" && method == http.MethodGet:
		data := make([]map[string]any, 0, len(s.wishlists[token]))
		for _, id := range s.wishlists[token] {
			if p, ok := findStubProduct(id); ok {
				data = append(data, productPayload(p))
			}
		}
		writeStubJSON(w, http.StatusOK, map[string]any{"status": "success", "data": data})
	case path == "/wishlist" && method == http.MethodPost:
		var body struct {
			ProductID string `json:"productId"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.wishlists[token] = append(s.wishlists[token], body.ProductID)
		writeStubJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case strings.HasPrefix(path, "/wishlist/") && method == http.MethodDelete:
		target := strings.TrimPrefix(path, "/wishlist/")
		kept := s.wishlists[token][:0]
		for _, id := range s.wishlists[token] {
			if id != target {
				kept = append(kept, id)
			}
		}
		s.wishlists[token] = kept
		writeStubJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case path == "/orders" && method == http.MethodGet:
		writeStubJSON(w, http.StatusOK, []any{})
	case strings.HasPrefix(path, "/orders/checkout-session/") && method == http.MethodPost:
		writeStubJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"session": map[string]string{"url": "https://pay.example.com/session/e2e"},
		})
	case strings.HasPrefix(path, "/orders/") && method == http.MethodPost:
		delete(s.carts, token)
		writeStubJSON(w, http.StatusCreated, map[string]string{"status": "success"})
	case path == "/addresses" && method == http.MethodGet:
		writeStubJSON(w, http.StatusOK, map[string]any{"status": "success", "data": s.addresses[token]})
	case path == "/addresses" && method == http.MethodPost:
		var addr stubAddress
		json.NewDecoder(r.Body).Decode(&addr)
		s.nextID++
		addr.ID = fmt.Sprintf("addr-%d", s.nextID)
		s.addresses[token] = append(s.addresses[token], addr)
		writeStubJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case strings.HasPrefix(path, "/addresses/") && method == http.MethodPut:
		target := strings.TrimPrefix(path, "/addresses/")
		var addr stubAddress
		json.NewDecoder(r.Body).Decode(&addr)
		for i, a := range s.addresses[token] {
			if a.ID == target {
				addr.ID = target
				s.addresses[token][i] = addr
			}
		}
		writeStubJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case strings.HasPrefix(path, "/addresses/") && method == http.MethodDelete:
		target := strings.TrimPrefix(path, "/addresses/")
		kept := s.addresses[token][:0]
		for _, a := range s.addresses[token] {
			if a.ID != target {
				kept = append(kept, a)
			}
		}
		s.addresses[token] = kept
		writeStubJSON(w, http.StatusOK, map[string]string{"status": "success"})
	case path == "/users/updateMe" && method == http.MethodPut:
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		account := s.accounts[email]
		account.name = body.Name
		delete(s.accounts, email)
		s.accounts[body.Email] = account
		s.tokens[token] = body.Email
		writeStubJSON(w, http.StatusOK, map[string]any{
			"message": "success",
			"user":    map[string]string{"name": body.Name, "email": body.Email, "role": "user"},
		})
	case path == "/users/changeMyPassword" && method == http.MethodPut:
		var body struct {
			CurrentPassword string `json:"currentPassword"`
			Password        string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		account := s.accounts[email]
		if account.password != body.CurrentPassword {
			writeStubJSON(w, http.StatusUnauthorized, map[string]string{"message": "incorrect current password"})
			return
		}
		account.password = body.Password
		s.accounts[email] = account
		delete(s.tokens, token) // previous token is invalidated
		writeStubJSON(w, http.StatusOK, map[string]string{"message": "success"})
	default:
		writeStubJSON(w, http.StatusNotFound, map[string]string{"message": "no such endpoint"})
	}
}

func (s *catalogStub) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	if _, exists := s.accounts[body.Email]; exists {
		writeStubJSON(w, http.StatusConflict, map[string]string{"message": "Account Already Exists"})
		return
	}
	s.accounts[body.Email] = stubAccount{name: body.Name, phone: body.Phone, password: body.Password}

	token := s.issueToken(body.Email)
	writeStubJSON(w, http.StatusCreated, map[string]any{
		"message": "success",
		"token":   token,
		"user":    map[string]string{"name": body.Name, "email": body.Email, "role": "user"},
	})
}

func (s *catalogStub) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	account, ok := s.accounts[body.Email]
	if !ok || account.password != body.Password {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"message": "incorrect email or password"})
		return
	}

	token := s.issueToken(body.Email)
	writeStubJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"token":   token,
		"user":    map[string]string{"name": account.name, "email": body.Email, "role": "user"},
	})
}

func (s *catalogStub) issueToken(email string) string {
	s.nextID++
	token := fmt.Sprintf("stub-token-%d", s.nextID)
	s.tokens[token] = email
	s.lastToken = token
	return token
}

// LastToken returns the most recently issued upstream token.
func (s *catalogStub) LastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

func (s *catalogStub) product(w http.ResponseWriter, id string) {
	if p, ok := findStubProduct(id); ok {
		writeStubJSON(w, http.StatusOK, map[string]any{"data": productPayload(p)})
		return
	}
	writeStubJSON(w, http.StatusNotFound, map[string]string{"message": "product not found"})
}

func (s *catalogStub) writeCart(w http.ResponseWriter, token, email string) {
	lines := make([]map[string]any, 0, len(s.carts[token]))
	total := 0
	for productID, count := range s.carts[token] {
		p, ok := findStubProduct(productID)
		if !ok {
			continue
		}
		price := 0
		fmt.Sscanf(p.price, "%d", &price)
		total += price * count
		lines = append(lines, map[string]any{
			"count": count,
			"price": p.price,
			"_id":   "line-" + productID,
			"product": map[string]any{
				"_id":      p.id,
				"title":    p.title,
				"quantity": p.stock,
			},
		})
	}

	writeStubJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"numOfCartItems": len(lines),
		"data": map[string]any{
			"_id":            "cart-" + email,
			"cartOwner":      "owner-" + email,
			"products":       lines,
			"totalCartPrice": total,
		},
	})
}

func findStubProduct(id string) (stubProduct, bool) {
	for _, p := range stubProducts {
		if p.id == id {
			return p, true
		}
	}
	return stubProduct{}, false
}

func productPayload(p stubProduct) map[string]any {
	return map[string]any{
		"_id":      p.id,
		"title":    p.title,
		"price":    p.price,
		"quantity": p.stock,
		"category": map[string]string{"_id": p.category[0], "name": p.category[1]},
		"brand":    map[string]string{"_id": p.brand[0], "name": p.brand[1]},
	}
}

func productPayloads() []map[string]any {
	out := make([]map[string]any, 0, len(stubProducts))
	for _, p := range stubProducts {
		out = append(out, productPayload(p))
	}
	return out
}

func writeStubJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

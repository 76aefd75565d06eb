// Package testutil provides testing utilities for the USPS client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Paths the mock serves, matching the layout of the real API.
const (
	TokenPath   = "/oauth2/v3/token"
	AddressPath = "/addresses/v3/address"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUSPS is a configurable mock of the USPS token and address endpoints.
type MockUSPS struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	TokenRequests   int
	AddressRequests int
	LastAuthHeader  string
	LastQuery       url.Values
	LastTokenForm   url.Values
}

// NewMockUSPS creates a new mock USPS server with healthy default handlers.
func NewMockUSPS() *MockUSPS {
	mock := &MockUSPS{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		switch r.URL.Path {
		case TokenPath:
			mock.TokenRequests++
			_ = r.ParseForm()
			mock.LastTokenForm = r.PostForm
		case AddressPath:
			mock.AddressRequests++
			mock.LastAuthHeader = r.Header.Get("Authorization")
			mock.LastQuery = r.URL.Query()
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUSPS) URL() string {
	return m.server.URL
}

// TokenURL returns the full token endpoint URL.
func (m *MockUSPS) TokenURL() string {
	return m.server.URL + TokenPath
}

// AddressURL returns the full address verification endpoint URL.
func (m *MockUSPS) AddressURL() string {
	return m.server.URL + AddressPath
}

// Close shuts down the mock server.
func (m *MockUSPS) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockUSPS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenRequests = 0
	m.AddressRequests = 0
	m.LastAuthHeader = ""
	m.LastQuery = nil
	m.LastTokenForm = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockUSPS) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple canned response for a path.
func (m *MockUSPS) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetTokenResponse configures the token endpoint response.
func (m *MockUSPS) SetTokenResponse(resp MockResponse) {
	m.SetResponse(TokenPath, resp)
}

// SetAddressResponse configures the address endpoint response.
func (m *MockUSPS) SetAddressResponse(resp MockResponse) {
	m.SetResponse(AddressPath, resp)
}

// GetTokenRequests returns the number of token endpoint calls.
func (m *MockUSPS) GetTokenRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TokenRequests
}

// GetAddressRequests returns the number of address endpoint calls.
func (m *MockUSPS) GetAddressRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AddressRequests
}

// GetLastAuthHeader returns the Authorization header of the most recent
// address request.
func (m *MockUSPS) GetLastAuthHeader() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastAuthHeader
}

// GetLastQuery returns the query parameters of the most recent address
// request.
func (m *MockUSPS) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// defaultHandler provides healthy USPS-like responses: a valid token and an
// address echo with a fixed ZIP+4.
func (m *MockUSPS) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case TokenPath:
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"access_token": "test-token", "token_type": "Bearer", "expires_in": 3599}`)
	case AddressPath:
		q := r.URL.Query()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"address": {"streetAddress": %q, "city": %q, "state": %q, "ZIPCode": %q, "ZIPPlus4": "0001"}}`,
			q.Get("streetAddress"), q.Get("city"), q.Get("state"), q.Get("ZIPCode"))
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "no such endpoint"}`)
	}
}

// NewAddressResponse creates a 200 OK address payload with the given fields.
// Empty fields are omitted from the payload, as the real service omits them.
func NewAddressResponse(street, city, state, zipCode, zipPlus4 string) MockResponse {
	fields := ""
	appendField := func(name, value string) {
		if value == "" {
			return
		}
		if fields != "" {
			fields += ", "
		}
		fields += fmt.Sprintf("%q: %q", name, value)
	}
	appendField("streetAddress", street)
	appendField("city", city)
	appendField("state", state)
	appendField("ZIPCode", zipCode)
	appendField("ZIPPlus4", zipPlus4)

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"address": {%s}}`, fields),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewNotFoundResponse creates a 400 address-not-found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       `{"error": {"code": "400", "message": "Address Not Found"}}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": {"code": "500", "message": "Internal server error"}}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": {"code": "429", "message": "Rate limit exceeded"}}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewMalformedResponse creates a 200 response whose body is not valid JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"address": `,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewUnauthorizedTokenResponse creates a 401 token endpoint response.
func NewUnauthorizedTokenResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"error": "invalid_client", "error_description": "Client authentication failed"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

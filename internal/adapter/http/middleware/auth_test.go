package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/auth"
)

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mw := AuthMiddleware(auth.NewJWTManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called without credentials")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := AuthMiddleware(auth.NewJWTManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with a bad token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	token, err := manager.Generate(&domain.User{ID: "u-1", Email: "books@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	mw := AuthMiddleware(manager)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	var seen *domain.User
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserFromContext(r.Context())
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if seen == nil || seen.ID != "u-1" || seen.Role != domain.RoleAdmin {
		t.Fatalf("expected user from claims in context, got %+v", seen)
	}
}

func TestHeaderAuth_SetsActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", nil)
	req.Header.Set(ActorIDHeader, "u-2")
	req.Header.Set(ActorRoleHeader, "bookkeeper")
	rr := httptest.NewRecorder()

	var seen *domain.User
	HeaderAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserFromContext(r.Context())
	})).ServeHTTP(rr, req)

	if seen == nil || seen.ID != "u-2" || seen.Role != domain.RoleBookkeeper {
		t.Fatalf("expected actor from headers, got %+v", seen)
	}
}

func TestHeaderAuth_NoHeadersPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rr := httptest.NewRecorder()

	var called bool
	HeaderAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetUserFromContext(r.Context()); ok {
			t.Fatal("expected no user in context")
		}
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
}

func TestHeaderAuth_InvalidRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", nil)
	req.Header.Set(ActorIDHeader, "u-3")
	req.Header.Set(ActorRoleHeader, "superuser")
	rr := httptest.NewRecorder()

	HeaderAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called with an unknown role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRateLimiter_Blocks(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "10.0.0.1:1234"
	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, req1)
	if rr1.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "10.0.0.1:1234"
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rr2.Code)
	}

	// A different client has its own bucket.
	req3 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req3.RemoteAddr = "10.0.0.2:1234"
	rr3 := httptest.NewRecorder()
	handler.ServeHTTP(rr3, req3)
	if rr3.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr3.Code)
	}
}

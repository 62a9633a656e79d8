// README: Auth middleware tests with a stub verifier.
package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ridepool/internal/fault"
	"ridepool/internal/http/middleware"
	"ridepool/internal/modules/account"
)

// stubVerifier is a test double for middleware.Verifier.
type stubVerifier struct {
	account *account.Account
	err     error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*account.Account, error) {
	return s.account, s.err
}

func newTestRouter(v middleware.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Authenticate(v))
	r.GET("/whoami", func(c *gin.Context) {
		a := middleware.Caller(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	})
	r.GET("/driver-only", middleware.RequireRole(account.RoleDriver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{account: &account.Account{ID: "u1", Role: account.RoleUser}})
	if w := doRequest(r, "/whoami", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticateWrongScheme(t *testing.T) {
	r := newTestRouter(&stubVerifier{account: &account.Account{ID: "u1", Role: account.RoleUser}})
	if w := doRequest(r, "/whoami", "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticateVerifierRejects(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: fault.Auth("invalid token")})
	if w := doRequest(r, "/whoami", "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticateBannedDriver(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: fault.Forbidden("driver account is banned")})
	if w := doRequest(r, "/whoami", "Bearer sometoken"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	r := newTestRouter(&stubVerifier{account: &account.Account{ID: "driver123", Role: account.RoleDriver}})
	w := doRequest(r, "/whoami", "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "driver123") || !strings.Contains(body, "DRIVER") {
		t.Errorf("expected caller identity in body, got %s", body)
	}
}

func TestRequireRole(t *testing.T) {
	r := newTestRouter(&stubVerifier{account: &account.Account{ID: "u1", Role: account.RoleUser}})
	if w := doRequest(r, "/driver-only", "Bearer sometoken"); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong role, got %d", w.Code)
	}

	r = newTestRouter(&stubVerifier{account: &account.Account{ID: "d1", Role: account.RoleDriver}})
	if w := doRequest(r, "/driver-only", "Bearer sometoken"); w.Code != http.StatusOK {
		t.Errorf("expected 200 for driver, got %d", w.Code)
	}
}

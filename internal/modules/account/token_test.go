// README: JWT issue/parse tests.
package account

import (
	"testing"
	"time"

	"ridepool/internal/fault"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("test-secret", "acc-1", RoleDriver, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != "acc-1" {
		t.Errorf("account_id = %q, want acc-1", claims.AccountID)
	}
	if claims.Role != string(RoleDriver) {
		t.Errorf("role = %q, want DRIVER", claims.Role)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", "acc-1", RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken("secret-b", token); fault.KindOf(err) != fault.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := IssueToken("test-secret", "acc-1", RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = ParseToken("test-secret", token)
	if fault.KindOf(err) != fault.KindAuth {
		t.Fatalf("expected auth error for expired token, got %v", err)
	}
	if err.Error() != "token expired" {
		t.Errorf("message = %q, want %q", err.Error(), "token expired")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ParseToken("test-secret", "not.a.jwt"); fault.KindOf(err) != fault.KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

// README: Bearer-token auth middleware and caller helpers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridepool/internal/fault"
	"ridepool/internal/modules/account"
	"ridepool/internal/types"
)

const callerKey = "auth.caller"

// Verifier resolves a raw bearer token to a live account.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*account.Account, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved account on the context.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			return
		}
		a, err := v.Verify(c.Request.Context(), raw)
		if err != nil {
			status := http.StatusUnauthorized
			if fault.IsKind(err, fault.KindForbidden) {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Set(callerKey, a)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated caller has the role.
func RequireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := Caller(c)
		if a == nil || a.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated account, nil when unauthenticated.
func Caller(c *gin.Context) *account.Account {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	a, _ := v.(*account.Account)
	return a
}

// CallerID returns the authenticated account's ID, empty when unauthenticated.
func CallerID(c *gin.Context) types.ID {
	if a := Caller(c); a != nil {
		return a.ID
	}
	return ""
}

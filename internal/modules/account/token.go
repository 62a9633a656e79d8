// README: JWT issue/verify with HS256 and role claims.
package account

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ridepool/internal/fault"
	"ridepool/internal/types"
)

type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func IssueToken(secret string, id types.ID, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: string(id),
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fault.Auth("token expired")
		}
		return nil, fault.Auth("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fault.Auth("invalid token")
	}
	return claims, nil
}

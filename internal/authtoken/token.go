// Package authtoken inspects backend-issued session tokens without
// verifying their signature. The signing key lives on the backend; the
// client only needs the claims to notice an expired session before it
// makes a doomed profile call.
package authtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/brokerdesk/internal/common"
)

// Claims are the claims the backend puts into a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id,omitempty"`
}

// Inspect decodes the claims of tokenString. It fails with
// common.ErrInvalidToken when the token is not a well-formed JWT.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// CheckExpiry returns common.ErrTokenExpired when the token carries an
// expiry at or before now. Tokens that are not JWTs, or have no expiry, are
// left for the backend to judge and pass.
func CheckExpiry(tokenString string, now time.Time) error {
	claims, err := Inspect(tokenString)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return common.ErrTokenExpired
	}
	return nil
}

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a requester token when none is given.
const DefaultTTL = 24 * time.Hour

// RequesterClaims identifies a remote requester. The subject is the source
// name the arbitrator records for that requester's requests.
type RequesterClaims struct {
	jwt.RegisteredClaims
}

// Source returns the requester identity carried by the token.
func (c *RequesterClaims) Source() string {
	return c.Subject
}

// GenerateToken creates a signed HS256 token for source.
//
// Parameters:
//   - source: Requester identity (panel name, peer hostname, script name)
//   - secret: Shared signing secret, at least 32 characters
//   - issuer: Value of the iss claim; checked by ParseToken when non-empty
//   - ttl: Token lifetime; zero or negative means DefaultTTL
func GenerateToken(source, secret, issuer string, ttl time.Duration) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ErrMissingSource
	}
	if secret == "" {
		return "", ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	claims := RequesterClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   source,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing requester token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a requester token and returns its claims.
// It checks the signature, expiry, issuer (when non-empty) and subject.
func ParseToken(tokenString, secret, issuer string) (*RequesterClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &RequesterClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*RequesterClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

package internal

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const bearerScheme = "Bearer "

// TokenGate guards every route: it verifies the bearer token's signature,
// issuer and expiry before any routing or resource logic runs, so an
// unauthorized caller cannot learn whether a route exists.
type TokenGate struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewTokenGate(key, issuer string, ttl time.Duration) *TokenGate {
	return &TokenGate{key: []byte(key), issuer: issuer, ttl: ttl}
}

// Middleware rejects the request with a typed error or passes it through
// unchanged. It has no other side effects.
func (g *TokenGate) Middleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ErrNoAuthHeader
	}

	// The scheme must literally be "Bearer "; anything else is rejected
	// without attempting verification.
	if !strings.HasPrefix(header, bearerScheme) {
		return ErrBadAuthScheme
	}

	if err := g.Verify(strings.TrimPrefix(header, bearerScheme)); err != nil {
		return err
	}
	return c.Next()
}

// Verify checks signature, issuer and expiry. No claims are consumed
// beyond the checks: there is no per-user scoping.
func (g *TokenGate) Verify(token string) error {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return g.key, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if claims.Issuer != g.issuer {
		return ErrInvalidToken
	}
	return nil
}

// IssueToken signs a token carrying the configured issuer and lifetime.
func (g *TokenGate) IssueToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.key)
	if err != nil {
		return "", err
	}
	return t, nil
}

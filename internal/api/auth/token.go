package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neoaplicacoes/customer-api/config"
	"github.com/neoaplicacoes/customer-api/internal/types"
)

// minSecretBytes mirrors the config-level check; the codec refuses to
// construct with a weak key even if wired directly in tests.
const minSecretBytes = 32

// TokenCodec signs and verifies stateless access tokens. The secret and TTL
// are immutable after construction, so concurrent use needs no locking.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenCodec builds a codec from the JWT configuration. A secret shorter
// than 256 bits is a startup failure, not a recoverable condition.
func NewTokenCodec(cfg config.JWTConfig) (*TokenCodec, error) {
	if len(cfg.SecretKey) < minSecretBytes {
		return nil, fmt.Errorf("jwt secret key must be at least %d bytes, got %d", minSecretBytes, len(cfg.SecretKey))
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("jwt token TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &TokenCodec{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
	}, nil
}

// Issue mints a signed token with the user's email as subject.
func (c *TokenCodec) Issue(email, role string) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Any parse
// failure, signature mismatch, expiry or issuer mismatch yields an error;
// callers treat all of them as "unauthenticated", never as a server fault.
func (c *TokenCodec) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	return claims, nil
}

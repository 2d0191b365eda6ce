// Package auth validates bearer tokens on the concept map API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims identifies the caller. The subject is the note owner.
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// JWTConfig selects the key material. SigningMethod is "HS256" (the default)
// with SecretKey, or "RS256" with a PEM encoded PublicKey.
type JWTConfig struct {
	SigningMethod string
	PublicKey     string
	SecretKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator checks tokens against one key and the configured issuer and
// audience.
type JWTValidator struct {
	key      any
	parser   *jwt.Parser
	audience []string
}

// NewJWTValidator parses the key material in config.
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	var (
		key    any
		method string
	)
	switch config.SigningMethod {
	case "", jwt.SigningMethodHS256.Alg():
		if config.SecretKey == "" {
			return nil, errors.New("secret key required for HS256")
		}
		key, method = []byte(config.SecretKey), jwt.SigningMethodHS256.Alg()
	case jwt.SigningMethodRS256.Alg():
		if config.PublicKey == "" {
			return nil, errors.New("public key required for RS256")
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(config.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		key, method = pub, jwt.SigningMethodRS256.Alg()
	default:
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}

	return &JWTValidator{
		key:      key,
		parser:   jwt.NewParser(opts...),
		audience: config.Audience,
	}, nil
}

// ValidateToken returns the claims of a valid token. Failures wrap one of the
// package's Err values.
func (v *JWTValidator) ValidateToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidClaims):
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !v.audienceAllowed(claims.Audience) {
		return nil, fmt.Errorf("%w: audience %v not accepted", ErrInvalidClaims, claims.Audience)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidClaims)
	}
	return claims, nil
}

func (v *JWTValidator) audienceAllowed(got jwt.ClaimStrings) bool {
	if len(v.audience) == 0 {
		return true
	}
	for _, aud := range got {
		if slices.Contains(v.audience, aud) {
			return true
		}
	}
	return false
}

// GenerateToken signs an HS256 token for userID. The CLI uses it to mint
// tokens for local testing.
func GenerateToken(secret, issuer, userID string, audience []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

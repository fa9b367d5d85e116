// Package tokencodec signs and verifies the bearer tokens the service
// issues. A Codec is stateless: a token is a pure function of subject,
// TTL, the shared secret and the clock.
package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
)

const defaultSigningMethod = "HS256"

// Claims carried by a verified token
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Config struct {
	// Secret key to sign token payloads
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set the default is used
	Alg string
}

type Codec struct {
	key string
	alg jwt.SigningMethod
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	return &Codec{
		key: cfg.SecretKey,
		alg: alg,
	}, nil
}

// Issue a signed token for the subject, valid for ttl from now
func (c *Codec) Issue(subject string, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	// The jti claim makes every issued token unique, even for the same
	// subject within the same second. Rotation depends on that: a fresh
	// refresh token must never collide with the one it replaces.
	token := jwt.NewWithClaims(
		c.alg,
		jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	)

	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses the token and returns its claims. The signature is
// checked before any claim is trusted. An expired but otherwise sound
// token reports apperrors.ErrTokenExpired; anything structurally or
// cryptographically wrong reports apperrors.ErrTokenInvalid.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
	)

	switch {
	case err == nil:
		parsed := Claims{Subject: claims.Subject}
		if claims.IssuedAt != nil {
			parsed.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			parsed.ExpiresAt = claims.ExpiresAt.Time
		}
		return parsed, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}
}

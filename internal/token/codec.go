package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-shop-api/pkg/apierror"
)

// Purpose distinguishes access tokens from refresh tokens. It travels in the
// "typ" claim.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

type Claims struct {
	Purpose Purpose `json:"typ"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used both for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, accessTTL time.Duration, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// TTL returns the lifetime of tokens issued for purpose.
func (c *Codec) TTL(purpose Purpose) time.Duration {
	if purpose == PurposeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

func (c *Codec) Issue(userID string, purpose Purpose) (string, error) {
	if userID == "" {
		return "", errors.New("token subject is required")
	}
	if purpose != PurposeAccess && purpose != PurposeRefresh {
		return "", errors.New("unknown token purpose")
	}

	now := c.now().UTC()
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(purpose))),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse validates tokenString and checks it was issued for expected.
// Every failure is returned as an *apierror.APIError. A missing or unknown
// purpose counts as malformed and is UNAUTHORIZED, like bad signatures and
// expiry; only an access/refresh mismatch is FORBIDDEN.
func (c *Codec) Parse(tokenString string, expected Purpose) (*Claims, error) {
	if tokenString == "" {
		return nil, apierror.Unauthorized("missing token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apierror.Unauthorized("token expired")
	}
	if err != nil || !parsed.Valid {
		return nil, apierror.Unauthorized("invalid token")
	}

	if claims.Subject == "" {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	if claims.Purpose != PurposeAccess && claims.Purpose != PurposeRefresh {
		return nil, apierror.Unauthorized("invalid token")
	}

	if claims.Purpose != expected {
		return nil, apierror.Forbidden("wrong token purpose")
	}

	return claims, nil
}

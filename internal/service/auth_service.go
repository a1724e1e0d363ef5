package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-shop-api/internal/model"
	"go-shop-api/internal/password"
	"go-shop-api/internal/token"
	"go-shop-api/pkg/apierror"
)

type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hash string) bool
}

type TokenCodec interface {
	Issue(userID string, purpose token.Purpose) (string, error)
	Parse(tokenString string, expected token.Purpose) (*token.Claims, error)
}

type RefreshWhitelist interface {
	Insert(ctx context.Context, userID string, refreshToken string) error
	Lookup(ctx context.Context, refreshToken string) (model.RefreshRecord, error)
	Rotate(ctx context.Context, oldToken string, newToken string) error
}

// AuthObserver receives one call per finished auth operation.
type AuthObserver interface {
	ObserveAuth(op string, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveAuth(string, string) {}

// Login failures share one message and status so callers cannot tell an
// unknown email from a wrong password.
func invalidCredentials() *apierror.APIError {
	return apierror.New(apierror.KindUnauthorized, "Incorrect email or password", "", http.StatusUnprocessableEntity)
}

type AuthService struct {
	users     UserStore
	hasher    PasswordHasher
	codec     TokenCodec
	whitelist RefreshWhitelist
	observer  AuthObserver
	dummyHash string
}

func NewAuthService(users UserStore, hasher PasswordHasher, codec TokenCodec, whitelist RefreshWhitelist, observer AuthObserver) (*AuthService, error) {
	if observer == nil {
		observer = nopObserver{}
	}

	// Verified against when the email is unknown so both login failures cost
	// one bcrypt comparison.
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		whitelist: whitelist,
		observer:  observer,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apierror.KindOf(err)))
	}
	s.observer.ObserveAuth(op, outcome)
}

// Signup creates the account and returns its id. The request is expected to
// have passed validation already.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (userID string, err error) {
	defer func() { s.observe("signup", err) }()

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, password.ErrTooLong) {
		return "", apierror.Validation("invalid request body", map[string]string{"password": "must be at most 72 bytes"})
	}
	if err != nil {
		return "", err
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return "", apierror.Conflict("email already registered", req.Email)
	}
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

// Login verifies the credentials, issues a token pair and whitelists the
// refresh token. No tokens are returned unless the whitelist write succeeds.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (pair model.TokenPair, err error) {
	defer func() { s.observe("login", err) }()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.Verify(req.Password, s.dummyHash)
		return model.TokenPair{}, invalidCredentials()
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.TokenPair{}, invalidCredentials()
	}

	pair, err = s.issuePair(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.whitelist.Insert(ctx, user.ID, pair.RefreshToken); err != nil {
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	return pair, nil
}

// VerifyAccess authenticates an access token and returns its claims.
func (s *AuthService) VerifyAccess(accessToken string) (*token.Claims, error) {
	return s.codec.Parse(accessToken, token.PurposeAccess)
}

// Refresh exchanges a whitelisted refresh token for a new pair. The old token
// is consumed by a single conditional rotate, so of several concurrent calls
// with the same token at most one succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair model.TokenPair, err error) {
	defer func() { s.observe("refresh", err) }()

	claims, err := s.codec.Parse(refreshToken, token.PurposeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	rec, err := s.whitelist.Lookup(ctx, refreshToken)
	if errors.Is(err, model.ErrTokenNotFound) {
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return model.TokenPair{}, err
	}
	if rec.UserID != claims.UserID() {
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}

	pair, err = s.issuePair(claims.UserID())
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.whitelist.Rotate(ctx, refreshToken, pair.RefreshToken); err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	return pair, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("user not found", userID)
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) issuePair(userID string) (model.TokenPair, error) {
	access, err := s.codec.Issue(userID, token.PurposeAccess)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.codec.Issue(userID, token.PurposeRefresh)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

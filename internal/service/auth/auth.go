package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/blacklist"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/repository"
	"github.com/okarpov/blogapi/internal/service/auth/tokencodec"
	"github.com/okarpov/blogapi/internal/tokenstore"
)

const (
	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 14 * 24 * time.Hour

	bearerPrefix = "Bearer "
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign token payloads
	SecretKey string

	// Hasher used during registration and login
	// Defaults to bcrypt when nil
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	// If not set the defaults are used
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AuthService composes the credential store, the token codec, the
// refresh token store and the blacklist into the signup, login, refresh
// and logout operations.
type AuthService struct {
	codec  *tokencodec.Codec
	hasher PasswordHasher

	accessTTL  time.Duration
	refreshTTL time.Duration

	userRepo     repository.UserRepo
	refreshStore tokenstore.Store
	blacklist    blacklist.Blacklist
}

func NewService(cfg Config, userRepo repository.UserRepo, refreshStore tokenstore.Store, bl blacklist.Blacklist) (*AuthService, error) {
	if userRepo == nil || refreshStore == nil || bl == nil {
		return nil, errors.New("user repo, refresh store and blacklist must not be nil")
	}

	codec, err := tokencodec.New(tokencodec.Config{SecretKey: cfg.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTokenTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTokenTTL, defaultRefreshTokenTTL)

	return &AuthService{
		codec:        codec,
		hasher:       hasher,
		accessTTL:    cfg.AccessTokenTTL,
		refreshTTL:   cfg.RefreshTokenTTL,
		userRepo:     userRepo,
		refreshStore: refreshStore,
		blacklist:    bl,
	}, nil
}

// Signup registers a new account. No tokens are issued, the user logs in
// separately. Returns apperrors.ErrUserAlreadyExists on a duplicate email.
func (s *AuthService) Signup(ctx context.Context, email string, password string, nickname string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, nickname, hash)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login verifies credentials and issues an access and refresh pair.
// Returns apperrors.ErrUserNotFound or apperrors.ErrInvalidPassword.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidPassword
	}

	return s.issuePair(ctx, user.Email)
}

// Refresh rotates the presented refresh token: the old token is consumed
// and can never refresh again, a new pair is issued in its place.
// Concurrent refreshes with the same token race on the store delete, the
// loser observes apperrors.ErrRefreshTokenNotFound.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	if _, err := s.codec.Verify(refresh); err != nil {
		return models.TokenPair{}, err
	}

	email, err := s.refreshStore.Get(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.refreshStore.Delete(ctx, refresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}

	return s.issuePair(ctx, email)
}

// Logout blacklists the presented access token until its own expiry.
// The paired refresh token stays in the store and dies by TTL: revoking
// it here would need an email index over refresh tokens, which the store
// deliberately does not keep.
func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	if authHeader == "" {
		return apperrors.ErrTokenMissing
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)

	claims, err := s.codec.Verify(token)
	if err != nil {
		return err
	}

	if err := s.blacklist.Block(ctx, token, claims.ExpiresAt); err != nil {
		return fmt.Errorf("error while blacklisting token. Err: %w", err)
	}

	return nil
}

// Authenticate resolves the user behind an Authorization header: bearer
// extraction, signature and expiry verification, blacklist check, then
// the account lookup.
func (s *AuthService) Authenticate(ctx context.Context, authHeader string) (models.User, error) {
	if authHeader == "" {
		return models.User{}, apperrors.ErrTokenMissing
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)

	claims, err := s.codec.Verify(token)
	if err != nil {
		return models.User{}, err
	}

	blocked, err := s.blacklist.IsBlocked(ctx, token)
	if err != nil {
		return models.User{}, fmt.Errorf("error while checking blacklist. Err: %w", err)
	}
	if blocked {
		return models.User{}, fmt.Errorf("%w: token revoked", apperrors.ErrTokenInvalid)
	}

	return s.userRepo.GetUserByEmail(ctx, claims.Subject)
}

// AccessTokenTTL the service issues access tokens with
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

func (s *AuthService) issuePair(ctx context.Context, email string) (models.TokenPair, error) {
	access, err := s.codec.Issue(email, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.codec.Issue(email, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	if err := s.refreshStore.Save(ctx, refresh.Value, email, s.refreshTTL); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

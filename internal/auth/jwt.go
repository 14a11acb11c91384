package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasktracker/internal/metrics"
	"tasktracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what Issue and Refresh hand back to the client.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Blacklist records revoked refresh tokens by jti.
// Add must fail with repository.ErrTokenAlreadyBlacklisted when the jti is already present.
type Blacklist interface {
	Add(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  Blacklist
	now        func() time.Time
}

type Option func(*TokenService)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, blacklist Blacklist, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if accessTTL >= refreshTTL {
		return nil, errors.New("access token lifetime must be shorter than refresh token lifetime")
	}

	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a fresh access/refresh pair for the user.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	pair, err := s.issue(userID)
	if err != nil {
		return nil, err
	}
	metrics.TokenEvents.WithLabelValues("issued").Inc()
	return pair, nil
}

func (s *TokenService) issue(userID uuid.UUID) (*TokenPair, error) {
	now := s.now()

	access, accessExp, err := s.sign(userID, TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(userID, TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The new pair is signed
// first and only handed out once the presented token has been blacklisted, so each
// refresh token works once and a failed refresh leaves it usable.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		s.reject(ErrTokenRevoked)
		return nil, ErrTokenRevoked
	}

	pair, err := s.issue(claims.UserID)
	if err != nil {
		return nil, err
	}

	// Add is the atomic claim on the token; a concurrent refresh of the same token loses here.
	if err := s.blacklist.Add(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, repository.ErrTokenAlreadyBlacklisted) {
			s.reject(ErrTokenRevoked)
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("blacklist refresh token: %w", err)
	}

	metrics.TokenEvents.WithLabelValues("issued").Inc()
	metrics.TokenEvents.WithLabelValues("refreshed").Inc()
	return pair, nil
}

// Revoke blacklists a refresh token. Revoking an already revoked token succeeds.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		s.reject(err)
		return err
	}

	err = s.blacklist.Add(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil && !errors.Is(err, repository.ErrTokenAlreadyBlacklisted) {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}

	metrics.TokenEvents.WithLabelValues("revoked").Inc()
	return nil
}

// Authenticate validates an access token and returns the user it was issued to.
// Access tokens are not checked against the blacklist.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := s.parse(accessToken, TokenTypeAccess)
	if err != nil {
		s.reject(err)
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func (s *TokenService) sign(userID uuid.UUID, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, exp, nil
}

func (s *TokenService) parse(tokenStr string, wantType string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == uuid.Nil || claims.ID == "" || claims.TokenType != wantType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) reject(err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		metrics.TokenEvents.WithLabelValues("rejected_expired").Inc()
	case errors.Is(err, ErrTokenRevoked):
		metrics.TokenEvents.WithLabelValues("rejected_revoked").Inc()
	default:
		metrics.TokenEvents.WithLabelValues("rejected_invalid").Inc()
	}
}

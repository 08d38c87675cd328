package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retailflow/internal/domain"
	"retailflow/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is deliberately the same for an unknown name and
	// a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers every way a session token can fail to verify.
	ErrInvalidToken = errors.New("invalid token")
)

// SessionStore persists the authenticated identity between visits.
type SessionStore interface {
	Load(ctx context.Context) (domain.Identity, bool, error)
	Save(ctx context.Context, identity domain.Identity) error
	Clear(ctx context.Context) error
}

// Claims is the session token payload; Subject carries the identity's id.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator answers login attempts against the fixed credential table,
// keeps the resulting identity across restarts, and mints/verifies the
// session tokens the route guards rely on.
type Authenticator struct {
	sessions SessionStore
	secret   []byte
	expiry   time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	current *domain.Identity
}

// New builds an Authenticator and restores the persisted session if one is
// present and carries all required fields. A corrupt persisted session is
// cleared and treated as absent.
func New(ctx context.Context, sessions SessionStore, secret string, expiry time.Duration, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Authenticator{
		sessions: sessions,
		secret:   []byte(secret),
		expiry:   expiry,
		logger:   logger,
	}
	a.restore(ctx)
	return a
}

func (a *Authenticator) restore(ctx context.Context) {
	identity, found, err := a.sessions.Load(ctx)
	if err != nil {
		a.logger.Warn("Failed to restore session, clearing it", zap.Error(err))
		if clearErr := a.sessions.Clear(ctx); clearErr != nil {
			a.logger.Warn("Failed to clear corrupt session", zap.Error(clearErr))
		}
		return
	}
	if !found {
		return
	}
	if !identity.Valid() {
		a.logger.Warn("Persisted session missing required fields, clearing it")
		if clearErr := a.sessions.Clear(ctx); clearErr != nil {
			a.logger.Warn("Failed to clear corrupt session", zap.Error(clearErr))
		}
		return
	}
	a.current = &identity
	a.logger.Info("Restored session", zap.String("user_id", identity.ID), zap.String("role", identity.Role))
}

// Login checks name and password against the credential table. On success it
// persists the password-free identity, keeps it in memory, and returns it
// with a signed session token. Any mismatch returns ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, name, password string) (domain.Identity, string, error) {
	identity, ok := lookupCredential(name, password)
	if !ok {
		metrics.Logins.WithLabelValues("failure").Inc()
		a.logger.Info("Login rejected", zap.String("name", name))
		return domain.Identity{}, "", ErrInvalidCredentials
	}

	token, err := a.mintToken(identity)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	a.mu.Lock()
	a.current = &identity
	a.mu.Unlock()

	// Best effort, same policy as state persistence.
	if err := a.sessions.Save(ctx, identity); err != nil {
		a.logger.Error("Failed to persist session", zap.Error(err))
	}

	metrics.Logins.WithLabelValues("success").Inc()
	a.logger.Info("User logged in", zap.String("user_id", identity.ID), zap.String("role", identity.Role))
	return identity, token, nil
}

// Logout clears the in-memory and persisted identity unconditionally.
func (a *Authenticator) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()

	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// Current reports the logged-in identity, if any.
func (a *Authenticator) Current() (domain.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return domain.Identity{}, false
	}
	return *a.current, true
}

// VerifyToken parses and validates a session token and rebuilds the identity
// from its claims.
func (a *Authenticator) VerifyToken(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}

	identity := domain.Identity{ID: claims.Subject, Name: claims.Name, Role: claims.Role}
	if !identity.Valid() {
		return domain.Identity{}, ErrInvalidToken
	}
	return identity, nil
}

func (a *Authenticator) mintToken(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: identity.Name,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

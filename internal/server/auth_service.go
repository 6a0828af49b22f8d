package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

const (
	authTypeBearer  = "bearer"
	authTypeSession = "session"
)

var (
	defaultSessionTTL           = 24 * time.Hour
	defaultEnabledUsersCacheTTL = 5 * time.Second
)

// AuthService issues and checks member sessions backed by the store.
type AuthService struct {
	store      store.AuthStore
	sessionTTL time.Duration

	enabledUsersCacheTTL time.Duration
	cacheMu              sync.Mutex
	cachedEnabledUsers   int
	cachedAt             time.Time
}

func NewAuthService(authStore store.AuthStore) *AuthService {
	if authStore == nil {
		return nil
	}
	return &AuthService{
		store:                authStore,
		sessionTTL:           defaultSessionTTL,
		enabledUsersCacheTTL: defaultEnabledUsersCacheTTL,
	}
}

// AuthRequired reports whether requests must authenticate. It is false only
// when no API token is configured and no enabled user exists. The user count
// is cached for enabledUsersCacheTTL.
func (a *AuthService) AuthRequired(ctx context.Context, apiTokenConfigured bool, now time.Time) (bool, error) {
	if apiTokenConfigured {
		return true, nil
	}
	if a == nil || a.store == nil {
		return false, nil
	}

	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	if !a.cachedAt.IsZero() && now.Sub(a.cachedAt) < a.enabledUsersCacheTTL {
		return a.cachedEnabledUsers > 0, nil
	}
	count, err := a.store.CountEnabledUsers(ctx)
	if err != nil {
		return false, err
	}
	a.cachedEnabledUsers = count
	a.cachedAt = now
	return count > 0, nil
}

// InvalidateAuthRequiredCache forces the next AuthRequired call to recount
// users. Call it after provisioning changes.
func (a *AuthService) InvalidateAuthRequiredCache() {
	if a == nil {
		return
	}
	a.cacheMu.Lock()
	a.cachedAt = time.Time{}
	a.cacheMu.Unlock()
}

// Login checks credentials and opens a session. Unknown, disabled and
// wrong-password accounts all fail with auth.ErrInvalidCredentials.
func (a *AuthService) Login(ctx context.Context, email, password string, now time.Time) (models.Session, error) {
	if a == nil || a.store == nil {
		return models.Session{}, fmt.Errorf("auth store is required")
	}

	normalized, err := internalauth.NormalizeEmail(email)
	if err != nil {
		return models.Session{}, err
	}
	if strings.TrimSpace(password) == "" {
		return models.Session{}, fmt.Errorf("password is required")
	}

	user, err := a.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		return models.Session{}, err
	}
	if user == nil || user.Disabled || !internalauth.VerifyPassword(user.PasswordHash, password) {
		return models.Session{}, internalauth.ErrInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return models.Session{}, err
	}
	expiresAt := now.Add(a.sessionTTL)
	if err := a.store.CreateSession(ctx, user.ID, hashSessionToken(token), expiresAt, now); err != nil {
		return models.Session{}, err
	}

	return models.Session{Token: token, ExpiresAt: expiresAt, User: user.PublicProfile()}, nil
}

func (a *AuthService) AuthenticateSessionToken(ctx context.Context, token string, now time.Time) (*store.AuthUser, error) {
	if a == nil || a.store == nil {
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	return a.store.GetUserBySessionTokenHash(ctx, hashSessionToken(token), now)
}

func (a *AuthService) RevokeSessionToken(ctx context.Context, token string, now time.Time) error {
	if a == nil || a.store == nil {
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return a.store.RevokeSessionByTokenHash(ctx, hashSessionToken(token), now)
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

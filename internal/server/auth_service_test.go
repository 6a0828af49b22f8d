package server

import (
	"context"
	"errors"
	"testing"
	"time"

	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

func TestAuthServiceAuthRequiredCachesEnabledUsersCount(t *testing.T) {
	fake := &fakeAuthStore{enabledUsersCount: 1}
	svc := NewAuthService(fake)
	if svc == nil {
		t.Fatal("expected auth service")
	}
	svc.enabledUsersCacheTTL = time.Minute

	now := time.Now().UTC()

	required, err := svc.AuthRequired(context.Background(), false, now)
	if err != nil {
		t.Fatalf("auth required first query: %v", err)
	}
	if !required {
		t.Fatal("expected auth required when enabled users exist")
	}
	if fake.countEnabledUsersCalls != 1 {
		t.Fatalf("expected one enabled-user count query, got %d", fake.countEnabledUsersCalls)
	}

	required, err = svc.AuthRequired(context.Background(), false, now.Add(30*time.Second))
	if err != nil {
		t.Fatalf("auth required cached query: %v", err)
	}
	if !required {
		t.Fatal("expected cached auth required result")
	}
	if fake.countEnabledUsersCalls != 1 {
		t.Fatalf("expected cached call count to remain 1, got %d", fake.countEnabledUsersCalls)
	}

	required, err = svc.AuthRequired(context.Background(), false, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("auth required cache refresh query: %v", err)
	}
	if !required {
		t.Fatal("expected auth required after cache refresh")
	}
	if fake.countEnabledUsersCalls != 2 {
		t.Fatalf("expected cache refresh to query count again, got %d", fake.countEnabledUsersCalls)
	}

	required, err = svc.AuthRequired(context.Background(), true, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("auth required with api token: %v", err)
	}
	if !required {
		t.Fatal("expected api token mode to require auth")
	}
	if fake.countEnabledUsersCalls != 2 {
		t.Fatalf("expected api token mode to skip store query, got %d", fake.countEnabledUsersCalls)
	}
}

func TestAuthServiceInvalidateAuthRequiredCache(t *testing.T) {
	fake := &fakeAuthStore{enabledUsersCount: 1}
	svc := NewAuthService(fake)
	svc.enabledUsersCacheTTL = 5 * time.Minute

	now := time.Now().UTC()
	if required, _ := svc.AuthRequired(context.Background(), false, now); !required {
		t.Fatal("expected auth required on initial query")
	}

	fake.enabledUsersCount = 0
	if required, _ := svc.AuthRequired(context.Background(), false, now.Add(time.Minute)); !required {
		t.Fatal("expected cached value to remain true before invalidation")
	}

	svc.InvalidateAuthRequiredCache()
	required, err := svc.AuthRequired(context.Background(), false, now.Add(time.Minute+time.Second))
	if err != nil {
		t.Fatalf("auth required post-invalidate query: %v", err)
	}
	if required {
		t.Fatal("expected open mode after invalidation with zero enabled users")
	}
	if fake.countEnabledUsersCalls != 2 {
		t.Fatalf("expected second count query after invalidation, got %d", fake.countEnabledUsersCalls)
	}
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := internalauth.HashPassword("password-123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	fake := &fakeAuthStore{users: map[string]*store.AuthUser{
		"ada@example.com": {
			ID:           "au-1",
			Email:        "ada@example.com",
			PasswordHash: hash,
			Profile:      models.Profile{Name: "Ada", Access: models.AccessAdmin},
		},
		"off@example.com": {
			ID:           "au-2",
			Email:        "off@example.com",
			PasswordHash: hash,
			Disabled:     true,
		},
	}}
	svc := NewAuthService(fake)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	session, err := svc.Login(context.Background(), " ADA@example.com ", "password-123", now)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || !session.ExpiresAt.Equal(now.Add(defaultSessionTTL)) {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.User.ID != "au-1" || session.User.Email != "ada@example.com" || !session.User.IsAdmin() {
		t.Fatalf("unexpected session user %+v", session.User)
	}
	if fake.lastSessionHash != hashSessionToken(session.Token) {
		t.Fatal("store should receive the token hash, not the token")
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ada@example.com", password: "nope-nope"},
		{name: "unknown user", email: "who@example.com", password: "password-123"},
		{name: "disabled user", email: "off@example.com", password: "password-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password, now)
			if !errors.Is(err, internalauth.ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}

	if _, err := svc.Login(context.Background(), "not-an-email", "password-123", now); err == nil || errors.Is(err, internalauth.ErrInvalidCredentials) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeAuthStore struct {
	enabledUsersCount      int
	countEnabledUsersCalls int
	users                  map[string]*store.AuthUser
	lastSessionHash        string
}

func (f *fakeAuthStore) CountEnabledUsers(context.Context) (int, error) {
	f.countEnabledUsersCalls++
	return f.enabledUsersCount, nil
}

func (f *fakeAuthStore) CreateUser(context.Context, models.Profile, string, time.Time) (*store.AuthUser, error) {
	return nil, nil
}

func (f *fakeAuthStore) GetUserByEmail(_ context.Context, email string) (*store.AuthUser, error) {
	return f.users[email], nil
}

func (f *fakeAuthStore) ListUsers(context.Context) ([]store.AuthUser, error) {
	return nil, nil
}

func (f *fakeAuthStore) SetUserDisabled(context.Context, string, bool, time.Time) (*store.AuthUser, error) {
	return nil, nil
}

func (f *fakeAuthStore) DeleteUser(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeAuthStore) CreateSession(_ context.Context, _ string, tokenHash string, _, _ time.Time) error {
	f.lastSessionHash = tokenHash
	return nil
}

func (f *fakeAuthStore) GetUserBySessionTokenHash(context.Context, string, time.Time) (*store.AuthUser, error) {
	return nil, nil
}

func (f *fakeAuthStore) RevokeSessionByTokenHash(context.Context, string, time.Time) error {
	return nil
}

func (f *fakeAuthStore) PurgeExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

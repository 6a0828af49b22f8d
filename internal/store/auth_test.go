package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"blogdesk/internal/models"
)

func openTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "blogdesk.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st, context.Background()
}

func TestAuthUserAndSessionLifecycle(t *testing.T) {
	st, ctx := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	count, err := st.CountEnabledUsers(ctx)
	if err != nil {
		t.Fatalf("count enabled users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	created, err := st.CreateUser(ctx, models.Profile{
		Name:    "Admin",
		Email:   "Admin@Example.com",
		College: "KIIT",
		Access:  models.AccessAdmin,
	}, "hash-1", now)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if !created.Profile.IsAdmin() {
		t.Fatalf("expected admin access, got %q", created.Profile.Access)
	}

	loaded, err := st.GetUserByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if loaded == nil || loaded.ID != created.ID {
		t.Fatalf("expected loaded user %q, got %+v", created.ID, loaded)
	}
	if loaded.Profile.College != "KIIT" || loaded.Profile.Name != "Admin" {
		t.Fatalf("profile not persisted: %+v", loaded.Profile)
	}
	if p := loaded.PublicProfile(); p.ID != created.ID || p.Email != "admin@example.com" {
		t.Fatalf("unexpected public profile %+v", p)
	}

	expiresAt := now.Add(2 * time.Hour)
	if err := st.CreateSession(ctx, created.ID, "token-hash", expiresAt, now); err != nil {
		t.Fatalf("create session: %v", err)
	}

	authed, err := st.GetUserBySessionTokenHash(ctx, "token-hash", now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("get user by session token hash: %v", err)
	}
	if authed == nil || authed.ID != created.ID {
		t.Fatalf("expected session user %q, got %+v", created.ID, authed)
	}

	expired, err := st.GetUserBySessionTokenHash(ctx, "token-hash", now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("get user by expired session: %v", err)
	}
	if expired != nil {
		t.Fatal("expected nil user for expired session")
	}

	if err := st.RevokeSessionByTokenHash(ctx, "token-hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("revoke session by token hash: %v", err)
	}
	authed, err = st.GetUserBySessionTokenHash(ctx, "token-hash", now.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("get user by revoked session token hash: %v", err)
	}
	if authed != nil {
		t.Fatal("expected nil user for revoked session")
	}

	purged, err := st.PurgeExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("purge sessions: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
}

func TestAuthUserManagementLifecycle(t *testing.T) {
	st, ctx := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := st.CreateUser(ctx, models.Profile{Email: "alice@example.com"}, "hash-a", now); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := st.CreateUser(ctx, models.Profile{Email: "bob@example.com", Access: "superuser"}, "hash-b", now); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if _, err := st.CreateUser(ctx, models.Profile{Email: "alice@example.com"}, "hash-c", now); err == nil {
		t.Fatal("expected duplicate email to fail")
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Email != "alice@example.com" || users[1].Email != "bob@example.com" {
		t.Fatalf("expected sorted emails, got [%s %s]", users[0].Email, users[1].Email)
	}
	if users[1].Profile.Access != models.AccessMember {
		t.Fatalf("unknown access should become member, got %q", users[1].Profile.Access)
	}
	if users[0].Profile.Name != "alice@example.com" {
		t.Fatalf("name should default to email, got %q", users[0].Profile.Name)
	}

	disabled, err := st.SetUserDisabled(ctx, "alice@example.com", true, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("disable alice: %v", err)
	}
	if disabled == nil || !disabled.Disabled {
		t.Fatal("expected alice to be disabled")
	}

	count, err := st.CountEnabledUsers(ctx)
	if err != nil {
		t.Fatalf("count enabled users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 enabled user, got %d", count)
	}

	missing, err := st.SetUserDisabled(ctx, "nobody@example.com", true, now)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown user, got %+v (err: %v)", missing, err)
	}

	deleted, err := st.DeleteUser(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("delete bob: %v", err)
	}
	if !deleted {
		t.Fatal("expected bob to be deleted")
	}

	users, err = st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users after delete: %v", err)
	}
	if len(users) != 1 || users[0].Email != "alice@example.com" {
		t.Fatalf("expected only alice to remain, got %+v", users)
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"blogdesk/internal/models"
)

// AuthUser is one provisioned member account.
type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
	Profile      models.Profile
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile returns the profile with identity fields filled in.
func (u AuthUser) PublicProfile() models.Profile {
	p := u.Profile
	p.ID = u.ID
	p.Email = u.Email
	return p
}

const userColumns = `id, email, name, password_hash, access, profile, disabled, created_at, updated_at`

// CountEnabledUsers returns the number of non-disabled provisioned users.
func (s *Store) CountEnabledUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE disabled = 0").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateUser creates one member account. Access defaults to member.
func (s *Store) CreateUser(ctx context.Context, profile models.Profile, passwordHash string, now time.Time) (*AuthUser, error) {
	email := normalizeAuthEmail(profile.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	profile.Email = email
	profile.ID = ""
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = email
	}
	if profile.Access != models.AccessAdmin {
		profile.Access = models.AccessMember
	}
	extra, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	userID, err := generateAuthID("au")
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, userID, email, profile.Name, passwordHash, profile.Access, string(extra), dbFormatTime(now), dbFormatTime(now))
	if err != nil {
		return nil, err
	}

	return &AuthUser{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		Profile:      profile,
		Disabled:     false,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// GetUserByEmail returns a provisioned user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*AuthUser, error) {
	email = normalizeAuthEmail(email)
	if email == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
	return scanAuthUser(row)
}

// ListUsers returns all provisioned users sorted by email.
func (s *Store) ListUsers(ctx context.Context) ([]AuthUser, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY email ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AuthUser, 0)
	for rows.Next() {
		user, err := scanAuthUser(rows)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserDisabled updates one user's disabled state by email.
func (s *Store) SetUserDisabled(ctx context.Context, email string, disabled bool, now time.Time) (*AuthUser, error) {
	email = normalizeAuthEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	disabledInt := 0
	if disabled {
		disabledInt = 1
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET disabled = ?, updated_at = ?
		WHERE email = ?
	`, disabledInt, dbFormatTime(now), email)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetUserByEmail(ctx, email)
}

// DeleteUser deletes one user by email. Sessions cascade.
func (s *Store) DeleteUser(ctx context.Context, email string) (bool, error) {
	email = normalizeAuthEmail(email)
	if email == "" {
		return false, fmt.Errorf("email is required")
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE email = ?", email)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateSession creates a login session bound to one user and token hash.
func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt, createdAt time.Time) error {
	userID = strings.TrimSpace(userID)
	tokenHash = strings.TrimSpace(tokenHash)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if tokenHash == "" {
		return fmt.Errorf("token hash is required")
	}

	sessionID, err := generateAuthID("as")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
	`, sessionID, userID, tokenHash, dbFormatTime(expiresAt), dbFormatTime(createdAt))
	return err
}

// GetUserBySessionTokenHash returns the owning user for an active, non-revoked session token hash.
func (s *Store) GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*AuthUser, error) {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.password_hash, u.access, u.profile, u.disabled, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?
		  AND s.revoked_at IS NULL
		  AND s.expires_at > ?
		  AND u.disabled = 0
		LIMIT 1
	`, tokenHash, dbFormatTime(now))

	return scanAuthUser(row)
}

// RevokeSessionByTokenHash marks one session revoked by token hash.
func (s *Store) RevokeSessionByTokenHash(ctx context.Context, tokenHash string, revokedAt time.Time) error {
	tokenHash = strings.TrimSpace(tokenHash)
	if tokenHash == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = ?
		WHERE token_hash = ?
		  AND revoked_at IS NULL
	`, dbFormatTime(revokedAt), tokenHash)
	return err
}

// PurgeExpiredSessions deletes expired and revoked sessions.
func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at <= ? OR revoked_at IS NOT NULL
	`, dbFormatTime(now))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanAuthUser(scanner interface {
	Scan(dest ...any) error
}) (*AuthUser, error) {
	var user AuthUser
	var name, access, profile string
	var disabled int
	var createdAt string
	var updatedAt string
	if err := scanner.Scan(&user.ID, &user.Email, &name, &user.PasswordHash, &access, &profile, &disabled, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if profile != "" {
		if err := json.Unmarshal([]byte(profile), &user.Profile); err != nil {
			return nil, fmt.Errorf("decode profile for %s: %w", user.Email, err)
		}
	}
	user.Profile.Name = name
	user.Profile.Access = access
	user.Profile.Email = user.Email
	user.Disabled = disabled != 0
	parsedCreated, err := dbParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	parsedUpdated, err := dbParseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = parsedCreated
	user.UpdatedAt = parsedUpdated
	return &user, nil
}

func normalizeAuthEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

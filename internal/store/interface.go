package store

import (
	"context"
	"time"

	"blogdesk/internal/models"
)

// BlogStore abstracts blog storage backends.
type BlogStore interface {
	CreateBlog(ctx context.Context, rec *models.BlogRecord) error
	GetBlog(ctx context.Context, id string) (*models.BlogRecord, error)
	ListBlogs(ctx context.Context) ([]models.BlogRecord, error)
	UpdateBlog(ctx context.Context, rec *models.BlogRecord) error
	DeleteBlog(ctx context.Context, id string) error
}

// AuthStore abstracts user and session storage.
type AuthStore interface {
	CountEnabledUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, profile models.Profile, passwordHash string, now time.Time) (*AuthUser, error)
	GetUserByEmail(ctx context.Context, email string) (*AuthUser, error)
	ListUsers(ctx context.Context) ([]AuthUser, error)
	SetUserDisabled(ctx context.Context, email string, disabled bool, now time.Time) (*AuthUser, error)
	DeleteUser(ctx context.Context, email string) (bool, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expiresAt, createdAt time.Time) error
	GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*AuthUser, error)
	RevokeSessionByTokenHash(ctx context.Context, tokenHash string, revokedAt time.Time) error
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ImageStore records metadata for uploaded cover images.
type ImageStore interface {
	PutImage(ctx context.Context, img ImageRecord) error
	GetImage(ctx context.Context, key string) (*ImageRecord, error)
}

var (
	_ BlogStore  = (*Store)(nil)
	_ AuthStore  = (*Store)(nil)
	_ ImageStore = (*Store)(nil)
)

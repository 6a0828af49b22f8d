package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ImageRecord describes one stored cover image.
type ImageRecord struct {
	BlobKey   string    `json:"blob_key"`
	SHA256    string    `json:"sha256"`
	MediaType string    `json:"media_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// PutImage records image metadata. Re-uploading identical bytes is a no-op.
func (s *Store) PutImage(ctx context.Context, img ImageRecord) error {
	if strings.TrimSpace(img.BlobKey) == "" {
		return fmt.Errorf("blob key is required")
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO images (blob_key, sha256, media_type, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, img.BlobKey, img.SHA256, img.MediaType, img.SizeBytes, dbFormatTime(img.CreatedAt))
	return err
}

// GetImage returns image metadata by blob key, or nil when unknown.
func (s *Store) GetImage(ctx context.Context, key string) (*ImageRecord, error) {
	var img ImageRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT blob_key, sha256, media_type, size_bytes, created_at
		FROM images
		WHERE blob_key = ?
	`, key).Scan(&img.BlobKey, &img.SHA256, &img.MediaType, &img.SizeBytes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if img.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	return &img, nil
}

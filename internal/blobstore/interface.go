package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrTooLarge is returned when a payload exceeds the configured limit.
var ErrTooLarge = errors.New("payload exceeds upload limit")

// PutResult describes one persisted cover image.
type PutResult struct {
	SHA256    string
	SizeBytes int64
	Key       string
	// MediaType is sniffed from the leading bytes, not taken from the client.
	MediaType string
}

// BlobStore is the byte storage used for uploaded cover images.
type BlobStore interface {
	Put(ctx context.Context, r io.Reader, maxBytes int64) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

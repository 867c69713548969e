package storage

import (
	"accordee/internal/types"
	"context"
	"errors"
)

// ErrNotConfigured is returned by the media endpoints when no object storage endpoint is set.
var ErrNotConfigured = errors.New("object storage is not configured")

type Storage interface {
	Save(ctx context.Context, key string, f types.File) error
	Get(ctx context.Context, key string) (*types.File, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
	Ping(ctx context.Context) error
}

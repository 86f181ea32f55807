package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/config"
)

// Store persists images under a key and builds their public URL.
type Store interface {
	Save(ctx context.Context, dir string, img *Image) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New returns the store selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStore(cfg.MediaRoot, cfg.BaseURL+cfg.MediaURL), nil
	case "s3":
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(s3Cfg.Client, s3Cfg.BucketName, s3Cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}

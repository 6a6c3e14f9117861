package library

import (
	"context"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

// CacheRepository caches the active catalog. GetCatalog returns (nil, nil) on a miss.
type CacheRepository interface {
	GetCatalog(ctx context.Context, key string) ([]*models.ClipReference, error)
	SetCatalog(ctx context.Context, key string, clips []*models.ClipReference, ttl time.Duration) error
}

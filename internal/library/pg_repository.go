package library

import (
	"context"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

// Repository reads the educational library catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]*models.ClipReference, error)
}

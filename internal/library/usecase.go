package library

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

// ErrFocusLimitExceeded is returned when a job's issues resolve to more than one
// distinct clip location.
var ErrFocusLimitExceeded = errors.New("FOCUS_LIMIT_EXCEEDED")

type UseCase interface {
	Match(ctx context.Context, issues []models.Issue) (*models.Resolution, error)
}

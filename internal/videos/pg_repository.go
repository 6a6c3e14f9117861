package videos

import (
	"context"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

// Repository is the Status Reporter: every write is keyed by the raw path,
// last writer wins and always stamps updated_at.
type Repository interface {
	GetByID(ctx context.Context, videoID string) (*models.VideoJob, error)
	EnsureJob(ctx context.Context, rawPath, bucket string) (*models.VideoJob, error)
	UpdateStatus(ctx context.Context, rawPath string, status models.JobStatus, message string) error
	CompleteJob(ctx context.Context, rawPath string, message string, result *models.JobResult) error
	TouchRestitch(ctx context.Context, rawPath, stitchedPath, thumbnailPath string) error
	RecordMatches(ctx context.Context, rawPath string, pairings []models.Match) error
	LoadBlueprint(ctx context.Context, videoID string) ([]models.BlueprintEntry, error)
}

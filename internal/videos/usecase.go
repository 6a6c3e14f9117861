package videos

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
)

// ErrJobBusy is returned when another run holds the lease on the same job.
var ErrJobBusy = errors.New("job is being processed by another run")

type UseCase interface {
	// Submit validates an ingested event and queues it. Raw uploads outside the
	// raw namespace are dropped.
	Submit(ctx context.Context, event *models.JobEvent) error
	ListQueue(ctx context.Context, pagination *utils.Pagination) (*models.EventList, error)
	// RunJob drives one raw upload to a terminal status. Failures are recorded
	// on the job; the returned error only reports ErrJobBusy or a failed
	// status write.
	RunJob(ctx context.Context, event *models.JobEvent) error
	// Restitch rebuilds the output of a job from its blueprint.
	Restitch(ctx context.Context, videoID string) error
}

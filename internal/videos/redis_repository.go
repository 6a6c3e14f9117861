package videos

import (
	"context"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
)

// QueueRepository carries job events from the ingress to the workers and
// serializes work on a single job identity.
type QueueRepository interface {
	Enqueue(ctx context.Context, event *models.JobEvent) error
	Dequeue(ctx context.Context, timeout time.Duration) (*models.JobEvent, error)
	Pending(ctx context.Context) ([]*models.JobEvent, error)
	AcquireLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error)
	RenewLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, identity, owner string) error
}

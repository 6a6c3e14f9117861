package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/library"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
)

// User-facing job messages.
const (
	MsgDownloading       = "Downloading assets..."
	MsgAnalyzing         = "Analyzing video..."
	MsgMatching          = "Finding educational content..."
	MsgStitching         = "Stitching video..."
	MsgUploading         = "Uploading results..."
	MsgNoIssues          = "no issues detected by AI"
	MsgUnrelatedIssues   = "Please mention only one problem per video, or ensure all problems are related."
	MsgFocusLimit        = "focus on one problem at a time"
	MsgNoContent         = "no educational content found for detected issues"
	MsgInternalError     = "internal processing error"
	MsgCompleted         = "Video processed successfully"
	MsgCompletedFallback = "Video processed successfully but fallback content was used."
)

type videoUC struct {
	cfg         *config.Config
	videoRepo   videos.Repository
	storageRepo videos.StorageRepository
	queueRepo   videos.QueueRepository
	libraryUC   library.UseCase
	compiler    videos.Compiler
	analyzer    videos.Analyzer
	logger      logger.Logger
}

func NewVideoUseCase(
	cfg *config.Config,
	videoRepo videos.Repository,
	storageRepo videos.StorageRepository,
	queueRepo videos.QueueRepository,
	libraryUC library.UseCase,
	compiler videos.Compiler,
	analyzer videos.Analyzer,
	log logger.Logger,
) videos.UseCase {
	return &videoUC{
		cfg:         cfg,
		videoRepo:   videoRepo,
		storageRepo: storageRepo,
		queueRepo:   queueRepo,
		libraryUC:   libraryUC,
		compiler:    compiler,
		analyzer:    analyzer,
		logger:      log,
	}
}

func (v *videoUC) Submit(ctx context.Context, event *models.JobEvent) error {
	if event == nil {
		return nil
	}
	if event.Type == models.EventRawUpload && !models.IsRawPath(event.Name) {
		v.logger.Infof("Ignoring object %q outside %s", event.Name, models.RawPrefix)
		return nil
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	if err := utils.ValidateStruct(ctx, event); err != nil {
		v.logger.Errorf("Submit - ValidateStruct error: %v", err)
		return fmt.Errorf("invalid event: %w", err)
	}
	if err := v.queueRepo.Enqueue(ctx, event); err != nil {
		v.logger.Errorf("Submit - Enqueue error: %v", err)
		return fmt.Errorf("failed to queue the job: %w", err)
	}
	v.logger.Infof("Queued %s event (name=%q videoId=%q)", event.Type, event.Name, event.VideoID)
	return nil
}

func (v *videoUC) ListQueue(ctx context.Context, pagination *utils.Pagination) (*models.EventList, error) {
	if pagination == nil {
		pagination = utils.NewPagination(1, 0)
	} else {
		pagination = utils.NewPagination(pagination.Page, pagination.Size)
	}
	events, err := v.queueRepo.Pending(ctx)
	if err != nil {
		v.logger.Errorf("ListQueue - Pending error: %v", err)
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	total := len(events)
	start, end := pagination.Window(total)
	return &models.EventList{
		Events:     events[start:end],
		TotalCount: total,
		TotalPages: utils.GetTotalPages(total, pagination.GetSize()),
		Page:       pagination.GetPage(),
		PageSize:   pagination.GetSize(),
		HasMore:    utils.GetHasMore(pagination.GetPage(), total, pagination.GetSize()),
	}, nil
}

// acquire takes the per-job lease and returns its release func. The lease is
// renewed in the background until released.
func (v *videoUC) acquire(ctx context.Context, identity, owner string) (func(), error) {
	ttl := v.cfg.Redis.LeaseTTL
	ok, err := v.queueRepo.AcquireLease(ctx, identity, owner, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return nil, videos.ErrJobBusy
	}
	leaseCtx := context.WithoutCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go v.keepLease(leaseCtx, identity, owner, ttl, stop, done)
	return func() {
		close(stop)
		<-done
		if err := v.queueRepo.ReleaseLease(leaseCtx, identity, owner); err != nil {
			v.logger.Warnf("release lease %s: %v", identity, err)
		}
	}, nil
}

// keepLease extends the lease every third of its TTL until stop is closed or
// the lease is found held by someone else.
func (v *videoUC) keepLease(ctx context.Context, identity, owner string, ttl time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := ttl / 3
	if interval <= 0 {
		<-stop
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			held, err := v.queueRepo.RenewLease(ctx, identity, owner, ttl)
			if err != nil {
				v.logger.Warnf("renew lease %s: %v", identity, err)
				continue
			}
			if !held {
				v.logger.Errorf("lease %s lost to another run", identity)
				return
			}
		}
	}
}

func (v *videoUC) mediaBucket(eventBucket string) string {
	if b := strings.TrimSpace(eventBucket); b != "" {
		return b
	}
	return v.cfg.S3.MediaBucket
}

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
)

const (
	defaultPollTimeout   = 5 * time.Second
	defaultCheckInterval = 10 * time.Second
)

type Worker struct {
	cfg       *config.Config
	logger    logger.Logger
	queueRepo videos.QueueRepository
	videoUC   videos.UseCase
	cpuCheck  func(maxUsage float64) (bool, float64)
	wg        sync.WaitGroup
}

func NewWorker(cfg *config.Config, logger logger.Logger, queueRepo videos.QueueRepository, videoUC videos.UseCase) *Worker {
	return &Worker{
		cfg:       cfg,
		logger:    logger,
		queueRepo: queueRepo,
		videoUC:   videoUC,
		cpuCheck:  utils.CheckCPUUsage,
	}
}

// Start launches WorkerCount consumers. They stop once ctx is cancelled and
// their current job has finished.
func (w *Worker) Start(ctx context.Context) {
	count := max(w.cfg.Worker.WorkerCount, 1)
	w.logger.Infof("Starting %d worker(s)", count)
	for i := range count {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	log := w.logger.With("worker", id)
	for {
		if ctx.Err() != nil {
			log.Infof("Worker stopped")
			return
		}
		if ok, usage := w.cpuCheck(w.cfg.Worker.MaxCPUUsage); !ok {
			log.Infof("CPU usage %.2f%% too high, waiting...", usage)
			sleep(ctx, w.checkInterval())
			continue
		}

		event, err := w.queueRepo.Dequeue(ctx, w.pollTimeout())
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Errorf("Dequeue error: %v", err)
			sleep(ctx, w.checkInterval())
			continue
		}
		if event == nil {
			continue
		}
		w.handle(ctx, log, event)
	}
}

// handle dispatches one event. A started job runs to completion even when ctx
// is cancelled; ctx only shortens the busy requeue delay. A job held by
// another run goes back on the queue after BusyRequeueDelay.
func (w *Worker) handle(ctx context.Context, log logger.Logger, event *models.JobEvent) {
	jobCtx := context.WithoutCancel(ctx)
	var err error
	switch event.Type {
	case models.EventRawUpload:
		err = w.videoUC.RunJob(jobCtx, event)
	case models.EventRestitch:
		err = w.videoUC.Restitch(jobCtx, event.VideoID)
	default:
		log.Warnf("Dropping event of unknown type %q", event.Type)
		return
	}
	if err == nil {
		return
	}
	if errors.Is(err, videos.ErrJobBusy) {
		log.Infof("%s event (name=%q videoId=%q) is busy, requeueing in %s", event.Type, event.Name, event.VideoID, w.cfg.Worker.BusyRequeueDelay)
		sleep(ctx, w.cfg.Worker.BusyRequeueDelay)
		if err = w.queueRepo.Enqueue(jobCtx, event); err != nil {
			log.Errorf("Requeue error: %v", err)
		}
		return
	}
	log.Errorf("%s event failed: %v", event.Type, err)
}

func (w *Worker) pollTimeout() time.Duration {
	if w.cfg.Worker.PollTimeout > 0 {
		return w.cfg.Worker.PollTimeout
	}
	return defaultPollTimeout
}

func (w *Worker) checkInterval() time.Duration {
	if w.cfg.Worker.CheckInterval > 0 {
		return w.cfg.Worker.CheckInterval
	}
	return defaultCheckInterval
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

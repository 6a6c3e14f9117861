package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/library"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/stitcher"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// jobFailure ends a run with a user-facing message.
type jobFailure struct {
	message string
	err     error
}

func (f *jobFailure) Error() string {
	if f.err == nil {
		return f.message
	}
	return f.message + ": " + f.err.Error()
}

func (f *jobFailure) Unwrap() error {
	return f.err
}

func failWith(message string, err error) error {
	return &jobFailure{message: message, err: err}
}

type assets struct {
	intro string
	outro string
	raw   string
	clips []string
}

// segments returns the stitch order, leaving out bracketing assets that did
// not materialize.
func (a *assets) segments() []string {
	out := make([]string, 0, len(a.clips)+3)
	if a.intro != "" {
		out = append(out, a.intro)
	}
	out = append(out, a.raw)
	out = append(out, a.clips...)
	if a.outro != "" {
		out = append(out, a.outro)
	}
	return out
}

func (v *videoUC) RunJob(ctx context.Context, event *models.JobEvent) error {
	rawPath := strings.TrimSpace(event.Name)
	if !models.IsRawPath(rawPath) {
		v.logger.Debugf("Ignoring object %q outside %s", rawPath, models.RawPrefix)
		return nil
	}
	bucket := v.mediaBucket(event.Bucket)
	if _, err := v.videoRepo.EnsureJob(ctx, rawPath, strings.TrimSpace(event.Bucket)); err != nil {
		return fmt.Errorf("ensure job: %w", err)
	}
	runID := uuid.NewString()
	log := v.logger.With("videoId", models.VideoIDFromRawPath(rawPath), "runId", runID)

	release, err := v.acquire(ctx, rawPath, runID)
	if err != nil {
		return err
	}
	defer release()

	ws := newWorkspace(v.cfg.Worker.TempDir, runID)
	defer ws.cleanup(log)

	log.Infof("Job start: %s", rawPath)
	result, message, runErr := v.runStages(ctx, log, rawPath, bucket, ws)
	// Terminal writes must land even when the worker is shutting down.
	writeCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		return v.recordFailure(writeCtx, log, rawPath, runErr)
	}
	if err = v.videoRepo.CompleteJob(writeCtx, rawPath, message, result); err != nil {
		log.Errorf("CompleteJob error: %v", err)
		return fmt.Errorf("record completion: %w", err)
	}
	log.Infof("Job complete: %s", message)
	return nil
}

func (v *videoUC) runStages(
	ctx context.Context,
	log logger.Logger,
	rawPath, bucket string,
	ws *workspace,
) (result *models.JobResult, message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err = ws.prepare(); err != nil {
		return nil, "", fmt.Errorf("prepare workspace: %w", err)
	}

	log.Infof("Stage %s", models.StageDownloading)
	if err = v.videoRepo.UpdateStatus(ctx, rawPath, models.JobStatusProcessing, MsgDownloading); err != nil {
		return nil, "", fmt.Errorf("update status: %w", err)
	}
	in, err := v.download(ctx, log, ws, rawPath, bucket, nil)
	if err != nil {
		return nil, "", err
	}

	v.progress(ctx, log, rawPath, models.StageAnalyzing, MsgAnalyzing)
	framePath, transcript, err := v.extractSignals(ctx, log, ws, in.raw)
	if err != nil {
		return nil, "", err
	}
	analysis, err := v.analyzer.Analyze(ctx, transcript, framePath)
	if err != nil {
		return nil, "", fmt.Errorf("analyze: %w", err)
	}
	if len(analysis.Issues) == 0 {
		return nil, "", failWith(MsgNoIssues, nil)
	}
	if analysis.Unrelated() {
		return nil, "", failWith(MsgUnrelatedIssues, nil)
	}
	log.Infof("Detected %d issue(s)", len(analysis.Issues))

	v.progress(ctx, log, rawPath, models.StageMatching, MsgMatching)
	resolution, err := v.libraryUC.Match(ctx, analysis.Issues)
	if resolution != nil && len(resolution.Pairings) > 0 {
		if auditErr := v.videoRepo.RecordMatches(ctx, rawPath, resolution.Pairings); auditErr != nil {
			log.Warnf("RecordMatches error: %v", auditErr)
		}
	}
	if err != nil {
		if errors.Is(err, library.ErrFocusLimitExceeded) {
			return nil, "", failWith(MsgFocusLimit, err)
		}
		return nil, "", fmt.Errorf("match: %w", err)
	}
	if len(resolution.Matches) == 0 {
		return nil, "", failWith(MsgNoContent, nil)
	}
	match := resolution.Matches[0]
	log.Infof("Selected clip %q at %s", match.Title, match.Location)

	v.progress(ctx, log, rawPath, models.StageStitching, MsgStitching)
	clipPath := ws.path("edu" + extOr(match.Location, ".mp4"))
	if err = v.storageRepo.DownloadFile(ctx, match.Location, clipPath, v.cfg.S3.LibraryBucket); err != nil {
		return nil, "", fmt.Errorf("download clip: %w", err)
	}
	in.clips = []string{clipPath}
	output := ws.path("final.mp4")
	if _, err = v.compiler.Stitch(ctx, in.segments(), output); err != nil {
		return nil, "", fmt.Errorf("stitch: %w", err)
	}

	v.progress(ctx, log, rawPath, models.StageUploading, MsgUploading)
	thumbnailPath := models.ThumbnailPath(rawPath, "")
	processedPath := models.ProcessedPath(rawPath, "")
	if err = v.storageRepo.UploadFile(ctx, bucket, thumbnailPath, framePath); err != nil {
		return nil, "", fmt.Errorf("upload thumbnail: %w", err)
	}
	if err = v.storageRepo.UploadFile(ctx, bucket, processedPath, output); err != nil {
		return nil, "", fmt.Errorf("upload output: %w", err)
	}

	message = MsgCompleted
	if match.IsFallback() {
		message = MsgCompletedFallback
	}
	log.Infof("Stage %s", models.StageCompleted)
	return &models.JobResult{
		StitchedPath:  processedPath,
		ThumbnailPath: thumbnailPath,
		Transcription: transcript,
		Issues:        analysis.Issues,
	}, message, nil
}

// safeGo runs fn on g and turns a panic into the group's error.
func safeGo(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	})
}

// download fetches bracketing assets, the raw media and any clips
// concurrently. Intro and outro are optional.
func (v *videoUC) download(
	ctx context.Context,
	log logger.Logger,
	ws *workspace,
	rawPath, bucket string,
	clipLocations []string,
) (*assets, error) {
	in := &assets{clips: make([]string, len(clipLocations))}
	g, gctx := errgroup.WithContext(ctx)

	optional := func(location, dst string, target *string) {
		if strings.TrimSpace(location) == "" {
			return
		}
		safeGo(g, func() error {
			if err := v.storageRepo.DownloadFile(gctx, location, dst, v.cfg.S3.MediaBucket); err != nil {
				log.Warnf("Continuing without %s: %v", location, err)
				return nil
			}
			*target = dst
			return nil
		})
	}
	optional(v.cfg.Pipeline.IntroPath, ws.path("intro"+extOr(v.cfg.Pipeline.IntroPath, ".mp4")), &in.intro)
	optional(v.cfg.Pipeline.OutroPath, ws.path("outro"+extOr(v.cfg.Pipeline.OutroPath, ".mp4")), &in.outro)

	rawLocal := ws.path("raw" + extOr(rawPath, ".mp4"))
	safeGo(g, func() error {
		if err := v.storageRepo.DownloadFile(gctx, rawPath, rawLocal, bucket); err != nil {
			return fmt.Errorf("download raw media: %w", err)
		}
		in.raw = rawLocal
		return nil
	})
	for i, location := range clipLocations {
		dst := ws.path(fmt.Sprintf("clip_%d%s", i, extOr(location, ".mp4")))
		safeGo(g, func() error {
			if err := v.storageRepo.DownloadFile(gctx, location, dst, v.cfg.S3.LibraryBucket); err != nil {
				return fmt.Errorf("download clip %s: %w", location, err)
			}
			in.clips[i] = dst
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// extractSignals pulls the still frame and the transcript out of the raw media
// concurrently. A failed transcription degrades to an empty transcript.
func (v *videoUC) extractSignals(
	ctx context.Context,
	log logger.Logger,
	ws *workspace,
	rawLocal string,
) (string, string, error) {
	framePath := ws.path("frame.jpg")
	audioPath := ws.path("audio.mp3")
	var transcript string

	g, gctx := errgroup.WithContext(ctx)
	safeGo(g, func() error {
		if err := v.compiler.ExtractFrame(gctx, rawLocal, framePath, v.cfg.Pipeline.FrameOffsetRatio); err != nil {
			return fmt.Errorf("extract frame: %w", err)
		}
		return nil
	})
	safeGo(g, func() error {
		if err := v.compiler.ExtractAudio(gctx, rawLocal, audioPath); err != nil {
			log.Warnf("Audio extraction failed, continuing without speech: %v", err)
			return nil
		}
		text, err := v.analyzer.Transcribe(gctx, audioPath)
		if err != nil {
			log.Warnf("Transcription failed, continuing without speech: %v", err)
			return nil
		}
		transcript = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return framePath, transcript, nil
}

func (v *videoUC) progress(ctx context.Context, log logger.Logger, rawPath string, stage models.Stage, message string) {
	log.Infof("Stage %s", stage)
	if err := v.videoRepo.UpdateStatus(ctx, rawPath, models.JobStatusProcessing, message); err != nil {
		log.Warnf("progress update failed: %v", err)
	}
}

// recordFailure persists a failed status. Internal errors never reach the
// user-facing message.
func (v *videoUC) recordFailure(ctx context.Context, log logger.Logger, rawPath string, err error) error {
	message := MsgInternalError
	var failure *jobFailure
	var encErr *stitcher.EncodeError
	switch {
	case errors.As(err, &failure):
		message = failure.message
		log.Warnf("Job failed: %v", err)
	case errors.As(err, &encErr):
		log.Errorf("Job failed: %v\n%s", err, encErr.Diagnostic())
	default:
		log.Errorf("Job failed: %v", err)
	}
	if werr := v.videoRepo.UpdateStatus(ctx, rawPath, models.JobStatusFailed, message); werr != nil {
		log.Errorf("UpdateStatus error: %v", werr)
		return fmt.Errorf("record failure: %w", werr)
	}
	return nil
}

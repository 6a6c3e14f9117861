package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/stitcher"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/google/uuid"
)

// Restitch rebuilds a job's output from its blueprint. It never changes the
// job's status; success only refreshes the artifact paths and updated_at.
func (v *videoUC) Restitch(ctx context.Context, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil
	}
	job, err := v.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			v.logger.Warnf("Restitch: no video with id %s", videoID)
			return nil
		}
		return fmt.Errorf("restitch load job: %w", err)
	}
	entries, err := v.videoRepo.LoadBlueprint(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("restitch load blueprint: %w", err)
	}
	clips := blueprintLocations(entries)
	if len(clips) == 0 {
		v.logger.Infof("Restitch: no blueprint entries for video %s", videoID)
		return nil
	}

	runID := uuid.NewString()
	log := v.logger.With("videoId", videoID, "runId", runID)
	release, err := v.acquire(ctx, job.RawVideoPath, runID)
	if err != nil {
		return err
	}
	defer release()

	ws := newWorkspace(v.cfg.Worker.TempDir, runID)
	defer ws.cleanup(log)

	log.Infof("Restitch start: %s with %d clip(s)", job.RawVideoPath, len(clips))
	if err = v.restitch(ctx, log, ws, job.RawVideoPath, v.mediaBucket(job.MediaBucket.String), clips); err != nil {
		var encErr *stitcher.EncodeError
		if errors.As(err, &encErr) {
			log.Errorf("Restitch failed: %v\n%s", err, encErr.Diagnostic())
		} else {
			log.Errorf("Restitch failed: %v", err)
		}
		return fmt.Errorf("restitch %s: %w", videoID, err)
	}
	log.Infof("Restitch complete")
	return nil
}

// restitch reads and writes media in the bucket the raw upload arrived in.
func (v *videoUC) restitch(ctx context.Context, log logger.Logger, ws *workspace, rawPath, bucket string, clips []string) error {
	if err := ws.prepare(); err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}
	in, err := v.download(ctx, log, ws, rawPath, bucket, clips)
	if err != nil {
		return err
	}

	output := ws.path("final.mp4")
	if _, err = v.compiler.Stitch(ctx, in.segments(), output); err != nil {
		return fmt.Errorf("stitch: %w", err)
	}
	framePath := ws.path("frame.jpg")
	if err = v.compiler.ExtractFrame(ctx, in.raw, framePath, v.cfg.Pipeline.FrameOffsetRatio); err != nil {
		return fmt.Errorf("extract frame: %w", err)
	}

	thumbnailPath := models.ThumbnailPath(rawPath, models.RestitchSuffix)
	processedPath := models.ProcessedPath(rawPath, models.RestitchSuffix)
	if err = v.storageRepo.UploadFile(ctx, bucket, thumbnailPath, framePath); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	if err = v.storageRepo.UploadFile(ctx, bucket, processedPath, output); err != nil {
		return fmt.Errorf("upload output: %w", err)
	}
	if err = v.videoRepo.TouchRestitch(context.WithoutCancel(ctx), rawPath, processedPath, thumbnailPath); err != nil {
		return fmt.Errorf("touch job: %w", err)
	}
	return nil
}

// blueprintLocations returns the distinct clip locations of a blueprint in
// position order.
func blueprintLocations(entries []models.BlueprintEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		loc := strings.TrimSpace(e.Location)
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}

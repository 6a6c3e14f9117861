package repository

import (
	"context"
	"encoding/json"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/jackc/pgtype"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var errNoVideoRow = errors.New("no video row for raw path")

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videos.Repository {
	return &videoRepo{db: db}
}

func (v *videoRepo) GetByID(ctx context.Context, videoID string) (*models.VideoJob, error) {
	job := &models.VideoJob{}
	if err := v.db.QueryRowxContext(ctx, getVideoByIDQuery, videoID).StructScan(job); err != nil {
		return nil, errors.Wrap(err, "videoRepo.GetByID.StructScan")
	}
	return job, nil
}

// EnsureJob creates the record for a raw path on first sight. An existing
// record keeps its status; a non-empty bucket replaces the stored one.
func (v *videoRepo) EnsureJob(ctx context.Context, rawPath, bucket string) (*models.VideoJob, error) {
	job := &models.VideoJob{}
	if err := v.db.QueryRowxContext(ctx, ensureVideoQuery, rawPath, bucket, models.JobStatusProcessing).StructScan(job); err != nil {
		return nil, errors.Wrap(err, "videoRepo.EnsureJob.StructScan")
	}
	return job, nil
}

func (v *videoRepo) UpdateStatus(ctx context.Context, rawPath string, status models.JobStatus, message string) error {
	if _, err := v.db.ExecContext(ctx, updateStatusQuery, status, message, rawPath); err != nil {
		return errors.Wrap(err, "videoRepo.UpdateStatus.ExecContext")
	}
	return nil
}

func (v *videoRepo) CompleteJob(ctx context.Context, rawPath string, message string, result *models.JobResult) error {
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return errors.Wrap(err, "videoRepo.CompleteJob.Marshal")
	}
	if _, err = v.db.ExecContext(
		ctx,
		completeJobQuery,
		models.JobStatusCompleted,
		message,
		result.StitchedPath,
		result.ThumbnailPath,
		result.Transcription,
		string(issues),
		rawPath,
	); err != nil {
		return errors.Wrap(err, "videoRepo.CompleteJob.ExecContext")
	}
	return nil
}

func (v *videoRepo) TouchRestitch(ctx context.Context, rawPath, stitchedPath, thumbnailPath string) error {
	if _, err := v.db.ExecContext(ctx, touchRestitchQuery, stitchedPath, thumbnailPath, rawPath); err != nil {
		return errors.Wrap(err, "videoRepo.TouchRestitch.ExecContext")
	}
	return nil
}

// RecordMatches replaces the audit trail of a job with one row per pairing.
func (v *videoRepo) RecordMatches(ctx context.Context, rawPath string, pairings []models.Match) error {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "videoRepo.RecordMatches.BeginTxx")
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteMatchesQuery, rawPath); err != nil {
		return errors.Wrap(err, "videoRepo.RecordMatches.Delete")
	}
	for i, m := range pairings {
		var keywords pgtype.TextArray
		if err = keywords.Set(m.Keywords); err != nil {
			return errors.Wrap(err, "videoRepo.RecordMatches.Keywords.Set")
		}
		res, err := tx.ExecContext(ctx, insertMatchQuery, rawPath, i, m.Problem, string(m.Category), keywords, m.ClipID, m.Location)
		if err != nil {
			return errors.Wrap(err, "videoRepo.RecordMatches.Insert")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.Wrap(errNoVideoRow, rawPath)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "videoRepo.RecordMatches.Commit")
	}
	return nil
}

func (v *videoRepo) LoadBlueprint(ctx context.Context, videoID string) ([]models.BlueprintEntry, error) {
	entries := make([]models.BlueprintEntry, 0)
	if err := v.db.SelectContext(ctx, &entries, loadBlueprintQuery, videoID); err != nil {
		return nil, errors.Wrap(err, "videoRepo.LoadBlueprint.SelectContext")
	}
	return entries, nil
}

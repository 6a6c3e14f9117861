package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/library"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/jackc/pgtype"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type libraryRepo struct {
	db *sqlx.DB
}

func NewLibraryRepo(db *sqlx.DB) library.Repository {
	return &libraryRepo{db: db}
}

type clipRow struct {
	ID        int64            `db:"id"`
	Title     string           `db:"title"`
	Location  string           `db:"video_url"`
	Keywords  pgtype.TextArray `db:"keywords"`
	Category  sql.NullString   `db:"category"`
	Active    bool             `db:"is_active"`
	CreatedAt time.Time        `db:"created_at"`
}

func (r *clipRow) toModel() (*models.ClipReference, error) {
	var keywords []string
	if err := r.Keywords.AssignTo(&keywords); err != nil {
		return nil, errors.Wrap(err, "clipRow.Keywords.AssignTo")
	}
	return &models.ClipReference{
		ID:        r.ID,
		Title:     r.Title,
		Location:  r.Location,
		Keywords:  keywords,
		Category:  r.Category.String,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (l *libraryRepo) ListActive(ctx context.Context) ([]*models.ClipReference, error) {
	rows, err := l.db.QueryxContext(ctx, listActiveClipsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "libraryRepo.ListActive.QueryxContext")
	}
	defer rows.Close()

	clips := make([]*models.ClipReference, 0)
	for rows.Next() {
		var row clipRow
		if err = rows.StructScan(&row); err != nil {
			return nil, errors.Wrap(err, "libraryRepo.ListActive.StructScan")
		}
		clip, err := row.toModel()
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "libraryRepo.ListActive.rows.Err")
	}
	return clips, nil
}

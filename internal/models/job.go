package models

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// VideoJob is the durable record of one diagnostic video, keyed by its raw path.
type VideoJob struct {
	ID                string         `json:"id" db:"id"`
	RawVideoPath      string         `json:"raw_video_path" db:"raw_video_path"`
	MediaBucket       sql.NullString `json:"media_bucket" db:"media_bucket"`
	Status            JobStatus      `json:"status" db:"status"`
	Message           sql.NullString `json:"message" db:"message"`
	StitchedVideoURL  sql.NullString `json:"stitched_video_url" db:"stitched_video_url"`
	ThumbnailURL      sql.NullString `json:"thumbnail_url" db:"thumbnail_url"`
	TranscriptionText sql.NullString `json:"transcription_text" db:"transcription_text"`
	DetectedKeywords  sql.NullString `json:"detected_keywords" db:"detected_keywords"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// JobResult is what a completed run writes back onto the job record.
type JobResult struct {
	StitchedPath  string
	ThumbnailPath string
	Transcription string
	Issues        []Issue
}

// Stage names one step of the processing state machine.
type Stage string

const (
	StageDownloading Stage = "downloading"
	StageAnalyzing   Stage = "analyzing"
	StageMatching    Stage = "matching"
	StageStitching   Stage = "stitching"
	StageUploading   Stage = "uploading"
	StageCompleted   Stage = "completed"
)

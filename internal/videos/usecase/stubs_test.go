package usecase

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/stitcher"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type statusWrite struct {
	status  models.JobStatus
	message string
}

type stubVideoRepo struct {
	mu        sync.Mutex
	jobs      map[string]*models.VideoJob
	blueprint []models.BlueprintEntry
	statuses  []statusWrite
	completed *models.JobResult
	doneMsg   string
	touched   []string
	audit     []models.Match
	created   []string
	ensureErr error
}

func (s *stubVideoRepo) GetByID(ctx context.Context, videoID string) (*models.VideoJob, error) {
	if job, ok := s.jobs[videoID]; ok {
		return job, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubVideoRepo) EnsureJob(ctx context.Context, rawPath, bucket string) (*models.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureErr != nil {
		return nil, s.ensureErr
	}
	for _, job := range s.jobs {
		if job.RawVideoPath == rawPath {
			if bucket != "" {
				job.MediaBucket = sql.NullString{String: bucket, Valid: true}
			}
			return job, nil
		}
	}
	id := strconv.Itoa(len(s.jobs) + 1)
	job := &models.VideoJob{ID: id, RawVideoPath: rawPath, Status: models.JobStatusProcessing}
	if bucket != "" {
		job.MediaBucket = sql.NullString{String: bucket, Valid: true}
	}
	s.jobs[id] = job
	s.created = append(s.created, rawPath)
	return job, nil
}

func (s *stubVideoRepo) UpdateStatus(ctx context.Context, rawPath string, status models.JobStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, statusWrite{status: status, message: message})
	return nil
}

func (s *stubVideoRepo) CompleteJob(ctx context.Context, rawPath string, message string, result *models.JobResult) error {
	s.completed = result
	s.doneMsg = message
	return nil
}

func (s *stubVideoRepo) TouchRestitch(ctx context.Context, rawPath, stitchedPath, thumbnailPath string) error {
	s.touched = append(s.touched, rawPath, stitchedPath, thumbnailPath)
	return nil
}

func (s *stubVideoRepo) RecordMatches(ctx context.Context, rawPath string, pairings []models.Match) error {
	s.audit = append(s.audit, pairings...)
	return nil
}

func (s *stubVideoRepo) LoadBlueprint(ctx context.Context, videoID string) ([]models.BlueprintEntry, error) {
	return s.blueprint, nil
}

func (s *stubVideoRepo) last() statusWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return statusWrite{}
	}
	return s.statuses[len(s.statuses)-1]
}

type upload struct {
	bucket string
	key    string
}

type stubStorage struct {
	mu        sync.Mutex
	missing   map[string]bool
	downloads map[string]string
	uploads   []upload
}

func (s *stubStorage) PutObject(ctx context.Context, input models.UploadInput) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (s *stubStorage) GetObject(ctx context.Context, bucket, key string) (*s3.GetObjectOutput, error) {
	return nil, errors.New("not implemented")
}

func (s *stubStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	return nil, nil
}

func (s *stubStorage) DownloadFile(ctx context.Context, location, localPath, defaultBucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[location] {
		return errors.New("object not found: " + location)
	}
	if s.downloads == nil {
		s.downloads = map[string]string{}
	}
	s.downloads[location] = defaultBucket
	return os.WriteFile(localPath, []byte(location), 0o600)
}

func (s *stubStorage) UploadFile(ctx context.Context, bucket, key, localPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	s.uploads = append(s.uploads, upload{bucket: bucket, key: key})
	return nil
}

type stubQueue struct {
	mu       sync.Mutex
	events   []*models.JobEvent
	leases   map[string]string
	released []string
	renewals int
}

func (s *stubQueue) Enqueue(ctx context.Context, event *models.JobEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubQueue) Dequeue(ctx context.Context, timeout time.Duration) (*models.JobEvent, error) {
	return nil, nil
}

func (s *stubQueue) Pending(ctx context.Context) ([]*models.JobEvent, error) {
	return s.events, nil
}

func (s *stubQueue) AcquireLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leases == nil {
		s.leases = map[string]string{}
	}
	if _, held := s.leases[identity]; held {
		return false, nil
	}
	s.leases[identity] = owner
	return true, nil
}

func (s *stubQueue) RenewLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leases[identity] != owner {
		return false, nil
	}
	s.renewals++
	return true, nil
}

func (s *stubQueue) renewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renewals
}

func (s *stubQueue) ReleaseLease(ctx context.Context, identity, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leases[identity] == owner {
		delete(s.leases, identity)
	}
	s.released = append(s.released, identity)
	return nil
}

type stubMatcher struct {
	resolution *models.Resolution
	err        error
	calls      int
}

func (s *stubMatcher) Match(ctx context.Context, issues []models.Issue) (*models.Resolution, error) {
	s.calls++
	return s.resolution, s.err
}

type stubCompiler struct {
	mu          sync.Mutex
	segments    [][]string
	stitchErr   error
	stitchDelay time.Duration
	audioErr    error
	frameCalls  int
}

func (s *stubCompiler) Stitch(ctx context.Context, segments []string, output string) (*stitcher.Plan, error) {
	if s.stitchDelay > 0 {
		time.Sleep(s.stitchDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = filepath.Base(seg)
	}
	s.segments = append(s.segments, names)
	if s.stitchErr != nil {
		return nil, s.stitchErr
	}
	return &stitcher.Plan{}, os.WriteFile(output, []byte("mp4"), 0o600)
}

func (s *stubCompiler) ExtractFrame(ctx context.Context, input, output string, offsetRatio float64) error {
	s.mu.Lock()
	s.frameCalls++
	s.mu.Unlock()
	return os.WriteFile(output, []byte("jpg"), 0o600)
}

func (s *stubCompiler) ExtractAudio(ctx context.Context, input, output string) error {
	if s.audioErr != nil {
		return s.audioErr
	}
	return os.WriteFile(output, []byte("mp3"), 0o600)
}

type stubAnalyzer struct {
	transcript        string
	transcribeErr     error
	analysis          *models.Analysis
	analyzeErr        error
	panicOnCall       bool
	panicOnTranscribe bool
	gotTranscript     string
}

func (s *stubAnalyzer) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if s.panicOnTranscribe {
		panic("transcriber crashed")
	}
	return s.transcript, s.transcribeErr
}

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript, framePath string) (*models.Analysis, error) {
	if s.panicOnCall {
		panic("boom")
	}
	s.gotTranscript = transcript
	return s.analysis, s.analyzeErr
}

type fixture struct {
	cfg      *config.Config
	repo     *stubVideoRepo
	storage  *stubStorage
	queue    *stubQueue
	matcher  *stubMatcher
	compiler *stubCompiler
	analyzer *stubAnalyzer
	uc       videos.UseCase
}

func newFixture(t *testing.T) *fixture {
	cfg := &config.Config{}
	cfg.S3.MediaBucket = "media"
	cfg.S3.LibraryBucket = "library"
	cfg.Pipeline.IntroPath = "videos/intro.mp4"
	cfg.Pipeline.OutroPath = "videos/outro.mp4"
	cfg.Pipeline.FrameOffsetRatio = 0.5
	cfg.Redis.LeaseTTL = time.Minute
	cfg.Worker.TempDir = t.TempDir()

	repo := &stubVideoRepo{jobs: map[string]*models.VideoJob{
		"1": {ID: "1", RawVideoPath: "raw/abc.mp4", Status: models.JobStatusQueued},
		"2": {ID: "2", RawVideoPath: "raw/abc.mov", Status: models.JobStatusQueued},
	}}
	f := &fixture{
		cfg:      cfg,
		repo:     repo,
		storage:  &stubStorage{missing: map[string]bool{}},
		queue:    &stubQueue{},
		matcher:  &stubMatcher{},
		compiler: &stubCompiler{},
		analyzer: &stubAnalyzer{transcript: "my brakes shake"},
	}
	f.uc = NewVideoUseCase(cfg, f.repo, f.storage, f.queue, f.matcher, f.compiler, f.analyzer, logger.NewNopLogger())
	return f
}

func brakeIssue() models.Issue {
	return models.Issue{Problem: "Warped Rotors", Category: models.CategoryBrakes, Keywords: []string{"vibration", "pulsation"}}
}

func rotorMatch() models.Match {
	return models.Match{
		Problem:  "Warped Rotors",
		Category: models.CategoryBrakes,
		ClipID:   1,
		Location: "library/rotors.mp4",
		Title:    "Warped Rotors Explained",
	}
}

package videos

import (
	"context"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/stitcher"
)

type Compiler interface {
	Stitch(ctx context.Context, segments []string, output string) (*stitcher.Plan, error)
	ExtractFrame(ctx context.Context, input, output string, offsetRatio float64) error
	ExtractAudio(ctx context.Context, input, output string) error
}

type Analyzer interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Analyze(ctx context.Context, transcript, framePath string) (*models.Analysis, error)
}

package stitcher

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/dustin/go-humanize"
)

// Stitcher compiles segments into one normalized MP4 and extracts the stills
// and audio the analyzer needs. It shells out to ffmpeg and ffprobe.
type Stitcher struct {
	cfg         config.StitchConfig
	ffmpegPath  string
	ffprobePath string
	runner      commandRunner
	stat        func(name string) (os.FileInfo, error)
	logger      logger.Logger
}

func NewStitcher(cfg *config.Config, log logger.Logger) *Stitcher {
	return &Stitcher{
		cfg:         cfg.Stitch,
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
		stat:        os.Stat,
		logger:      log,
	}
}

// Stitch concatenates segments in order into output and returns the plan used.
func (s *Stitcher) Stitch(ctx context.Context, segments []string, output string) (*Plan, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	probed := make([]Segment, 0, len(segments))
	for _, path := range segments {
		fi, err := s.stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat segment %s: %w", path, err)
		}
		info, err := s.Probe(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe segment %s: %w", path, err)
		}
		if !info.HasVideo {
			return nil, fmt.Errorf("segment %s has no video stream", path)
		}
		if !info.HasAudio && info.Duration <= 0 {
			if info.Duration, err = s.PacketDuration(ctx, path); err != nil {
				return nil, fmt.Errorf("measure segment %s: %w", path, err)
			}
		}
		probed = append(probed, Segment{
			Path:     path,
			Size:     fi.Size(),
			Duration: info.Duration,
			HasAudio: info.HasAudio,
		})
	}

	plan, err := BuildPlan(s.cfg, probed)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Stitching %d segments (%s total) using %s regime, preset %s crf %d",
		len(plan.Segments), humanize.IBytes(uint64(plan.TotalBytes)), plan.Regime, plan.Profile.Preset, plan.Profile.CRF)

	if _, err := run(ctx, s.runner, s.ffmpegPath, plan.Args(output)); err != nil {
		return nil, err
	}
	return plan, nil
}

// ExtractFrame writes one JPEG still taken at offsetRatio of the input's duration.
func (s *Stitcher) ExtractFrame(ctx context.Context, input, output string, offsetRatio float64) error {
	info, err := s.Probe(ctx, input)
	if err != nil {
		return err
	}
	offset := info.Duration * offsetRatio
	args := []string{
		"-hide_banner", "-y",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-i", input,
		"-frames:v", "1",
		"-q:v", "2",
		output,
	}
	_, err = run(ctx, s.runner, s.ffmpegPath, args)
	return err
}

// ExtractAudio downmixes the input's audio to a small mono MP3 suited to speech
// recognition.
func (s *Stitcher) ExtractAudio(ctx context.Context, input, output string) error {
	args := []string{
		"-hide_banner", "-y",
		"-i", input,
		"-vn",
		"-c:a", "libmp3lame",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "32k",
		output,
	}
	_, err := run(ctx, s.runner, s.ffmpegPath, args)
	return err
}

package stitcher

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available: %v", bin, err)
		}
	}
}

func makeClip(t *testing.T, ctx context.Context, path, size string, seconds int, withAudio bool) {
	t.Helper()
	args := []string{"-hide_banner", "-y",
		"-f", "lavfi", "-i", "testsrc=size=" + size + ":rate=25:duration=" + strconv.Itoa(seconds)}
	if withAudio {
		args = append(args, "-f", "lavfi", "-i", "sine=frequency=440:sample_rate=22050:duration="+strconv.Itoa(seconds))
	}
	args = append(args, "-c:v", "libx264", "-preset", "ultrafast", "-pix_fmt", "yuv420p")
	if withAudio {
		args = append(args, "-c:a", "aac", "-ac", "1")
	}
	args = append(args, "-shortest", path)
	if out, err := exec.CommandContext(ctx, "ffmpeg", args...).CombinedOutput(); err != nil {
		t.Fatalf("generate %s: %v\n%s", path, err, out)
	}
}

func TestStitchIntegration(t *testing.T) {
	requireFFmpeg(t)
	if testing.Short() {
		t.Skip("skipping ffmpeg integration in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.mp4")
	clip := filepath.Join(dir, "clip.mp4")
	makeClip(t, ctx, raw, "640x480", 2, true)
	makeClip(t, ctx, clip, "320x240", 1, false)

	cfg := &config.Config{Stitch: testStitchConfig()}
	cfg.Stitch.Quality.Preset = "ultrafast"
	s := NewStitcher(cfg, logger.NewNopLogger())

	out := filepath.Join(dir, "out.mp4")
	plan, err := s.Stitch(ctx, []string{raw, clip}, out)
	if err != nil {
		if encErr, ok := err.(*EncodeError); ok {
			t.Fatalf("stitch failed: %v\n%s", err, encErr.Diagnostic())
		}
		t.Fatalf("stitch failed: %v", err)
	}
	if plan.Regime != RegimeQuality {
		t.Fatalf("expected quality regime for tiny inputs, got %s", plan.Regime)
	}

	res, err := s.runner.Run(ctx, "ffprobe", probeArgs(out)...)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	probe, err := parseProbe([]byte(res.Stdout))
	if err != nil {
		t.Fatalf("parse output probe: %v", err)
	}
	if probe.VideoStreams != 1 || probe.AudioStreams != 1 {
		t.Fatalf("expected one video and one audio stream: %+v", probe)
	}
	if probe.Width != 1280 || probe.Height != 720 {
		t.Fatalf("expected 1280x720 canvas, got %dx%d", probe.Width, probe.Height)
	}
	var inputs float64
	for _, seg := range plan.Segments {
		inputs += seg.Duration
	}
	if probe.Duration > inputs+0.1 {
		t.Fatalf("output %.2fs longer than inputs %.2fs", probe.Duration, inputs)
	}
}

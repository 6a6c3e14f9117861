package stitcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
)

func testStitchConfig() config.StitchConfig {
	return config.StitchConfig{
		Width:              1280,
		Height:             720,
		FrameRate:          30,
		PixelFormat:        "yuv420p",
		SampleRate:         44100,
		ChannelLayout:      "stereo",
		VideoCodec:         "libx264",
		AudioCodec:         "aac",
		SizeThresholdBytes: 95 * 1024 * 1024,
		Quality: config.EncodeProfile{
			Preset:       "veryfast",
			CRF:          23,
			AudioBitrate: "128k",
		},
		Compact: config.EncodeProfile{
			Preset:       "medium",
			CRF:          28,
			MaxBitrate:   "2500k",
			BufferSize:   "5000k",
			AudioBitrate: "96k",
		},
	}
}

func TestBuildPlan_Empty(t *testing.T) {
	if _, err := BuildPlan(testStitchConfig(), nil); !errors.Is(err, ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", err)
	}
}

func TestBuildPlan_SilentSegmentNeedsDuration(t *testing.T) {
	_, err := BuildPlan(testStitchConfig(), []Segment{
		{Path: "raw.mp4", Size: 1, Duration: 3, HasAudio: true},
		{Path: "clip.webm", Size: 1, Duration: 0, HasAudio: false},
	})
	if !errors.Is(err, ErrUnknownDuration) {
		t.Fatalf("expected ErrUnknownDuration, got %v", err)
	}

	plan, err := BuildPlan(testStitchConfig(), []Segment{{Path: "raw.webm", Size: 1, HasAudio: true}})
	if err != nil {
		t.Fatalf("segment with its own audio needs no duration: %v", err)
	}
	if strings.Contains(plan.FilterGraph(), "atrim=duration=0") {
		t.Fatalf("graph must never carry an unbounded silent track:\n%s", plan.FilterGraph())
	}
}

func TestBuildPlan_Regimes(t *testing.T) {
	cfg := testStitchConfig()
	tests := []struct {
		name   string
		sizes  []int64
		regime Regime
		preset string
	}{
		{"small", []int64{10 << 20, 20 << 20}, RegimeQuality, "veryfast"},
		{"just below", []int64{cfg.SizeThresholdBytes - 1}, RegimeQuality, "veryfast"},
		{"at threshold", []int64{cfg.SizeThresholdBytes - 100, 100}, RegimeCompact, "medium"},
		{"large", []int64{80 << 20, 80 << 20}, RegimeCompact, "medium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := make([]Segment, len(tt.sizes))
			for i, size := range tt.sizes {
				segments[i] = Segment{Path: "seg.mp4", Size: size, HasAudio: true}
			}
			plan, err := BuildPlan(cfg, segments)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Regime != tt.regime || plan.Profile.Preset != tt.preset {
				t.Fatalf("got %s/%s, want %s/%s", plan.Regime, plan.Profile.Preset, tt.regime, tt.preset)
			}
		})
	}
}

func TestPlanArgs_QualityRegime(t *testing.T) {
	plan, err := BuildPlan(testStitchConfig(), []Segment{
		{Path: "intro.mp4", Size: 1 << 20, Duration: 3, HasAudio: true},
		{Path: "raw.mov", Size: 5 << 20, Duration: 20, HasAudio: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(plan.Args("out.mp4"), " ")

	for _, want := range []string{
		"-i intro.mp4 -i raw.mov",
		"-map [v] -map [a]",
		"-c:v libx264 -preset veryfast -crf 23",
		"-c:a aac -b:a 128k",
		"-shortest",
		"-movflags +faststart out.mp4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("args missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "-maxrate") {
		t.Errorf("quality regime must not cap bitrate: %s", got)
	}
}

func TestPlanArgs_CompactRegime(t *testing.T) {
	cfg := testStitchConfig()
	plan, err := BuildPlan(cfg, []Segment{
		{Path: "raw.mp4", Size: cfg.SizeThresholdBytes, Duration: 60, HasAudio: true},
		{Path: "clip.mp4", Size: 1, Duration: 30, HasAudio: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(plan.Args("out.mp4"), " ")
	for _, want := range []string{
		"-preset medium -crf 28",
		"-maxrate 2500k -bufsize 5000k",
		"-b:a 96k",
		"-movflags +faststart",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("args missing %q:\n%s", want, got)
		}
	}
}

func TestPlanFilterGraph(t *testing.T) {
	plan, err := BuildPlan(testStitchConfig(), []Segment{
		{Path: "a.mp4", Size: 1, Duration: 3, HasAudio: true},
		{Path: "b.mp4", Size: 1, Duration: 4.5, HasAudio: false},
		{Path: "c.mp4", Size: 1, Duration: 2, HasAudio: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	graph := plan.FilterGraph()

	want := "[0:v]scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=30,format=yuv420p[v0]"
	if !strings.Contains(graph, want) {
		t.Errorf("graph missing video normalization %q:\n%s", want, graph)
	}
	if !strings.Contains(graph, "[0:a]aresample=44100,aformat=sample_rates=44100:channel_layouts=stereo[a0]") {
		t.Errorf("graph missing audio normalization:\n%s", graph)
	}
	if !strings.Contains(graph, "anullsrc=r=44100:cl=stereo,atrim=duration=4.500[a1]") {
		t.Errorf("silent segment must get a generated track:\n%s", graph)
	}
	if strings.Contains(graph, "[1:a]") {
		t.Errorf("graph references missing audio stream:\n%s", graph)
	}
	if !strings.HasSuffix(graph, "[v0][a0][v1][a1][v2][a2]concat=n=3:v=1:a=1[v][a]") {
		t.Errorf("unexpected concat stage:\n%s", graph)
	}
}

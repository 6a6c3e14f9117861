package stitcher

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []call
	probes  map[string]string
	packets map[string]string
	fail    map[string]commandResult
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if name == "ffprobe" {
		path := args[len(args)-1]
		if slices.Contains(args, "-show_entries") {
			return commandResult{Stdout: f.packets[path]}, nil
		}
		out, ok := f.probes[path]
		if !ok {
			return commandResult{Stderr: path + ": No such file", ExitCode: 1}, errors.New("exit status 1")
		}
		return commandResult{Stdout: out}, nil
	}
	if res, ok := f.fail[name]; ok {
		return res, errors.New("exit status 1")
	}
	return commandResult{}, nil
}

type fakeFileInfo struct {
	os.FileInfo
	size int64
}

func (f fakeFileInfo) Size() int64 { return f.size }

const (
	probeWithAudio = `{"streams":[{"codec_type":"video","width":1920,"height":1080},{"codec_type":"audio"}],"format":{"duration":"12.5"}}`
	probeSilent    = `{"streams":[{"codec_type":"video","width":640,"height":480}],"format":{"duration":"4"}}`
	probeAudioOnly = `{"streams":[{"codec_type":"audio"}],"format":{"duration":"4"}}`
	probeNoLength  = `{"streams":[{"codec_type":"video","width":640,"height":480}],"format":{}}`
	probeWebM      = `{"streams":[{"codec_type":"video","width":640,"height":480,"tags":{"DURATION":"00:01:02.500000000"}}],"format":{}}`
)

func newTestStitcher(r *fakeRunner, sizes map[string]int64) *Stitcher {
	return &Stitcher{
		cfg:         testStitchConfig(),
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      r,
		stat: func(name string) (os.FileInfo, error) {
			size, ok := sizes[name]
			if !ok {
				return nil, os.ErrNotExist
			}
			return fakeFileInfo{size: size}, nil
		},
		logger: logger.NewNopLogger(),
	}
}

func TestStitch_RejectsEmpty(t *testing.T) {
	s := newTestStitcher(&fakeRunner{}, nil)
	if _, err := s.Stitch(context.Background(), nil, "out.mp4"); !errors.Is(err, ErrNoSegments) {
		t.Fatalf("expected ErrNoSegments, got %v", err)
	}
}

func TestStitch_BuildsPlanFromProbes(t *testing.T) {
	r := &fakeRunner{probes: map[string]string{
		"raw.mp4":  probeWithAudio,
		"clip.mp4": probeSilent,
	}}
	s := newTestStitcher(r, map[string]int64{"raw.mp4": 3 << 20, "clip.mp4": 2 << 20})

	plan, err := s.Stitch(context.Background(), []string{"raw.mp4", "clip.mp4"}, "out.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.TotalBytes != 5<<20 || plan.Regime != RegimeQuality {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if !plan.Segments[0].HasAudio || plan.Segments[1].HasAudio {
		t.Fatalf("audio presence not carried into plan: %+v", plan.Segments)
	}
	last := r.calls[len(r.calls)-1]
	if last.name != "ffmpeg" || last.args[len(last.args)-1] != "out.mp4" {
		t.Fatalf("expected final ffmpeg call writing out.mp4, got %+v", last)
	}
}

func TestStitch_EncodeFailureKeepsDiagnostic(t *testing.T) {
	r := &fakeRunner{
		probes: map[string]string{"raw.mp4": probeWithAudio},
		fail: map[string]commandResult{
			"ffmpeg": {Stderr: "Invalid data found when processing input", ExitCode: 1},
		},
	}
	s := newTestStitcher(r, map[string]int64{"raw.mp4": 1})

	_, err := s.Stitch(context.Background(), []string{"raw.mp4"}, "out.mp4")
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	if encErr.ExitCode != 1 || !strings.Contains(encErr.Diagnostic(), "Invalid data") {
		t.Fatalf("diagnostic not preserved: %+v", encErr)
	}
	if strings.Contains(encErr.Error(), "Invalid data") {
		t.Fatalf("error text should not embed stderr: %s", encErr.Error())
	}
}

func TestStitch_RejectsSegmentWithoutVideo(t *testing.T) {
	r := &fakeRunner{probes: map[string]string{"audio.mp4": probeAudioOnly}}
	s := newTestStitcher(r, map[string]int64{"audio.mp4": 1})
	if _, err := s.Stitch(context.Background(), []string{"audio.mp4"}, "out.mp4"); err == nil {
		t.Fatalf("expected error for segment without video")
	}
}

func TestExtractFrame_SeeksToOffset(t *testing.T) {
	r := &fakeRunner{probes: map[string]string{"raw.mp4": probeWithAudio}}
	s := newTestStitcher(r, nil)

	if err := s.ExtractFrame(context.Background(), "raw.mp4", "frame.jpg", 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(r.calls[len(r.calls)-1].args, " ")
	if !strings.Contains(got, "-ss 6.250 -i raw.mp4 -frames:v 1") || !strings.HasSuffix(got, "frame.jpg") {
		t.Fatalf("unexpected frame args: %s", got)
	}
}

func TestExtractAudio_Args(t *testing.T) {
	r := &fakeRunner{}
	s := newTestStitcher(r, nil)
	if err := s.ExtractAudio(context.Background(), "raw.mp4", "audio.mp3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(r.calls[0].args, " ")
	want := "-i raw.mp4 -vn -c:a libmp3lame -ac 1 -ar 16000 -b:a 32k audio.mp3"
	if !strings.Contains(got, want) {
		t.Fatalf("got %q, want substring %q", got, want)
	}
}

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(probeWithAudio))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.HasVideo || !info.HasAudio || info.Duration != 12.5 || info.Width != 1920 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStitch_MeasuresSilentSegmentWithoutDuration(t *testing.T) {
	r := &fakeRunner{
		probes:  map[string]string{"raw.webm": probeNoLength},
		packets: map[string]string{"raw.webm": "0.000000,0.033000\n3.967000,0.033000\n\n"},
	}
	s := newTestStitcher(r, map[string]int64{"raw.webm": 1})

	plan, err := s.Stitch(context.Background(), []string{"raw.webm"}, "out.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Segments[0].Duration; got < 3.999 || got > 4.001 {
		t.Fatalf("duration = %f, want 4", got)
	}
	if !strings.Contains(plan.FilterGraph(), "atrim=duration=4.000[a0]") {
		t.Fatalf("silent track not bounded:\n%s", plan.FilterGraph())
	}
}

func TestStitch_RejectsUnmeasurableSilentSegment(t *testing.T) {
	r := &fakeRunner{probes: map[string]string{"raw.webm": probeNoLength}}
	s := newTestStitcher(r, map[string]int64{"raw.webm": 1})

	_, err := s.Stitch(context.Background(), []string{"raw.webm"}, "out.mp4")
	if !errors.Is(err, ErrUnknownDuration) {
		t.Fatalf("expected ErrUnknownDuration, got %v", err)
	}
	if last := r.calls[len(r.calls)-1]; last.name == "ffmpeg" {
		t.Fatalf("ffmpeg must not run with an unbounded silent track")
	}
}

func TestParseProbe_DurationTag(t *testing.T) {
	info, err := parseProbe([]byte(probeWebM))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Duration != 62.5 {
		t.Fatalf("duration = %f, want 62.5", info.Duration)
	}
}

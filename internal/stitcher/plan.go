package stitcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
)

type Regime string

const (
	RegimeQuality Regime = "quality"
	RegimeCompact Regime = "compact"
)

// Segment is one input of a stitch, already probed.
type Segment struct {
	Path     string
	Size     int64
	Duration float64
	HasAudio bool
}

// Plan is the ordered segment list plus the encoding parameters for one stitch.
type Plan struct {
	Segments   []Segment
	TotalBytes int64
	Regime     Regime
	Profile    config.EncodeProfile
	Canvas     config.StitchConfig
}

// BuildPlan picks the encoding regime from the total input size: below the
// threshold favours quality, at or above it favours output size. A segment
// without audio needs a known duration to bound its silent track.
func BuildPlan(cfg config.StitchConfig, segments []Segment) (*Plan, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	var total int64
	for _, seg := range segments {
		if !seg.HasAudio && seg.Duration <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDuration, seg.Path)
		}
		total += seg.Size
	}
	plan := &Plan{
		Segments:   segments,
		TotalBytes: total,
		Regime:     RegimeQuality,
		Profile:    cfg.Quality,
		Canvas:     cfg,
	}
	if total >= cfg.SizeThresholdBytes {
		plan.Regime = RegimeCompact
		plan.Profile = cfg.Compact
	}
	return plan, nil
}

// FilterGraph normalizes every segment to the canvas and concatenates them into
// a single [v] and [a] pad.
func (p *Plan) FilterGraph() string {
	c := p.Canvas
	parts := make([]string, 0, len(p.Segments)+1)
	var concatInputs strings.Builder
	for i, seg := range p.Segments {
		video := fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=%s[v%d]",
			i, c.Width, c.Height, c.Width, c.Height, c.FrameRate, c.PixelFormat, i,
		)
		var audio string
		if seg.HasAudio {
			audio = fmt.Sprintf("[%d:a]aresample=%d,aformat=sample_rates=%d:channel_layouts=%s[a%d]",
				i, c.SampleRate, c.SampleRate, c.ChannelLayout, i)
		} else {
			audio = fmt.Sprintf("anullsrc=r=%d:cl=%s,atrim=duration=%s[a%d]",
				c.SampleRate, c.ChannelLayout, strconv.FormatFloat(seg.Duration, 'f', 3, 64), i)
		}
		parts = append(parts, video, audio)
		fmt.Fprintf(&concatInputs, "[v%d][a%d]", i, i)
	}
	parts = append(parts, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[v][a]", concatInputs.String(), len(p.Segments)))
	return strings.Join(parts, ";")
}

// Args returns the full ffmpeg argument list writing the plan to output.
func (p *Plan) Args(output string) []string {
	args := []string{"-hide_banner", "-y"}
	for _, seg := range p.Segments {
		args = append(args, "-i", seg.Path)
	}
	args = append(args,
		"-filter_complex", p.FilterGraph(),
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", p.Canvas.VideoCodec,
		"-preset", p.Profile.Preset,
		"-crf", strconv.Itoa(p.Profile.CRF),
	)
	if p.Profile.MaxBitrate != "" {
		args = append(args, "-maxrate", p.Profile.MaxBitrate)
		if p.Profile.BufferSize != "" {
			args = append(args, "-bufsize", p.Profile.BufferSize)
		}
	}
	args = append(args,
		"-c:a", p.Canvas.AudioCodec,
		"-b:a", p.Profile.AudioBitrate,
		"-shortest",
		"-movflags", "+faststart",
		output,
	)
	return args
}

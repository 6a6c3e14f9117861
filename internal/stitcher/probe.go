package stitcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MediaInfo is the subset of ffprobe output the compiler needs.
type MediaInfo struct {
	Duration     float64
	HasVideo     bool
	HasAudio     bool
	VideoStreams int
	AudioStreams int
	Width        int
	Height       int
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
		Tags      struct {
			Duration string `json:"DURATION"`
		} `json:"tags"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probeArgs(path string) []string {
	return []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
}

func parseProbe(raw []byte) (*MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	info := &MediaInfo{Duration: parseSeconds(out.Format.Duration)}
	for _, s := range out.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			info.VideoStreams++
			if !info.HasVideo {
				info.HasVideo = true
				info.Width, info.Height = s.Width, s.Height
			}
		case "audio":
			info.AudioStreams++
			info.HasAudio = true
		}
		if info.Duration == 0 {
			info.Duration = parseSeconds(s.Duration)
		}
		// Matroska and WebM carry per-stream durations only as a tag.
		if info.Duration == 0 {
			info.Duration = parseClock(s.Tags.Duration)
		}
	}
	return info, nil
}

func parseSeconds(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// parseClock reads an HH:MM:SS.fraction timestamp.
func parseClock(v string) float64 {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 3 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || sec < 0 {
		return 0
	}
	return float64(h*3600+m*60) + sec
}

func packetArgs(path string) []string {
	return []string{"-v", "error", "-select_streams", "v:0", "-show_entries", "packet=pts_time,duration_time", "-of", "csv=p=0", "--", path}
}

// parsePacketDuration returns the end time of the last video packet.
func parsePacketDuration(out string) float64 {
	var end float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		pts := parseSeconds(fields[0])
		if len(fields) > 1 {
			pts += parseSeconds(fields[1])
		}
		end = max(end, pts)
	}
	return end
}

// PacketDuration measures a file by walking its video packets. It is the
// fallback for containers whose headers carry no duration.
func (s *Stitcher) PacketDuration(ctx context.Context, path string) (float64, error) {
	res, err := run(ctx, s.runner, s.ffprobePath, packetArgs(path))
	if err != nil {
		return 0, err
	}
	return parsePacketDuration(res.Stdout), nil
}

// Probe inspects a media file with ffprobe.
func (s *Stitcher) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	res, err := run(ctx, s.runner, s.ffprobePath, probeArgs(path))
	if err != nil {
		return nil, err
	}
	return parseProbe([]byte(res.Stdout))
}

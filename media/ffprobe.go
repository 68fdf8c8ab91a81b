// Package media measures generated audio with ffprobe.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the subset of ffprobe's JSON output used here.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// runner executes ffprobe and returns its combined output.
type runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}

// Probe reports the duration of a media URL or path.
type Probe struct {
	Binary string
	run    runner
}

// NewProbe uses binary, or "ffprobe" from PATH when empty.
func NewProbe(binary string) *Probe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Probe{Binary: binary, run: execRunner}
}

// Inspect runs ffprobe against target and decodes the JSON response.
func (p *Probe) Inspect(ctx context.Context, target string) (Result, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, errors.New("ffprobe inspect: empty target")
	}
	output, err := p.run(ctx, p.Binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", target)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Duration returns the media duration in seconds.
func (p *Probe) Duration(ctx context.Context, target string) (float64, error) {
	result, err := p.Inspect(ctx, target)
	if err != nil {
		return 0, err
	}
	d := result.DurationSeconds()
	if d <= 0 {
		return 0, errors.New("ffprobe: duration unavailable")
	}
	return d, nil
}

// DurationSeconds prefers the container duration and falls back to the
// longest audio stream.
func (r Result) DurationSeconds() float64 {
	if d := parseSeconds(r.Format.Duration); d > 0 {
		return d
	}
	var longest float64
	for _, s := range r.Streams {
		if !strings.EqualFold(s.CodecType, "audio") {
			continue
		}
		if d := parseSeconds(s.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

func parseSeconds(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

package stitcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	ErrNoSegments      = errors.New("stitch: no segments")
	ErrUnknownDuration = errors.New("stitch: segment duration unknown")
)

type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution so the compiler can run against fakes.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// EncodeError is a failed ffmpeg/ffprobe invocation. Stderr is kept for
// operator logs only.
type EncodeError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %v", e.Command, e.ExitCode, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the tail of the captured stderr.
func (e *EncodeError) Diagnostic() string {
	const maxLines = 20
	lines := strings.Split(strings.TrimSpace(e.Stderr), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

func run(ctx context.Context, r commandRunner, name string, args []string) (commandResult, error) {
	res, err := r.Run(ctx, name, args...)
	if err != nil {
		return res, &EncodeError{
			Command:  name,
			Args:     args,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}
	return res, nil
}

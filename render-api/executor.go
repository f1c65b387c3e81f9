package main

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"video_compositor/compositor/engine"
	"video_compositor/compositor/utils"
)

// ExecutionResult reports a finished render run.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output"`
}

// ExecutionError is a render run that started but exited non-zero.
type ExecutionError struct {
	ExitCode int
	Output   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
}

// SourceError is a layer source that could not be resolved to a readable
// file before compilation.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

// ResolveSources checks every layer source ahead of compilation. Compilation
// itself never touches the filesystem, so missing media surfaces here rather
// than minutes into a render.
func ResolveSources(t engine.Timeline) error {
	for _, layer := range t.Layers {
		src := layer.SourceRef()
		if src == "" {
			continue
		}
		if !utils.FileExists(src) {
			return &SourceError{Source: src, Err: fmt.Errorf("file not found")}
		}
	}
	return nil
}

// ExecuteCommand runs the emitted argument vector and captures its output.
// Cancellation and timeouts come from the context.
func ExecuteCommand(ctx context.Context, args []string) (*ExecutionResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &ExecutionResult{Success: false, Duration: elapsed, Output: string(output)},
			&ExecutionError{ExitCode: exitCode, Output: string(output)}
	}

	return &ExecutionResult{Success: true, Duration: elapsed, Output: string(output)}, nil
}

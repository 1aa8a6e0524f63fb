package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ToolError reports a failed pdftoppm or tesseract invocation.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

// toolError wraps err with the binary's base name and the first non-empty stderr line.
func toolError(bin string, stderr []byte, err error) error {
	return &ToolError{
		Tool:   filepath.Base(bin),
		Stderr: firstLine(string(stderr)),
		Err:    err,
	}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return truncate(line, 512)
		}
	}
	return ""
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		// the process was killed because the document was abandoned
		err = ctx.Err()
	}

	attrs := []any{
		"tool", filepath.Base(name),
		"args", len(args),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.logger.Debug("ocr tool interrupted", append(attrs, "error", err)...)
	case err != nil:
		r.logger.Warn("ocr tool failed", append(attrs, "error", err, "stderr", truncate(errb.String(), 8<<10))...)
	default:
		r.logger.Debug("ocr tool finished", append(attrs, "stdout_bytes", out.Len())...)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

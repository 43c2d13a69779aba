package exiftool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result holds the raw outcome of one exiftool invocation, before
// classification.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// RunFunc executes exiftool with the given argument file content and
// returns the captured output. Injectable so the dispatcher can be tested
// without a real exiftool binary.
type RunFunc func(ctx context.Context, bin, argfile string, timeout time.Duration) Result

// Run is the real executor: it writes the argument file to a temp file,
// invokes "bin -@ file" under the timeout, and captures both streams.
func Run(ctx context.Context, bin, argfile string, timeout time.Duration) Result {
	f, err := os.CreateTemp("", "takeout-merge-args-*.txt")
	if err != nil {
		return Result{Err: fmt.Errorf("create argfile: %w", err)}
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(argfile); err != nil {
		f.Close()
		return Result{Err: fmt.Errorf("write argfile: %w", err)}
	}
	if err := f.Close(); err != nil {
		return Result{Err: fmt.Errorf("close argfile: %w", err)}
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, bin, "-@", f.Name())

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()
	if runErr != nil && runCtx.Err() != nil {
		runErr = runCtx.Err()
	}
	return Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    runErr,
	}
}

// Version returns the tool's reported version string, or an error when the
// binary cannot be executed at all. Used by the startup environment check.
func Version(ctx context.Context, bin string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, "-ver").Output()
	if err != nil {
		return "", fmt.Errorf("exiftool not runnable: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// WritableExtensions queries the tool for the file types it can write
// (-listwf) and returns them as an uppercase set. Extensions outside this
// set are skipped up front instead of burning a batch slot on a guaranteed
// failure.
func WritableExtensions(ctx context.Context, bin string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, bin, "-listwf").Output()
	if err != nil {
		return nil, fmt.Errorf("query writable formats: %w", err)
	}

	set := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		// First line is a "Writable file extensions:" banner.
		if strings.Contains(line, ":") {
			continue
		}
		for _, ext := range strings.Fields(line) {
			set[strings.ToUpper(ext)] = true
		}
	}
	return set, nil
}

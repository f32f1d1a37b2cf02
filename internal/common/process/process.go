// File path: internal/common/process/process.go
package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

// maxStderrCapture bounds the stderr excerpt kept on a Result.
const maxStderrCapture = 16 * 1024

// Config describes an external command executed once per call.
type Config struct {
	Name    string
	Command string
	Args    []string
	Env     []string
	WorkDir string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a command that ran but finished with a non-zero status.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process: %s exited with code %d", e.Name, e.ExitCode)
}

// Run starts the command, writes stdin to it, forwards stderr lines to the
// logger and returns the collected stdout. A non-zero exit yields both a
// populated Result and an *ExitError.
func Run(ctx context.Context, cfg Config, stdin []byte) (Result, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return Result{}, errors.New("process: command required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = common.Logger()
	}
	name := componentName(cfg)
	logger.Info(
		"process: launching command",
		"service", name,
		"command", cfg.Command,
		"args", strings.Join(cfg.Args, " "),
	)

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("process: stderr pipe %s: %w", name, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("process: start %s: %w", name, err)
	}

	attrs := []slog.Attr{
		slog.String("component", "service/"+strings.ReplaceAll(strings.ToLower(name), " ", "_")),
		slog.String("service", name),
		slog.String("stream", "stderr"),
	}
	// stderr must be drained before Wait closes the pipe.
	var stderr bytes.Buffer
	forwardStderr(ctx, logger, stderrPipe, &stderr, attrs)
	waitErr := cmd.Wait()

	result := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			logger.Warn("process: command failed", "service", name, "exit_code", result.ExitCode, "dur", result.Duration)
			return result, &ExitError{Name: name, ExitCode: result.ExitCode, Stderr: result.Stderr}
		}
		return result, fmt.Errorf("process: wait %s: %w", name, waitErr)
	}
	logger.Info("process: command finished", "service", name, "dur", result.Duration, "stdout_bytes", len(result.Stdout))
	return result, nil
}

func forwardStderr(ctx context.Context, logger *slog.Logger, pipe io.Reader, capture *bytes.Buffer, attrs []slog.Attr) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if capture.Len() < maxStderrCapture {
			capture.WriteString(line)
			capture.WriteByte('\n')
		}
		logger.LogAttrs(ctx, slog.LevelWarn, line, attrs...)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		errorAttrs := append([]slog.Attr(nil), attrs...)
		errorAttrs = append(errorAttrs, slog.Any("error", err))
		logger.LogAttrs(ctx, slog.LevelWarn, "process log stream error", errorAttrs...)
	}
}

func componentName(cfg Config) string {
	if name := strings.TrimSpace(cfg.Name); name != "" {
		return name
	}
	if base := filepath.Base(strings.TrimSpace(cfg.Command)); base != "" && base != "." {
		return base
	}
	return "process"
}

// BinaryPath resolves an executable path using the system PATH.
func BinaryPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("process: binary name required")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("process: locate %s: %w", name, err)
	}
	return filepath.Clean(path), nil
}

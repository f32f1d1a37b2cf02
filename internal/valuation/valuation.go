// File path: internal/valuation/valuation.go
package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/process"
	"github.com/nicodishanthj/Katral_realty/internal/config"
)

var (
	// ErrInvalidInput rejects payloads that are not a JSON object.
	ErrInvalidInput = errors.New("valuation: input must be a JSON object")
	// ErrScriptNotFound is returned when the model script is missing.
	ErrScriptNotFound = errors.New("valuation: prediction script not found")
	// ErrInterpreterNotFound is returned when the configured command is not on PATH.
	ErrInterpreterNotFound = errors.New("valuation: interpreter not found")
)

// Failure reports a model run that exited non-zero or printed nothing.
type Failure struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("valuation: prediction script failed with exit code %d", f.ExitCode)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// InvalidOutputError reports a run whose stdout is not JSON.
type InvalidOutputError struct {
	Stdout string
	Stderr string
}

func (e *InvalidOutputError) Error() string {
	return "valuation: prediction script returned invalid JSON"
}

// Valuator pipes property attributes into the external price model and
// relays its JSON answer untouched.
type Valuator struct {
	cfg config.ValuationConfig
}

func New(cfg config.ValuationConfig) *Valuator {
	return &Valuator{cfg: cfg}
}

func (v *Valuator) Valuate(ctx context.Context, input []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidInput
	}
	script, err := filepath.Abs(v.cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptNotFound, err)
	}
	if _, err := os.Stat(script); err != nil {
		common.Logger().Error("valuation: prediction script missing", "script", script, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	command, err := process.BinaryPath(v.cfg.Command)
	if err != nil {
		common.Logger().Error("valuation: interpreter missing", "command", v.cfg.Command, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInterpreterNotFound, err)
	}

	result, err := process.Run(ctx, process.Config{
		Name:    "valuation",
		Command: command,
		Args:    []string{script},
		Timeout: v.cfg.Timeout,
	}, trimmed)
	if err != nil {
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			return nil, &Failure{ExitCode: exitErr.ExitCode, Stderr: exitErr.Stderr, Err: err}
		}
		return nil, &Failure{ExitCode: -1, Stderr: result.Stderr, Err: err}
	}
	out := bytes.TrimSpace(result.Stdout)
	if len(out) == 0 {
		return nil, &Failure{ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	if !json.Valid(out) {
		common.Logger().Warn("valuation: prediction output is not JSON", "bytes", len(out))
		return nil, &InvalidOutputError{Stdout: string(out), Stderr: result.Stderr}
	}
	return json.RawMessage(out), nil
}

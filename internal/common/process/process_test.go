package process

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunEchoesStdin(t *testing.T) {
	res, err := Run(context.Background(), Config{Name: "cat", Command: "cat", Logger: quietLogger()}, []byte(`{"area":90}`))
	require.NoError(t, err)
	assert.Equal(t, `{"area":90}`, string(res.Stdout))
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunReportsExitCodeAndStderr(t *testing.T) {
	cfg := Config{
		Name:    "failing model",
		Command: "sh",
		Args:    []string{"-c", "echo model exploded >&2; exit 3"},
		Logger:  quietLogger(),
	}
	res, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "model exploded")
}

func TestRunTimeout(t *testing.T) {
	cfg := Config{Command: "sleep", Args: []string{"5"}, Timeout: 50 * time.Millisecond, Logger: quietLogger()}
	start := time.Now()
	_, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunRequiresCommand(t *testing.T) {
	_, err := Run(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestBinaryPath(t *testing.T) {
	path, err := BinaryPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = BinaryPath("")
	assert.Error(t, err)
}

package valuation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/Katral_realty/internal/config"
)

func script(t *testing.T, body string) config.ValuationConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predict_price.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return config.ValuationConfig{Command: "sh", Script: path, Timeout: 5 * time.Second}
}

func TestValuateRelaysOutput(t *testing.T) {
	cfg := script(t, "cat >/dev/null\necho '{\"success\":true,\"predicted_price\":185000,\"explanation\":\"zona\"}'\n")
	out, err := New(cfg).Valuate(context.Background(), []byte(`{"area":90,"rooms":3}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"predicted_price":185000,"explanation":"zona"}`, string(out))
}

func TestValuateReceivesInputOnStdin(t *testing.T) {
	cfg := script(t, "cat\n")
	out, err := New(cfg).Valuate(context.Background(), []byte(` {"area":90} `))
	require.NoError(t, err)
	assert.JSONEq(t, `{"area":90}`, string(out))
}

func TestValuateFailures(t *testing.T) {
	_, err := New(script(t, "echo boom >&2\nexit 2\n")).Valuate(context.Background(), []byte(`{}`))
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 2, failure.ExitCode)
	assert.Contains(t, failure.Stderr, "boom")

	_, err = New(script(t, "exit 0\n")).Valuate(context.Background(), []byte(`{}`))
	require.True(t, errors.As(err, &failure))

	_, err = New(script(t, "echo precio\n")).Valuate(context.Background(), []byte(`{}`))
	var invalid *InvalidOutputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "precio", invalid.Stdout)
}

func TestValuateRejectsBadInput(t *testing.T) {
	v := New(script(t, "cat\n"))
	for _, input := range []string{"", "[1,2]", "{bad"} {
		_, err := v.Valuate(context.Background(), []byte(input))
		assert.ErrorIs(t, err, ErrInvalidInput, input)
	}
}

func TestValuateMissingScript(t *testing.T) {
	cfg := config.ValuationConfig{Command: "sh", Script: filepath.Join(t.TempDir(), "absent.py")}
	_, err := New(cfg).Valuate(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrScriptNotFound)
}

func TestValuateMissingInterpreter(t *testing.T) {
	cfg := script(t, "cat\n")
	cfg.Command = "realty-no-such-interpreter"
	_, err := New(cfg).Valuate(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrInterpreterNotFound)
}

package common

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersOutputAndHistory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	require.NoError(t, SetLevel("warn"))
	defer SetLevel("info")

	Logger().Info("logtest: hidden")
	Logger().Warn("logtest: shown", "request_id", "req-1", "count", 2)

	assert.NotContains(t, buf.String(), "logtest: hidden")
	assert.Contains(t, buf.String(), "logtest: shown")

	var found *LogEntry
	entries := LogEntries()
	for i := range entries {
		assert.NotEqual(t, "logtest: hidden", entries[i].Message)
		if entries[i].Message == "logtest: shown" {
			found = &entries[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "warn", found.Level)
	assert.Equal(t, "logtest", found.Component)
	assert.Equal(t, "req-1", found.RequestID)
	assert.Equal(t, int64(2), found.Attributes["count"])
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	err := SetLevel("verbose")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "verbose"))
	require.NoError(t, SetLevel(""))
}

func TestLogSinkKeepsNewest(t *testing.T) {
	s := newLogSink(2)
	for _, msg := range []string{"a: 1", "a: 2", "a: 3"} {
		s.capture(slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0))
	}
	entries := s.entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a: 2", entries[0].Message)
	assert.Equal(t, "info", entries[0].Level)

	entries[0].Message = "changed"
	assert.Equal(t, "a: 2", s.entries()[0].Message)
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, getLogLevel(in), in)
	}
}

func TestNewWithWriter_JSONInReleaseMode(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.LogBookingConfirmed(context.Background(), 100, 200, []string{"A01", "A02"}, 5*time.Millisecond)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Booking Confirmed", record["msg"])
	assert.EqualValues(t, 100, record["schedule_id"])
	assert.EqualValues(t, 200, record["user_id"])
	assert.Equal(t, []any{"A01", "A02"}, record["seats"])
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "error")

	l.LogSeatLockConflict(context.Background(), 100, "A01", 200)

	assert.Empty(t, buf.String())
}

func TestWithComponent(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").WithComponent("seatlock")
	l.Info("hello")

	assert.Contains(t, buf.String(), `"component":"seatlock"`)
}

func TestWithWorkerID(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	var buf bytes.Buffer
	NewWithWriter(&buf, "info").WithWorkerID(3).Info("consuming")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.EqualValues(t, 3, record["worker_id"])
}

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.in))
		})
	}
}

func TestContextLoggingCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	id := uuid.New()
	ctx := WithCorrelationID(context.Background(), id)
	InfoContext(ctx, "loan registered", "loanID", 3)

	out := buf.String()
	assert.Contains(t, out, `"correlation_id":"`+id.String()+`"`)
	assert.Contains(t, out, `"loanID":3`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "text")
	defer Initialize("info", "text")

	EnterMethod("catalogService.AllocateUnit")
	assert.Empty(t, buf.String())

	ExitMethodRejected("catalogService.AllocateUnit", assert.AnError)
	assert.Contains(t, buf.String(), "Method rejected request")
}

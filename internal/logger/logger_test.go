package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstall_WritesJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	log := install(zapcore.AddSync(&buf), zapcore.InfoLevel, "test")

	log.Info("suggestion clicked", "event", "create_pr_button_clicked")
	log.V(1).Info("hidden at info level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "suggestion clicked", rec[MessageKey])
	assert.Equal(t, "create_pr_button_clicked", rec["event"])
	assert.Equal(t, "test", rec[VersionKey])
	assert.Contains(t, rec, TimeStampKey)
}

func TestSetup_CreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shiptea.log")
	log, err := Setup(path, zapcore.DebugLevel, "dev")
	require.NoError(t, err)

	log.V(1).Info("debug visible")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug visible")
	assert.Same(t, log, Global())
}

func TestFromContext(t *testing.T) {
	discard := logr.Discard()
	ctx := WithLogger(context.Background(), &discard)

	assert.Same(t, &discard, FromContext(ctx))
	assert.Same(t, ctx, WithLogger(ctx, &discard))
	assert.NotNil(t, FromContext(context.Background()))
}

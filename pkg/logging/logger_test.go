package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"chatty", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestCompactHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	log.Info("found cycles", "count", 2, "path", "a -> b")
	log.Log(context.Background(), LevelTrace, "edge", "from", "a")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	assert.Contains(t, string(lines[0]), "[INFO]  ")
	assert.Contains(t, string(lines[0]), `found cycles | count=2 path="a -> b"`)
	assert.Contains(t, string(lines[1]), "[TRACE] ")
	assert.Contains(t, string(lines[1]), "edge | from=a")
}

func TestCompactHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]  ")
}

func TestNew_Component(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	New("runner").Info("started", "run", "abc")

	assert.Contains(t, buf.String(), "[runner] started | run=abc")
}

func TestCompactHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).
		With("component", "web", "requestId", "0123456789abcdef").
		WithGroup("http")

	log.Info("served", "status", 200, "durationMs", int64(12), slog.Group("peer", "addr", "::1"))

	out := buf.String()
	assert.Contains(t, out, "[web] served | requestId=01234567 http.status=200 http.duration=12ms http.peer.addr=::1")
}

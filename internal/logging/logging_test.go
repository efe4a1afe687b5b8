package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	runStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "boardlogs",
			appName: "boardsim",
			want:    filepath.Join("boardlogs", "boardsim.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./boardlogs",
			appName: "boardsim",
			want:    filepath.Join(".", "boardlogs", "boardsim.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "boardsim"),
			appName: "boardsim",
			want:    filepath.Join("/var", "log", "boardsim", "boardsim.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, runStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeSource struct {
	name   string
	tick   uint64
	active int64
}

func (f fakeSource) ScenarioName() string  { return f.name }
func (f fakeSource) Tick() uint64          { return f.tick }
func (f fakeSource) ActiveSessions() int64 { return f.active }

func TestSimContext(t *testing.T) {
	attrs := SimContext(fakeSource{name: "Ambush", tick: 42, active: 3})()

	require.Len(t, attrs, 3)
	assert.Equal(t, "scenario", attrs[0].Key)
	assert.Equal(t, "Ambush", attrs[0].Value.String())
	assert.Equal(t, uint64(42), attrs[1].Value.Uint64())
	assert.Equal(t, int64(3), attrs[2].Value.Int64())
}

func TestSimContext_NoScenario(t *testing.T) {
	attrs := SimContext(fakeSource{tick: 1})()

	require.Len(t, attrs, 2)
	assert.Equal(t, "tick", attrs[0].Key)
}

func TestContextHandler_AddsSimAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewContextHandler(inner, SimContext(fakeSource{name: "Ambush", tick: 7})))

	logger.With("vehicle", 4).Info("boarding started")

	out := buf.String()
	assert.Contains(t, out, "scenario=Ambush")
	assert.Contains(t, out, "tick=7")
	assert.Contains(t, out, "vehicle=4")
}

func TestSetup_WithContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.SetContext(SimContext(fakeSource{name: "Convoy", tick: 9, active: 1}))
	m.Setup(&buf, "info", nil)

	m.Logger().Info("tick processed")

	assert.Contains(t, buf.String(), "scenario=Convoy")
	assert.Contains(t, buf.String(), "boarding=1")
}

func TestClose_NoGraylog(t *testing.T) {
	assert.NoError(t, NewSlogManager().Close())
}

// Package logging wires the simulator's slog handlers together.
package logging

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// LogFilePath builds the per-run log file path, e.g. boardlogs/boardsim.20260212_213836.log.
func LogFilePath(logsDir, appName string, runStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, runStart.Format("20060102_150405")),
	)
}

// SessionSource reports live simulation state for log enrichment.
type SessionSource interface {
	ScenarioName() string
	Tick() uint64
	ActiveSessions() int64
}

// SimContext returns a ContextProvider stamping every record with the current
// scenario, tick and number of active boarding sessions. Empty scenario names
// are omitted.
func SimContext(src SessionSource) ContextProvider {
	return func() []slog.Attr {
		attrs := make([]slog.Attr, 0, 3)
		if name := src.ScenarioName(); name != "" {
			attrs = append(attrs, slog.String("scenario", name))
		}
		return append(attrs,
			slog.Uint64("tick", src.Tick()),
			slog.Int64("boarding", src.ActiveSessions()),
		)
	}
}

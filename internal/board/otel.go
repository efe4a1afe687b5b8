package board

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/boarding/internal/board"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	started  metric.Int64Counter
	ended    metric.Int64Counter
	attempts metric.Int64Counter
	looted   metric.Float64Counter
	active   metric.Int64ObservableGauge
}

func newMetrics(active func() int64) (*metrics, error) {
	m := meter()
	out := &metrics{}

	var err error

	out.started, err = m.Int64Counter(
		"board.sessions.started",
		metric.WithDescription("Boarding sessions started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}

	out.ended, err = m.Int64Counter(
		"board.sessions.ended",
		metric.WithDescription("Boarding sessions ended, by phase and code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ended counter: %w", err)
	}

	out.attempts, err = m.Int64Counter(
		"board.steal.attempts",
		metric.WithDescription("Steal rolls, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steal counter: %w", err)
	}

	out.looted, err = m.Float64Counter(
		"board.loot.transferred",
		metric.WithDescription("Amount of goods moved, by category"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loot counter: %w", err)
	}

	out.active, err = m.Int64ObservableGauge(
		"board.sessions.active",
		metric.WithDescription("Boarding sessions in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(out.active, active())
			return nil
		},
		out.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering active callback: %w", err)
	}

	return out, nil
}

func (m *metrics) sessionEnded(phase Phase, code string) {
	m.ended.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("phase", phase.String()),
		attribute.String("code", code),
	))
}

func (m *metrics) stealAttempt(r StealResult) {
	m.attempts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", r.String())))
}

func (m *metrics) lootMoved(r LootResult) {
	if total := r.Total(); total > 0 {
		m.looted.Add(context.Background(), total, metric.WithAttributes(attribute.String("category", r.Category.String())))
	}
}

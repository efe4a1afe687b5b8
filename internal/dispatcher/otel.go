package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/boarding/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter
}

// newMetrics creates the dispatcher instruments. observe reports lane depths
// whenever the gauge is collected.
func newMetrics(m metric.Meter, observe func(metric.Observer)) (*metrics, error) {
	var (
		out metrics
		err error
	)

	if out.queueSize, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in a command lane")); err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}
	if _, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		observe(o)
		return nil
	}, out.queueSize); err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	if out.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Buffered events handled")); err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}
	if out.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events refused by a full lane")); err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	if out.failed, err = m.Int64Counter("dispatcher.events.failed",
		metric.WithDescription("Buffered events whose handler returned an error")); err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}
	return &out, nil
}

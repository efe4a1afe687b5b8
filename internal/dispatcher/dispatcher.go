// Package dispatcher routes host commands to their handlers. Commands can run
// inline or through a per-command lane drained by its own goroutine.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrUnknownCommand is returned for commands without a handler.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a non-blocking lane has no room left.
	ErrQueueFull = errors.New("queue full")
)

// Queued is the result of a command accepted into a lane.
const Queued = "queued"

// Event is a command for the simulation host. Commands arriving from outside carry
// string Args; events raised internally (notices, hits) carry a typed Payload.
type Event struct {
	Command   string
	Args      []string
	Payload   any
	Tick      uint64
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is what the dispatcher logs through.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a command at registration.
type Option func(*route)

type route struct {
	laneSize int
	blocking bool
	logged   bool
}

// Buffered runs the handler on its own goroutine behind a lane of size slots.
func Buffered(size int) Option {
	return func(r *route) { r.laneSize = size }
}

// Blocking makes Dispatch wait for room in a full lane instead of failing.
func Blocking() Option {
	return func(r *route) { r.blocking = true }
}

// Logged logs each call at debug level and failures at error level.
func Logged() Option {
	return func(r *route) { r.logged = true }
}

// lane is the queue of one buffered command.
type lane struct {
	command string
	events  chan Event
	attrs   metric.MeasurementOption
}

// Dispatcher routes events to registered handlers. Register all commands
// before dispatching; the handler table is not guarded.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger
	metrics  *metrics

	lanesMu sync.RWMutex
	lanes   []*lane

	// events accepted into a lane and not yet handled
	pendingMu sync.Mutex
	drained   *sync.Cond
	pending   int
}

// New creates a Dispatcher. Metrics go to the global OTel meter, which is a
// no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	return newWithMeter(logger, meter())
}

func newWithMeter(logger Logger, m metric.Meter) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
	d.drained = sync.NewCond(&d.pendingMu)

	ms, err := newMetrics(m, d.observeLanes)
	if err != nil {
		return nil, err
	}
	d.metrics = ms
	return d, nil
}

// Register binds a handler to a command. Registering a command again replaces
// its handler.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var r route
	for _, opt := range opts {
		opt(&r)
	}

	if r.laneSize > 0 {
		h = d.laned(command, r.laneSize, r.blocking, h)
	}
	if r.logged {
		h = d.logged(command, h)
	}
	d.handlers[command] = h
}

// Dispatch routes an event to its handler. Buffered commands return Queued
// once the event is in their lane.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	return h(e)
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Commands returns the registered commands, sorted.
func (d *Dispatcher) Commands() []string {
	cmds := make([]string, 0, len(d.handlers))
	for c := range d.handlers {
		cmds = append(cmds, c)
	}
	slices.Sort(cmds)
	return cmds
}

// Wait blocks until no accepted event is left unhandled. Events dispatched
// while Wait is blocked are waited for as well, so Wait returns only once
// every lane is idle at the same moment.
func (d *Dispatcher) Wait() {
	d.pendingMu.Lock()
	for d.pending > 0 {
		d.drained.Wait()
	}
	d.pendingMu.Unlock()
}

func (d *Dispatcher) track(delta int) {
	d.pendingMu.Lock()
	d.pending += delta
	if d.pending == 0 {
		d.drained.Broadcast()
	}
	d.pendingMu.Unlock()
}

func (d *Dispatcher) observeLanes(o metric.Observer) {
	d.lanesMu.RLock()
	defer d.lanesMu.RUnlock()
	for _, l := range d.lanes {
		o.ObserveInt64(d.metrics.queueSize, int64(len(l.events)), l.attrs)
	}
}

func (d *Dispatcher) laned(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	l := &lane{
		command: command,
		events:  make(chan Event, size),
		attrs:   metric.WithAttributes(attribute.String("command", command)),
	}
	d.lanesMu.Lock()
	d.lanes = append(d.lanes, l)
	d.lanesMu.Unlock()

	go d.drain(l, h)

	return func(e Event) (any, error) {
		d.track(1)
		if blocking {
			l.events <- e
			return Queued, nil
		}
		select {
		case l.events <- e:
			return Queued, nil
		default:
			d.track(-1)
			d.metrics.dropped.Add(context.Background(), 1, l.attrs)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
	}
}

func (d *Dispatcher) drain(l *lane, h HandlerFunc) {
	ctx := context.Background()
	for e := range l.events {
		if _, err := h(e); err != nil {
			d.metrics.failed.Add(ctx, 1, l.attrs)
			d.logger.Error("buffered event failed", "command", l.command, "tick", e.Tick, "error", err)
		}
		d.metrics.processed.Add(ctx, 1, l.attrs)
		d.track(-1)
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("dispatch", "command", command, "args", len(e.Args), "tick", e.Tick)

		result, err := h(e)
		if err != nil {
			d.logger.Error("command failed", "command", command, "tick", e.Tick, "duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("command done", "command", command, "duration", time.Since(start))
		return result, nil
	}
}

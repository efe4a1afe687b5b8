// Package scenario tracks the running scenario and the simulation clock.
package scenario

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/boarding/pkg/core"
)

const noScenario = "No scenario loaded"

// Context holds the current scenario and the tick counter. It is the boarding
// core's clock: simulated time is the scenario start plus elapsed ticks.
type Context struct {
	mu       sync.RWMutex
	scenario *core.Scenario

	tick     atomic.Uint64
	sessions atomic.Pointer[func() int64]
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		scenario: &core.Scenario{Name: noScenario, StartTime: time.Now()},
	}
}

// Scenario returns the current scenario.
func (c *Context) Scenario() *core.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario
}

// SetScenario replaces the current scenario and rewinds the clock.
func (c *Context) SetScenario(s *core.Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenario = s
	c.tick.Store(0)
}

// Loaded reports whether a scenario has been started.
func (c *Context) Loaded() bool {
	return c.Scenario().Name != noScenario
}

// ScenarioName returns the current scenario's name, or "" when none is loaded.
func (c *Context) ScenarioName() string {
	if !c.Loaded() {
		return ""
	}
	return c.Scenario().Name
}

// Advance moves the clock one tick forward and returns the new tick.
func (c *Context) Advance() uint64 {
	return c.tick.Add(1)
}

// Tick returns the current tick.
func (c *Context) Tick() uint64 {
	return c.tick.Load()
}

// Now returns simulated time at the current tick.
func (c *Context) Now() time.Time {
	s := c.Scenario()
	return s.StartTime.Add(time.Duration(c.Tick()) * s.TickInterval)
}

// Elapsed returns simulated seconds since the scenario started.
func (c *Context) Elapsed() float64 {
	s := c.Scenario()
	return (time.Duration(c.Tick()) * s.TickInterval).Seconds()
}

// CountSessions installs the source for ActiveSessions.
func (c *Context) CountSessions(fn func() int64) {
	c.sessions.Store(&fn)
}

// ActiveSessions reports how many boarding sessions are running.
func (c *Context) ActiveSessions() int64 {
	if fn := c.sessions.Load(); fn != nil {
		return (*fn)()
	}
	return 0
}

// Clear unloads the current scenario and rewinds the clock.
func (c *Context) Clear() {
	c.SetScenario(&core.Scenario{Name: noScenario, StartTime: time.Now()})
}

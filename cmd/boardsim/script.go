package main

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/OCAP2/boarding/internal/board"
	"github.com/OCAP2/boarding/internal/dispatcher"
)

// Step is one scripted command, issued once the clock reaches Tick.
type Step struct {
	Tick    uint64   `mapstructure:"tick"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// Script is a replayable scenario.
type Script struct {
	Name         string        `mapstructure:"name"`
	Author       string        `mapstructure:"author"`
	Tag          string        `mapstructure:"tag"`
	TickInterval time.Duration `mapstructure:"tickInterval"`
	Ticks        uint64        `mapstructure:"ticks"`
	Steps        []Step        `mapstructure:"steps"`
}

// LoadScript reads a JSON scenario script.
func LoadScript(path string) (*Script, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}

	var s Script
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding script %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("script %s has no name", path)
	}
	for i, st := range s.Steps {
		if st.Command == "" {
			return nil, fmt.Errorf("script %s: step %d has no command", path, i)
		}
	}
	slices.SortStableFunc(s.Steps, func(a, b Step) int {
		switch {
		case a.Tick < b.Tick:
			return -1
		case a.Tick > b.Tick:
			return 1
		}
		return 0
	})
	return &s, nil
}

// Dispatcher routes commands; *dispatcher.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Runner replays a script against the command surface.
type Runner struct {
	d      Dispatcher
	logger *slog.Logger
}

// NewRunner creates a runner dispatching to d.
func NewRunner(d Dispatcher, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{d: d, logger: logger}
}

// Run starts the scenario, issues every step at its tick with a :TICK: between
// ticks, and ends the scenario. Failed steps are logged and skipped.
func (r *Runner) Run(s *Script) error {
	startArgs := []string{s.Name, s.Author, s.Tag}
	if s.TickInterval > 0 {
		startArgs = append(startArgs, strconv.FormatFloat(s.TickInterval.Seconds(), 'f', -1, 64))
	}
	if _, err := r.d.Dispatch(dispatcher.Event{Command: ":SCENARIO:START:", Args: startArgs}); err != nil {
		return fmt.Errorf("starting scenario: %w", err)
	}

	next := 0
	for tick := uint64(0); ; tick++ {
		for next < len(s.Steps) && s.Steps[next].Tick == tick {
			r.step(s.Steps[next], tick)
			next++
		}
		if tick >= s.Ticks {
			break
		}
		r.tick(tick + 1)
	}
	if skipped := len(s.Steps) - next; skipped > 0 {
		r.logger.Warn("steps scheduled after the last tick were not run", "count", skipped, "ticks", s.Ticks)
	}

	if _, err := r.d.Dispatch(dispatcher.Event{Command: ":SCENARIO:END:"}); err != nil {
		return fmt.Errorf("ending scenario: %w", err)
	}
	return nil
}

func (r *Runner) step(st Step, tick uint64) {
	args := slices.Clone(st.Args)
	res, err := r.d.Dispatch(dispatcher.Event{Command: st.Command, Args: args, Tick: tick})
	if err != nil {
		r.logger.Error("step failed", "tick", tick, "command", st.Command, "error", err)
		return
	}
	if res != nil {
		r.logger.Info("step", "tick", tick, "command", st.Command, "result", res)
	}
}

func (r *Runner) tick(tick uint64) {
	res, err := r.d.Dispatch(dispatcher.Event{Command: ":TICK:", Tick: tick})
	if err != nil {
		r.logger.Error("tick failed", "tick", tick, "error", err)
		return
	}
	results, _ := res.([]board.Result)
	for _, br := range results {
		if br.Phase == board.PhaseBoarding {
			continue
		}
		r.logger.Info("boarding finished",
			"tick", tick,
			"boarder", br.Boarder,
			"phase", br.Phase,
			"code", br.Code,
			"steal", br.Steal,
			"skimmed", br.Skimmed)
	}
}

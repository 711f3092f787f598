package race

import (
	"context"
	"time"
)

// Ticker is the clock a Runner waits on between steps.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker firing every interval.
type TickerFactory func(interval time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(interval time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(interval)}
}

// Runner drives a Race on a ticker until it finishes or its context is cancelled.
type Runner struct {
	interval  time.Duration
	newTicker TickerFactory
}

// NewRunner creates a runner. A nil factory uses wall-clock tickers.
func NewRunner(interval time.Duration, factory TickerFactory) *Runner {
	if interval <= 0 {
		interval = DefaultConfig().TickInterval
	}
	if factory == nil {
		factory = NewTimeTicker
	}
	return &Runner{interval: interval, newTicker: factory}
}

// Run blocks until the race finishes. onTick receives the positions after every
// step, the final clamped step included. On cancellation Run returns ctx.Err()
// and no outcome, and onTick is not called again.
func (r *Runner) Run(ctx context.Context, race *Race, onTick func([]Contender)) (Outcome, error) {
	ticker := r.newTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-ticker.C():
			positions, outcome := race.Step()
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			if onTick != nil {
				onTick(positions)
			}
			if outcome != nil {
				return *outcome, nil
			}
		}
	}
}

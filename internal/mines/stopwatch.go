package mines

import (
	"time"

	"github.com/vancomm/minesweeper-engine/internal/observe"
)

// Stopwatch delivers ticks between Start and Stop. Stopping cancels the ticker
// instead of pausing it, so the next Start counts from zero again.
//
// Stopwatch is meant to be driven from the goroutine that owns the engine: the
// owner selects on C and calls [Engine.Tick].
type Stopwatch struct {
	interval time.Duration
	ticker   *time.Ticker
}

func NewStopwatch(interval time.Duration) *Stopwatch {
	return &Stopwatch{interval: interval}
}

func (s *Stopwatch) Start() {
	s.Stop()
	s.ticker = time.NewTicker(s.interval)
}

func (s *Stopwatch) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Stopwatch) Running() bool {
	return s.ticker != nil
}

// C returns the tick channel, or nil while the stopwatch is stopped so that a
// select on it blocks.
func (s *Stopwatch) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

// Follow starts the stopwatch whenever status becomes [Running] and stops it
// otherwise.
func (s *Stopwatch) Follow(status observe.Observable[Status]) (cancel func()) {
	return status.Subscribe(func(st Status) {
		switch {
		case st == Running && !s.Running():
			s.Start()
		case st != Running:
			s.Stop()
		}
	})
}

package store

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically drops idle sessions from a Store.
type Sweeper struct {
	scheduler *gocron.Scheduler
	store     Store
	idle      time.Duration
	now       func() time.Time
	onSweep   func(remaining int)
}

// NewSweeper builds a sweeper that removes sessions idle for longer than idle.
// onSweep, when non-nil, receives the session count after each run.
func NewSweeper(st Store, idle time.Duration, onSweep func(remaining int)) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     st,
		idle:      idle,
		now:       time.Now,
		onSweep:   onSweep,
	}
}

// Start schedules the sweep every interval without blocking.
func (w *Sweeper) Start(interval time.Duration) error {
	if _, err := w.scheduler.Every(interval).Do(w.RunOnce); err != nil {
		return err
	}
	w.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (w *Sweeper) Stop() { w.scheduler.Stop() }

// RunOnce performs a single sweep.
func (w *Sweeper) RunOnce() {
	dropped := w.store.Sweep(context.Background(), w.now().Add(-w.idle))
	remaining := w.store.Len()
	if dropped > 0 {
		log.Info().Int("dropped", dropped).Int("remaining", remaining).Msg("swept idle sessions")
	}
	if w.onSweep != nil {
		w.onSweep(remaining)
	}
}

package service

import (
	"context"
	"log"
	"time"
)

// RecurringWorkerConfig holds settings for the schedule sweep loop.
type RecurringWorkerConfig struct {
	PollInterval time.Duration
}

// RecurringWorker periodically sweeps due templates and fires them. It
// assumes a single running instance; there is no cross-process locking, so
// two concurrent sweeps of the same template could double-fire.
type RecurringWorker struct {
	recurring RecurringService
	cfg       RecurringWorkerConfig
}

// NewRecurringWorker creates a new RecurringWorker.
func NewRecurringWorker(recurring RecurringService, cfg RecurringWorkerConfig) *RecurringWorker {
	return &RecurringWorker{recurring: recurring, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled.
func (w *RecurringWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("recurringWorker: started (poll=%s)", w.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("recurringWorker: shutdown complete")
			return
		case <-ticker.C:
			if fired := w.recurring.RunDue(ctx); fired > 0 {
				log.Printf("recurringWorker: fired %d template(s)", fired)
			}
		}
	}
}

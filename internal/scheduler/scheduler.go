package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"officehub/internal/taskqueue"
)

// Scheduler manages time-based triggers
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start registers the periodic jobs and starts the cron loop. Every minute a
// time event is emitted for time-triggered rules and an expired-booking
// sweep is queued.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := taskqueue.EnqueueTimeEvent(); err != nil {
			log.Printf("SCHEDULER: Failed to enqueue time event: %v", err)
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := taskqueue.EnqueueBookingCleanup(); err != nil {
			log.Printf("SCHEDULER: Failed to enqueue booking cleanup: %v", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}

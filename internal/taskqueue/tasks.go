package taskqueue

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"officehub/internal/engine"
	"officehub/internal/rooms"
)

const (
	// TypeTimeEvent emits the current wall-clock minute as an automation
	// event so time-triggered rules fire.
	TypeTimeEvent = "automation:time_event"
	// TypeBookingCleanup removes expired meeting room bookings.
	TypeBookingCleanup = "rooms:cleanup_expired"
)

// Global instances - these should be initialized by the main application
var (
	ruleEngine  *engine.Engine
	roomService *rooms.Service
)

// SetGlobalInstances sets the engine and room service used by task handlers.
func SetGlobalInstances(eng *engine.Engine, roomsSvc *rooms.Service) {
	ruleEngine = eng
	roomService = roomsSvc
}

// EnqueueTimeEvent queues a time event task for the current minute.
func EnqueueTimeEvent() error {
	task := asynq.NewTask(TypeTimeEvent, nil)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(1), asynq.Timeout(10*time.Second))
	if err != nil {
		log.Printf("TASKQUEUE: Failed to enqueue time event: %v", err)
		return err
	}
	log.Printf("TASKQUEUE: Enqueued time event task %s", info.ID)
	return nil
}

// EnqueueBookingCleanup queues an expired-booking sweep.
func EnqueueBookingCleanup() error {
	task := asynq.NewTask(TypeBookingCleanup, nil)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(2), asynq.Timeout(30*time.Second))
	if err != nil {
		log.Printf("TASKQUEUE: Failed to enqueue booking cleanup: %v", err)
		return err
	}
	log.Printf("TASKQUEUE: Enqueued booking cleanup task %s", info.ID)
	return nil
}

// HandleTimeEvent feeds the current HH:MM into the rule engine. Rules with a
// time trigger and a matching "time" condition fire once per minute.
func HandleTimeEvent(ctx context.Context, t *asynq.Task) error {
	if ruleEngine == nil {
		log.Printf("TASKQUEUE: Engine not initialized, dropping time event")
		return nil
	}
	now := time.Now().Format("15:04")
	triggered := ruleEngine.ProcessEvent(ctx, "time", map[string]any{"time": now})
	log.Printf("TASKQUEUE: Time event %s triggered %d rule(s)", now, triggered)
	return nil
}

// HandleBookingCleanup sweeps meeting bookings whose end time has passed.
func HandleBookingCleanup(ctx context.Context, t *asynq.Task) error {
	if roomService == nil {
		log.Printf("TASKQUEUE: Room service not initialized, dropping cleanup task")
		return nil
	}
	removed, err := roomService.CleanupExpired(ctx, time.Now())
	if err != nil {
		log.Printf("TASKQUEUE: Booking cleanup failed: %v", err)
		return err
	}
	log.Printf("TASKQUEUE: Booking cleanup removed %d booking(s)", removed)
	return nil
}

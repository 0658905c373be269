package scheduler

import (
	"context"
	"sync"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	"github.com/arteon/exchange/internal/observability"
)

// Handler is invoked when a scheduled follow-up fires.
type Handler func(ctx context.Context, orderID string, fromState domorder.State) error

// Timer schedules follow-up actions on in-process timers. Timers do not
// survive a restart; the expiry check in the follow-up handler is
// state-based, so a replacement instance can reschedule pending follow-ups
// from storage at boot.
type Timer struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler Handler
	log     observability.Logger
	stopped bool
}

func NewTimer(handler Handler, logger observability.Logger) *Timer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Timer{
		timers:  make(map[string]*time.Timer),
		handler: handler,
		log:     logger.With(observability.F("component", "scheduler")),
	}
}

// Schedule arms a timer to fire at the given time. Scheduling again for the
// same order replaces the earlier timer.
func (t *Timer) Schedule(ctx context.Context, at time.Time, orderID string, fromState domorder.State) error {
	_ = ctx

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil
	}
	if prev, ok := t.timers[orderID]; ok {
		prev.Stop()
	}
	t.timers[orderID] = time.AfterFunc(delay, func() {
		t.fire(orderID, fromState)
	})

	t.log.Info("follow_up_scheduled",
		observability.F("order_id", orderID),
		observability.F("from_state", string(fromState)),
		observability.F("at", at),
	)
	return nil
}

func (t *Timer) fire(orderID string, fromState domorder.State) {
	t.mu.Lock()
	delete(t.timers, orderID)
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.handler(ctx, orderID, fromState); err != nil {
		t.log.Warn("follow_up_failed",
			observability.F("order_id", orderID),
			observability.F("error", err),
		)
	}
}

// Stop cancels all pending timers. In-flight handlers are not interrupted.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

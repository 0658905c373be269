package order

import (
	"context"
	"errors"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	domoutbox "github.com/arteon/exchange/internal/domain/outbox"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
	"github.com/arteon/exchange/internal/pkg/clock"
)

// LifecycleService drives the non-submission state transitions. Approving
// or cancelling clears the expiration deadline; the already-scheduled
// follow-up then no-ops on its own.
type LifecycleService struct {
	repo      domorder.Repository
	publisher domoutbox.Publisher
	locks     Locker
	clock     clock.Clock
	log       observability.Logger
}

func NewLifecycleService(
	repo domorder.Repository,
	publisher domoutbox.Publisher,
	locks Locker,
	clk clock.Clock,
	logger observability.Logger,
) *LifecycleService {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LifecycleService{
		repo:      repo,
		publisher: publisher,
		locks:     locks,
		clock:     clk,
		log:       logger.With(observability.F("component", "order_lifecycle")),
	}
}

func (s *LifecycleService) Get(ctx context.Context, id string) (*domorder.Order, error) {
	if id == "" {
		return nil, errors.New("order: id is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *LifecycleService) Approve(ctx context.Context, id string) (*domorder.Order, error) {
	return s.transition(ctx, id, (*domorder.Order).Approve, "approved_by_partner")
}

func (s *LifecycleService) Cancel(ctx context.Context, id string) (*domorder.Order, error) {
	return s.transition(ctx, id, (*domorder.Order).Cancel, "cancelled_by_caller")
}

func (s *LifecycleService) transition(ctx context.Context, id string, apply func(*domorder.Order, time.Time) error, reason string) (*domorder.Order, error) {
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := apply(o, now); err != nil {
		return nil, domorder.NewOrderErrorData(domorder.CodeInvalidState, map[string]any{"state": string(o.State)}, err)
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := s.publisher.Publish(pubCtx, domorder.NewOrderStateChangedEvent(o, reason, now)); pubErr != nil {
			logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
				observability.F("event", "order."+string(o.State)),
				observability.F("order_id", o.ID),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	return o, nil
}

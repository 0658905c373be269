package order

import (
	"context"
	"fmt"

	domorder "github.com/arteon/exchange/internal/domain/order"
	domoutbox "github.com/arteon/exchange/internal/domain/outbox"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
	"github.com/arteon/exchange/internal/pkg/clock"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseOrderFollowUp = "order.follow_up"

// FollowUpAction is the outcome of a follow-up run.
type FollowUpAction string

const (
	FollowUpRejected FollowUpAction = "rejected"
	FollowUpSkipped  FollowUpAction = "skipped"
)

// FollowUpUseCase is the deferred action run when an order's state expires.
// Scheduling is at-least-once, so the handler is idempotent: it acts only
// when the order is still in the state it was scheduled from and that state
// has actually expired, and no-ops otherwise.
type FollowUpUseCase struct {
	repo      domorder.Repository
	publisher domoutbox.Publisher
	clock     clock.Clock
	tel       observability.Observability
	log       observability.Logger
}

func NewFollowUpUseCase(
	repo domorder.Repository,
	publisher domoutbox.Publisher,
	clk clock.Clock,
	tel observability.Observability,
) *FollowUpUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &FollowUpUseCase{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		tel:       tel,
		log:       tel.Logger().With(observability.F("service", orderService)),
	}
}

func (uc *FollowUpUseCase) Execute(ctx context.Context, orderID string, fromState domorder.State) (FollowUpAction, error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderFollowUp),
		observability.F("order_id", orderID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"OrderFollowUp",
		attribute.String("use_case", useCaseOrderFollowUp),
		attribute.String("order.id", orderID),
		attribute.String("order.from_state", string(fromState)),
	)
	defer span.End()

	o, err := uc.repo.Get(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("order: follow-up load: %w", err)
	}

	now := uc.clock.Now()
	if o.State != fromState || !o.Expired(now) {
		logger.Info("follow_up_skipped",
			observability.F("state", string(o.State)),
		)
		return FollowUpSkipped, nil
	}

	if err := o.Reject(now); err != nil {
		return "", fmt.Errorf("order: follow-up reject: %w", err)
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		return "", fmt.Errorf("order: follow-up update: %w", err)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := uc.publisher.Publish(pubCtx, domorder.NewOrderStateChangedEvent(o, "submission_expired", now)); pubErr != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", "order.rejected"),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	logger.Info("follow_up_rejected")
	return FollowUpRejected, nil
}

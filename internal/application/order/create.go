package order

import (
	"context"
	"errors"
	"fmt"

	domorder "github.com/arteon/exchange/internal/domain/order"
	domoutbox "github.com/arteon/exchange/internal/domain/outbox"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
	"github.com/arteon/exchange/internal/pkg/clock"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const useCaseOrderCreate = "order.create"

// CreateOrderUseCase creates a PENDING order with its line items. Requests
// carrying an idempotency key replay the previously created order instead
// of creating a duplicate.
type CreateOrderUseCase struct {
	repo        domorder.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	clock       clock.Clock
	tel         observability.Observability

	log        observability.Logger
	reqCounter observability.Counter
}

func NewCreateOrderUseCase(
	repo domorder.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	clk clock.Clock,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &CreateOrderUseCase{
		repo:        repo,
		idGenerator: idGen,
		publisher:   publisher,
		clock:       clk,
		tel:         tel,
		log:         tel.Logger().With(observability.F("service", orderService)),
		reqCounter:  tel.Metrics().Counter(observability.MUsecaseRequests),
	}
}

type LineItemInput struct {
	ArtworkID    string
	EditionSetID string
	PriceCents   *int64
	Quantity     int64
}

type CreateOrderInput struct {
	IdempotencyKey     string
	PartnerID          string
	CreditCardID       string
	CurrencyCode       string
	FulfillmentType    domorder.FulfillmentType
	TaxTotalCents      *int64
	ShippingTotalCents *int64
	LineItems          []LineItemInput
}

type CreateOrderResult struct {
	OrderID string
	State   domorder.State
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.partner_id", cmd.PartnerID),
	)
	outcome := "success"
	defer func() {
		span.End()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
	}()

	if cmd.IdempotencyKey != "" {
		existing, lookupErr := uc.repo.FindByIdempotency(ctx, cmd.IdempotencyKey)
		switch {
		case lookupErr == nil:
			span.AddEvent("order.idempotent_replay",
				trace.WithAttributes(attribute.String("order.id", existing.ID)),
			)
			return &CreateOrderResult{OrderID: existing.ID, State: existing.State}, nil
		case errors.Is(lookupErr, domorder.ErrNotFound):
			// continue
		default:
			outcome = "error"
			return nil, fmt.Errorf("order: idempotency lookup: %w", lookupErr)
		}
	}

	items := make([]domorder.LineItem, 0, len(cmd.LineItems))
	for _, li := range cmd.LineItems {
		items = append(items, domorder.LineItem{
			ID:           uc.idGenerator.NewID(),
			ArtworkID:    li.ArtworkID,
			EditionSetID: li.EditionSetID,
			PriceCents:   li.PriceCents,
			Quantity:     li.Quantity,
		})
	}

	now := uc.clock.Now()
	entity, err := domorder.New(
		uc.idGenerator.NewID(),
		cmd.PartnerID,
		cmd.CreditCardID,
		cmd.CurrencyCode,
		cmd.FulfillmentType,
		cmd.IdempotencyKey,
		items,
		now,
	)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	entity.TaxTotalCents = cmd.TaxTotalCents
	entity.ShippingTotalCents = cmd.ShippingTotalCents

	if err := uc.repo.Insert(ctx, entity); err != nil {
		if errors.Is(err, domorder.ErrConflict) && cmd.IdempotencyKey != "" {
			if existing, lookupErr := uc.repo.FindByIdempotency(ctx, cmd.IdempotencyKey); lookupErr == nil {
				span.AddEvent("order.idempotent_replay",
					trace.WithAttributes(attribute.String("order.id", existing.ID)),
				)
				return &CreateOrderResult{OrderID: existing.ID, State: existing.State}, nil
			}
		}
		outcome = "error"
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := uc.publisher.Publish(pubCtx, domorder.NewOrderCreatedEvent(entity, now)); pubErr != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", "order.created"),
				observability.F("order_id", entity.ID),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	span.SetAttributes(attribute.String("order.id", entity.ID))
	return &CreateOrderResult{OrderID: entity.ID, State: entity.State}, nil
}

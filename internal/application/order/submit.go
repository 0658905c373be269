package order

import (
	"context"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	domoutbox "github.com/arteon/exchange/internal/domain/outbox"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
	"github.com/arteon/exchange/internal/pkg/clock"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderSubmit = "order.submit"
	spanPrefix         = "UC."
	publishTimeout     = 300 * time.Millisecond
)

// SubmitOrderUseCase runs the full submission workflow: state check,
// partner and card resolution, fee computation, inventory deduction,
// payment hold, state transition, follow-up scheduling, and notification.
// From the caller's view the sequence is all-or-nothing except for the fee
// fields, which may legitimately remain persisted on failure (recomputation
// is idempotent and cheap).
type SubmitOrderUseCase struct {
	repo      domorder.Repository
	partners  PartnerService
	fees      *FeeCalculator
	inventory *InventoryCoordinator
	payments  *PaymentAuthorizer
	scheduler Scheduler
	publisher domoutbox.Publisher
	locks     Locker
	clock     clock.Clock
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewSubmitOrderUseCase(
	repo domorder.Repository,
	partners PartnerService,
	fees *FeeCalculator,
	inventory *InventoryCoordinator,
	payments *PaymentAuthorizer,
	scheduler Scheduler,
	publisher domoutbox.Publisher,
	locks Locker,
	clk clock.Clock,
	tel observability.Observability,
) *SubmitOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	log := tel.Logger().With(observability.F("service", orderService))
	metrics := tel.Metrics()

	return &SubmitOrderUseCase{
		repo:         repo,
		partners:     partners,
		fees:         fees,
		inventory:    inventory,
		payments:     payments,
		scheduler:    scheduler,
		publisher:    publisher,
		locks:        locks,
		clock:        clk,
		tel:          tel,
		log:          log,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

type SubmitOrderResult struct {
	OrderID          string
	State            domorder.State
	ExternalChargeID string
	StateExpiresAt   *time.Time
}

// Execute submits the order identified by orderID.
func (uc *SubmitOrderUseCase) Execute(ctx context.Context, orderID string) (_ *SubmitOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderSubmit),
		observability.F("order_id", orderID),
	)

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"SubmitOrder",
		attribute.String("use_case", useCaseOrderSubmit),
		attribute.String("order.id", orderID),
	)
	start := uc.clock.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderSubmit),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCaseOrderSubmit),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	ctx = logctx.With(ctx, logger)

	release, err := uc.locks.Acquire(ctx, orderID)
	if err != nil {
		outcome, statusText = "error", "LOCK_FAILED"
		return nil, err
	}
	defer release()

	o, err := uc.repo.Get(ctx, orderID)
	if err != nil {
		outcome, statusText = "error", "ORDER_LOAD_FAILED"
		return nil, err
	}

	if o.State != domorder.StatePending {
		outcome, statusText = "error", "INVALID_STATE"
		return nil, domorder.NewOrderErrorData(domorder.CodeInvalidState, map[string]any{"state": string(o.State)}, nil)
	}

	p, err := uc.partners.GetPartner(ctx, o.PartnerID)
	if err != nil {
		outcome, statusText = "error", "PARTNER_LOOKUP_FAILED"
		return nil, domorder.NewOrderError(domorder.CodePartnerUnavailable, err)
	}
	merchant := p.MerchantAccountFor(o.CurrencyCode)
	if merchant == nil {
		outcome, statusText = "error", "MERCHANT_ACCOUNT_MISSING"
		return nil, domorder.NewOrderErrorData(domorder.CodeMissingMerchantAccount, map[string]any{"partner_id": o.PartnerID}, nil)
	}

	card, err := uc.partners.GetCreditCard(ctx, o.CreditCardID)
	if err != nil {
		outcome, statusText = "error", "CREDIT_CARD_LOOKUP_FAILED"
		return nil, domorder.NewOrderError(domorder.CodeCreditCardUnavailable, err)
	}
	if err := ValidateCreditCard(card); err != nil {
		outcome, statusText = "error", "CREDIT_CARD_INVALID"
		return nil, err
	}

	// Both fees are computed against the order as loaded, then stored
	// together. The transaction fee therefore covers the pre-commission
	// buyer total; the charge below covers the post-commission one.
	commission, err := uc.fees.CommissionCents(ctx, o)
	if err != nil {
		outcome, statusText = "error", "COMMISSION_FAILED"
		return nil, err
	}
	transactionFee := uc.fees.TransactionFeeCents(o)
	o.SetFees(commission, transactionFee, uc.clock.Now())
	if err = uc.repo.Update(ctx, o); err != nil {
		outcome, statusText = "error", "FEES_PERSIST_FAILED"
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("order.commission_fee_cents", commission),
		attribute.Int64("order.transaction_fee_cents", transactionFee),
	)

	if err = uc.inventory.DeductAll(ctx, o); err != nil {
		outcome, statusText = "error", "INVENTORY_DEDUCTION_FAILED"
		return nil, err
	}

	hold, err := uc.payments.Hold(ctx, o, card, merchant)
	if err != nil {
		outcome, statusText = "error", "CHARGE_FAILED"
		return nil, err
	}
	span.AddEvent("order.hold_authorized",
		trace.WithAttributes(attribute.String("charge.external_id", hold.ExternalID)),
	)

	now := uc.clock.Now()
	o.SetExternalCharge(hold.ExternalID, now)
	if err = o.Submit(now); err != nil {
		outcome, statusText = "error", "STATE_TRANSITION_FAILED"
		return nil, err
	}
	if err = uc.repo.Update(ctx, o); err != nil {
		outcome, statusText = "error", "ORDER_UPDATE_FAILED"
		return nil, err
	}
	span.SetAttributes(attribute.String("order.state", string(o.State)))

	// The order is submitted and charged; follow-up scheduling and the
	// notification are recorded but never fail the submission. The
	// follow-up handler tolerates duplicate or missing runs.
	if schedErr := uc.scheduler.Schedule(ctx, *o.StateExpiresAt, o.ID, o.State); schedErr != nil {
		span.RecordError(schedErr)
		statusText = "FOLLOW_UP_SCHEDULE_FAILED"
		logger.Error("follow_up_schedule_failed",
			observability.F("error", schedErr.Error()),
		)
	}

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if pubErr := uc.publisher.Publish(pubCtx, domorder.NewOrderSubmittedEvent(o, now)); pubErr != nil {
			span.RecordError(pubErr)
			statusText = "EVENT_PUBLISH_FAILED"
			logger.Warn("event_publish_failed",
				observability.F("event", "order.submitted"),
				observability.F("error", pubErr.Error()),
			)
		}
		cancel()
	}

	return &SubmitOrderResult{
		OrderID:          o.ID,
		State:            o.State,
		ExternalChargeID: o.ExternalChargeID,
		StateExpiresAt:   o.StateExpiresAt,
	}, nil
}

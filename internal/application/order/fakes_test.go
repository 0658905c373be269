package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	domoutbox "github.com/arteon/exchange/internal/domain/outbox"
	dompartner "github.com/arteon/exchange/internal/domain/partner"
	dompayment "github.com/arteon/exchange/internal/domain/payment"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domorder.Order

	insertErr error
	updateErr error
}

func newFakeOrderRepo(orders ...*domorder.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]*domorder.Order)}
	for _, o := range orders {
		repo.orders[o.ID] = o.Clone()
	}
	return repo
}

func (r *fakeOrderRepo) Insert(_ context.Context, o *domorder.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return domorder.ErrConflict
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id string) (*domorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *domorder.Order) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return domorder.ErrNotFound
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *fakeOrderRepo) FindByIdempotency(_ context.Context, key string) (*domorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if key != "" && o.IdempotencyKey == key {
			return o.Clone(), nil
		}
	}
	return nil, domorder.ErrNotFound
}

func (r *fakeOrderRepo) stored(id string) *domorder.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Clone()
}

type fakePartnerService struct {
	partner    *dompartner.Partner
	partnerErr error
	card       *dompayment.CreditCard
	cardErr    error
}

func (s *fakePartnerService) GetPartner(context.Context, string) (*dompartner.Partner, error) {
	return s.partner, s.partnerErr
}

func (s *fakePartnerService) GetCreditCard(context.Context, string) (*dompayment.CreditCard, error) {
	return s.card, s.cardErr
}

type inventoryCall struct {
	op           string
	artworkID    string
	editionSetID string
	quantity     int64
}

type fakeInventoryClient struct {
	mu    sync.Mutex
	calls []inventoryCall

	// failDeductOn makes the deduct of the given artwork ID fail.
	failDeductOn string
}

func (c *fakeInventoryClient) record(call inventoryCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeInventoryClient) DeductArtwork(_ context.Context, artworkID string, quantity int64) error {
	c.record(inventoryCall{op: "deduct", artworkID: artworkID, quantity: quantity})
	if artworkID == c.failDeductOn {
		return fmt.Errorf("inventory api: /artwork/%s/inventory: unexpected status 422", artworkID)
	}
	return nil
}

func (c *fakeInventoryClient) DeductEditionSet(_ context.Context, artworkID, editionSetID string, quantity int64) error {
	c.record(inventoryCall{op: "deduct", artworkID: artworkID, editionSetID: editionSetID, quantity: quantity})
	if artworkID == c.failDeductOn {
		return fmt.Errorf("inventory api: edition set %s: unexpected status 422", editionSetID)
	}
	return nil
}

func (c *fakeInventoryClient) UndeductArtwork(_ context.Context, artworkID string, quantity int64) error {
	c.record(inventoryCall{op: "undeduct", artworkID: artworkID, quantity: quantity})
	return nil
}

func (c *fakeInventoryClient) UndeductEditionSet(_ context.Context, artworkID, editionSetID string, quantity int64) error {
	c.record(inventoryCall{op: "undeduct", artworkID: artworkID, editionSetID: editionSetID, quantity: quantity})
	return nil
}

type fakeGateway struct {
	hold *dompayment.Hold
	err  error

	mu     sync.Mutex
	params []dompayment.HoldParams
}

func (g *fakeGateway) AuthorizeHold(_ context.Context, p dompayment.HoldParams) (*dompayment.Hold, error) {
	g.mu.Lock()
	g.params = append(g.params, p)
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.hold, nil
}

type fakeTransactionRepo struct {
	mu        sync.Mutex
	rows      []*dompayment.Transaction
	insertErr error
}

func (r *fakeTransactionRepo) Insert(_ context.Context, tx *dompayment.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *tx
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *fakeTransactionRepo) ListByOrderID(_ context.Context, orderID string) ([]*dompayment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dompayment.Transaction
	for _, tx := range r.rows {
		if tx.OrderID == orderID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type scheduledFollowUp struct {
	at        time.Time
	orderID   string
	fromState domorder.State
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledFollowUp
	err       error
}

func (s *fakeScheduler) Schedule(_ context.Context, at time.Time, orderID string, fromState domorder.State) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledFollowUp{at: at, orderID: orderID, fromState: fromState})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *fakePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

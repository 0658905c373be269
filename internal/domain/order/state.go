package order

import "time"

// State is the order lifecycle state. SUBMITTED is the only expiring state;
// entering it stamps a deadline, leaving it clears the deadline.
type State string

const (
	StatePending   State = "pending"
	StateSubmitted State = "submitted"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
)

// ExpirationWindow is how long an expiring state may be held before the
// follow-up action runs.
const ExpirationWindow = 48 * time.Hour

func (s State) Expiring() bool { return s == StateSubmitted }

func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateRejected, StateCancelled:
		return true
	}
	return false
}

var legalTransitions = map[State][]State{
	StatePending:   {StateSubmitted, StateCancelled},
	StateSubmitted: {StateApproved, StateRejected, StateCancelled},
}

// Transition is the outcome of a legal state change: the new state plus the
// timestamps that must be written with it.
type Transition struct {
	State          State
	StateUpdatedAt time.Time
	StateExpiresAt *time.Time
}

// NextState computes the transition from one state to another. It is pure;
// callers apply the result to the aggregate and persist it.
func NextState(from, to State, now time.Time) (Transition, error) {
	legal := false
	for _, next := range legalTransitions[from] {
		if next == to {
			legal = true
			break
		}
	}
	if !legal {
		return Transition{}, ErrInvalidStateTransition
	}

	now = now.UTC()
	t := Transition{State: to, StateUpdatedAt: now}
	if to.Expiring() {
		expires := now.Add(ExpirationWindow)
		t.StateExpiresAt = &expires
	}
	return t, nil
}

func (o *Order) transitionTo(to State, now time.Time) error {
	t, err := NextState(o.State, to, now)
	if err != nil {
		return err
	}
	o.State = t.State
	o.StateUpdatedAt = t.StateUpdatedAt
	o.StateExpiresAt = t.StateExpiresAt
	o.UpdatedAt = t.StateUpdatedAt
	return nil
}

func (o *Order) Submit(now time.Time) error { return o.transitionTo(StateSubmitted, now) }

func (o *Order) Approve(now time.Time) error { return o.transitionTo(StateApproved, now) }

func (o *Order) Reject(now time.Time) error { return o.transitionTo(StateRejected, now) }

func (o *Order) Cancel(now time.Time) error { return o.transitionTo(StateCancelled, now) }

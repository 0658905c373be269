package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateTestNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNextState(t *testing.T) {
	t.Run("submitting stamps an expiry deadline", func(t *testing.T) {
		tr, err := NextState(StatePending, StateSubmitted, stateTestNow)
		require.NoError(t, err)

		assert.Equal(t, StateSubmitted, tr.State)
		assert.Equal(t, stateTestNow, tr.StateUpdatedAt)
		require.NotNil(t, tr.StateExpiresAt)
		assert.Equal(t, stateTestNow.Add(ExpirationWindow), *tr.StateExpiresAt)
	})

	t.Run("non-expiring states clear the deadline", func(t *testing.T) {
		for _, to := range []State{StateApproved, StateRejected, StateCancelled} {
			tr, err := NextState(StateSubmitted, to, stateTestNow)
			require.NoError(t, err)
			assert.Nil(t, tr.StateExpiresAt, "state %s", to)
		}
	})

	t.Run("illegal transitions are rejected", func(t *testing.T) {
		illegal := []struct{ from, to State }{
			{StatePending, StateApproved},
			{StatePending, StateRejected},
			{StateApproved, StateSubmitted},
			{StateRejected, StateApproved},
			{StateCancelled, StateSubmitted},
			{StateSubmitted, StateSubmitted},
		}
		for _, tc := range illegal {
			_, err := NextState(tc.from, tc.to, stateTestNow)
			assert.ErrorIs(t, err, ErrInvalidStateTransition, "%s -> %s", tc.from, tc.to)
		}
	})
}

func TestOrderSubmitLifecycle(t *testing.T) {
	o := testOrder(t, nil)
	require.Equal(t, StatePending, o.State)

	submitAt := stateTestNow.Add(time.Hour)
	require.NoError(t, o.Submit(submitAt))

	assert.Equal(t, StateSubmitted, o.State)
	assert.Equal(t, submitAt, o.StateUpdatedAt)
	require.NotNil(t, o.StateExpiresAt)
	assert.Equal(t, submitAt.Add(ExpirationWindow), *o.StateExpiresAt)

	approveAt := submitAt.Add(time.Hour)
	require.NoError(t, o.Approve(approveAt))
	assert.Equal(t, StateApproved, o.State)
	assert.Nil(t, o.StateExpiresAt)
	assert.Equal(t, approveAt, o.StateUpdatedAt)
}

func TestPendingCanBeCancelled(t *testing.T) {
	o := testOrder(t, nil)
	require.NoError(t, o.Cancel(stateTestNow))
	assert.Equal(t, StateCancelled, o.State)
	assert.True(t, o.State.Terminal())
}

func TestUnrelatedUpdatesDoNotTouchStateTimestamps(t *testing.T) {
	o := testOrder(t, nil)
	require.NoError(t, o.Submit(stateTestNow))

	stateUpdatedAt := o.StateUpdatedAt
	stateExpiresAt := *o.StateExpiresAt

	later := stateTestNow.Add(30 * time.Minute)
	o.SetFees(100, 50, later)
	o.SetExternalCharge("ch_1", later)

	assert.Equal(t, stateUpdatedAt, o.StateUpdatedAt)
	assert.Equal(t, stateExpiresAt, *o.StateExpiresAt)
	assert.Equal(t, later, o.UpdatedAt)
}

func TestExpired(t *testing.T) {
	o := testOrder(t, nil)
	require.NoError(t, o.Submit(stateTestNow))

	assert.False(t, o.Expired(stateTestNow))
	assert.False(t, o.Expired(stateTestNow.Add(ExpirationWindow-time.Second)))
	assert.True(t, o.Expired(stateTestNow.Add(ExpirationWindow)))
	assert.True(t, o.Expired(stateTestNow.Add(ExpirationWindow+time.Hour)))

	require.NoError(t, o.Approve(stateTestNow.Add(time.Hour)))
	assert.False(t, o.Expired(stateTestNow.Add(30*24*time.Hour)))
}

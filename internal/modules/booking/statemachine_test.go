package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"detailbook/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from domain.BookingStatus
		to   domain.BookingStatus
		ok   bool
	}{
		{"pending to confirmed", domain.BookingPending, domain.BookingConfirmed, true},
		{"pending to processing", domain.BookingPending, domain.BookingProcessing, true},
		{"processing to payment_failed", domain.BookingProcessing, domain.BookingPaymentFailed, true},
		{"payment_failed retry", domain.BookingPaymentFailed, domain.BookingProcessing, true},
		{"confirmed to in_progress", domain.BookingConfirmed, domain.BookingInProgress, true},
		{"confirmed back to pending", domain.BookingConfirmed, domain.BookingPending, true},
		{"in_progress to completed", domain.BookingInProgress, domain.BookingCompleted, true},
		{"rescheduled to confirmed", domain.BookingRescheduled, domain.BookingConfirmed, true},

		{"pending to in_progress skips confirmation", domain.BookingPending, domain.BookingInProgress, false},
		{"pending to completed", domain.BookingPending, domain.BookingCompleted, false},
		{"in_progress to confirmed", domain.BookingInProgress, domain.BookingConfirmed, false},
		{"completed is terminal", domain.BookingCompleted, domain.BookingConfirmed, false},
		{"cancelled is terminal", domain.BookingCancelled, domain.BookingPending, false},
		{"declined is terminal", domain.BookingDeclined, domain.BookingConfirmed, false},
		{"no_show is terminal", domain.BookingNoShow, domain.BookingConfirmed, false},
		{"self transition", domain.BookingConfirmed, domain.BookingConfirmed, false},
		{"unknown status", domain.BookingStatus("bogus"), domain.BookingConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
		})
	}
}

func TestAnyActiveStatusCanCancel(t *testing.T) {
	active := []domain.BookingStatus{
		domain.BookingPending,
		domain.BookingProcessing,
		domain.BookingPaymentFailed,
		domain.BookingConfirmed,
		domain.BookingRescheduled,
		domain.BookingInProgress,
	}
	for _, from := range active {
		assert.True(t, CanTransition(from, domain.BookingCancelled), "cancel from %s", from)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range []domain.BookingStatus{
		domain.BookingCompleted,
		domain.BookingCancelled,
		domain.BookingDeclined,
		domain.BookingNoShow,
	} {
		assert.True(t, from.IsTerminal())
		assert.Empty(t, allowedTransitions[from], "terminal %s must have no outgoing edges", from)
	}
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := checkTransition(domain.BookingCompleted, domain.BookingConfirmed)
	assert.EqualError(t, err, "invalid booking status transition: completed -> confirmed")
}

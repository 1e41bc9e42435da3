package booking

import (
	"fmt"

	"detailbook/internal/domain"
)

// allowedTransitions is the single source of truth for the booking
// lifecycle. Terminal states have no outgoing edges; cancel and no-show are
// reachable from every non-terminal state.
var allowedTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending: {
		domain.BookingConfirmed,
		domain.BookingProcessing,
		domain.BookingPaymentFailed,
		domain.BookingRescheduled,
		domain.BookingCancelled,
		domain.BookingDeclined,
		domain.BookingNoShow,
	},
	domain.BookingProcessing: {
		domain.BookingConfirmed,
		domain.BookingPaymentFailed,
		domain.BookingPending, // alignment correction
		domain.BookingCancelled,
		domain.BookingNoShow,
	},
	domain.BookingPaymentFailed: {
		domain.BookingProcessing, // payment retry
		domain.BookingConfirmed,  // admin confirms despite failed payment
		domain.BookingCancelled,
		domain.BookingDeclined,
		domain.BookingNoShow,
	},
	domain.BookingConfirmed: {
		domain.BookingRescheduled,
		domain.BookingInProgress,
		domain.BookingPending, // alignment correction: confirmed but unpaid
		domain.BookingCancelled,
		domain.BookingDeclined,
		domain.BookingNoShow,
	},
	domain.BookingRescheduled: {
		domain.BookingConfirmed,
		domain.BookingPending,
		domain.BookingCancelled,
		domain.BookingNoShow,
	},
	domain.BookingInProgress: {
		domain.BookingCompleted,
		domain.BookingCancelled,
		domain.BookingNoShow,
	},
	// terminal: completed, cancelled, declined, no_show
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to domain.BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError identifies the illegal (from, to) pair. Illegal
// requests are rejected, never coerced to a nearby legal state.
type InvalidTransitionError struct {
	From domain.BookingStatus
	To   domain.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition: %s -> %s", e.From, e.To)
}

func checkTransition(from, to domain.BookingStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

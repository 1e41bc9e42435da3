package booking

import (
	"context"

	"detailbook/internal/domain"
	"detailbook/internal/modules/events"
	"detailbook/internal/repository"
)

// BookingRepository is the persistence contract for bookings. Conditional
// writes (TransitionStatus, Reschedule) are atomic at the store: they either
// fully apply or report why they could not.
type BookingRepository interface {
	CreateWithSlot(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, ref string) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	ListByStatusUnpaid(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, actorID *int64, reason string, opts *repository.TransitionOpts) error
	Reschedule(ctx context.Context, id int64, from domain.BookingStatus, newSlot *domain.TimeSlot, actorID *int64, reason string) error
}

type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

type ServiceCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type HistoryReader interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingStatusHistory, error)
}

// EventPublisher pushes booking-change events to connected admin dashboards.
// Publishing must never block or fail the mutation that triggered it.
type EventPublisher interface {
	Publish(evt events.BookingEvent)
}

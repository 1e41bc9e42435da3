package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"detailbook/internal/domain"
	"detailbook/internal/metrics"
	"detailbook/internal/modules/events"
	"detailbook/internal/pkg/refcode"
	"detailbook/internal/repository"
)

type Service struct {
	bookings BookingRepository
	slots    SlotRepository
	services ServiceCatalog
	history  HistoryReader
	events   EventPublisher

	paymentDeadline time.Duration
	now             func() time.Time
}

func NewService(
	bookings BookingRepository,
	slots SlotRepository,
	services ServiceCatalog,
	history HistoryReader,
	events EventPublisher,
	paymentDeadline time.Duration,
) *Service {
	return &Service{
		bookings:        bookings,
		slots:           slots,
		services:        services,
		history:         history,
		events:          events,
		paymentDeadline: paymentDeadline,
		now:             time.Now,
	}
}

// Create books a slot for a customer. The slot reservation inside
// CreateWithSlot is a conditional update, so two simultaneous requests for
// the same slot produce exactly one booking and one ErrSlotConflict.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateBookingRequest) (*domain.Booking, error) {
	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if slot.StartTime.Before(s.now().UTC()) {
		return nil, ErrValidation
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrValidation
		}
		return nil, err
	}
	// Deactivated packages stay bookable in old client sessions; reject them
	// the same way as an unknown service id.
	if !svc.Active {
		return nil, ErrValidation
	}

	status := domain.BookingPending
	var deadline *time.Time
	if req.InitiatePayment {
		status = domain.BookingProcessing
		d := s.now().UTC().Add(s.paymentDeadline)
		deadline = &d
	}

	b := &domain.Booking{
		ReferenceCode:   refcode.New(),
		CustomerID:      customerID,
		SlotID:          slot.ID,
		ServiceID:       svc.ID,
		ScheduledDate:   slot.Date,
		ScheduledStart:  slot.StartTime,
		ScheduledEnd:    slot.EndTime,
		Status:          status,
		PaymentStatus:   domain.PaymentPending,
		TotalPrice:      svc.Price,
		PaymentDeadline: deadline,
		VehicleType:     req.VehicleType,
		Address:         req.Address,
		AdminNotes:      req.Notes,
	}

	if err := s.bookings.CreateWithSlot(ctx, b); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotUnavailable):
			metrics.IncSlotConflict()
			return nil, ErrSlotConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		// Reference codes collide rarely; retry once with a fresh one.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			b.ReferenceCode = refcode.New()
			if err := s.bookings.CreateWithSlot(ctx, b); err != nil {
				if errors.Is(err, repository.ErrSlotUnavailable) {
					metrics.IncSlotConflict()
					return nil, ErrSlotConflict
				}
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	metrics.IncBookingCreated(string(b.Status))
	s.publish(events.BookingEvent{
		Type:      events.EventBookingCreated,
		BookingID: b.ID,
		Reference: b.ReferenceCode,
		Status:    b.Status,
	})
	return b, nil
}

// Transition is the single entry point for every status change: admin
// actions, payment webhooks and the alignment repair all come through here.
func (s *Service) Transition(ctx context.Context, bookingID int64, to domain.BookingStatus, actorID *int64, reason string) (*domain.Booking, error) {
	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, to, actorID, reason, nil)
}

func (s *Service) transition(ctx context.Context, b *domain.Booking, to domain.BookingStatus, actorID *int64, reason string, opts *repository.TransitionOpts) (*domain.Booking, error) {
	if err := checkTransition(b.Status, to); err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &repository.TransitionOpts{}
	}
	switch to {
	case domain.BookingPaymentFailed:
		failed := domain.PaymentFailed
		opts.PaymentStatus = &failed
	case domain.BookingPending:
		// Alignment correction: a booking pulled back to pending gets a
		// payment deadline if it never had one.
		if b.PaymentDeadline == nil {
			d := b.CreatedAt.Add(s.paymentDeadline)
			opts.PaymentDeadline = &d
			opts.SetDeadline = true
		}
	case domain.BookingCancelled:
		now := s.now().UTC()
		opts.CancelledAt = &now
		if opts.CancellationReason == "" {
			opts.CancellationReason = reason
		}
	}

	err := s.bookings.TransitionStatus(ctx, b.ID, b.Status, to, actorID, reason, opts)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, ErrStaleStatus
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	metrics.IncStatusTransition(string(to))
	updated, err := s.getByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.publish(events.BookingEvent{
		Type:      events.EventBookingTransition,
		BookingID: updated.ID,
		Reference: updated.ReferenceCode,
		Status:    updated.Status,
	})
	return updated, nil
}

// Cancel releases the slot and moves the booking to cancelled with an
// audited reason. Any non-terminal booking is cancellable.
func (s *Service) Cancel(ctx context.Context, bookingID int64, actorID *int64, reason string, refundAmount float64) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrValidation
	}
	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	opts := &repository.TransitionOpts{CancellationReason: reason}
	if refundAmount > 0 {
		if refundAmount > b.TotalPrice {
			return nil, ErrValidation
		}
		refunded := domain.PaymentRefunded
		opts.PaymentStatus = &refunded
		reason = fmt.Sprintf("%s (refund: %.2f)", reason, refundAmount)
	}
	return s.transition(ctx, b, domain.BookingCancelled, actorID, reason, opts)
}

// Reschedule moves a pending or confirmed booking onto a new slot. The new
// slot is reserved before the old one is released; if that reservation
// fails, nothing changes.
func (s *Service) Reschedule(ctx context.Context, bookingID, newSlotID int64, actorID *int64, reason string) (*domain.Booking, error) {
	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(b.Status, domain.BookingRescheduled); err != nil {
		return nil, err
	}
	if b.SlotID == newSlotID {
		return nil, ErrValidation
	}

	newSlot, err := s.slots.GetByID(ctx, newSlotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if newSlot.StartTime.Before(s.now().UTC()) {
		return nil, ErrValidation
	}

	err = s.bookings.Reschedule(ctx, b.ID, b.Status, newSlot, actorID, reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotUnavailable):
			metrics.IncSlotConflict()
			return nil, ErrSlotConflict
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, ErrStaleStatus
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	metrics.IncStatusTransition(string(domain.BookingRescheduled))
	updated, err := s.getByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	s.publish(events.BookingEvent{
		Type:      events.EventBookingReschedule,
		BookingID: updated.ID,
		Reference: updated.ReferenceCode,
		Status:    updated.Status,
	})
	return updated, nil
}

// HandlePaymentWebhook applies an external payment outcome. Repeated
// deliveries of the same outcome are absorbed silently.
func (s *Service) HandlePaymentWebhook(ctx context.Context, req PaymentWebhookRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByReference(ctx, req.ReferenceCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch req.Outcome {
	case "paid":
		if b.Status == domain.BookingConfirmed && b.PaymentStatus == domain.PaymentPaid {
			return b, nil
		}
		paid := domain.PaymentPaid
		return s.transition(ctx, b, domain.BookingConfirmed, nil, "payment confirmed", &repository.TransitionOpts{PaymentStatus: &paid})
	case "failed":
		if b.Status == domain.BookingPaymentFailed {
			return b, nil
		}
		return s.transition(ctx, b, domain.BookingPaymentFailed, nil, "payment failed", nil)
	default:
		return nil, ErrValidation
	}
}

// AlignStatuses is the one-off repair for historically miscategorized
// bookings: confirmed but never paid goes back to pending, through the
// normal transition entry point so every correction lands in the audit
// trail. Safe to run repeatedly.
func (s *Service) AlignStatuses(ctx context.Context, actorID *int64) (int, error) {
	stale, err := s.bookings.ListByStatusUnpaid(ctx, domain.BookingConfirmed)
	if err != nil {
		return 0, err
	}

	corrected := 0
	for i := range stale {
		b := stale[i]
		if _, err := s.transition(ctx, &b, domain.BookingPending, actorID, "status alignment: confirmed but unpaid", nil); err != nil {
			// A concurrent change is not a failure of the repair itself.
			if errors.Is(err, ErrStaleStatus) {
				continue
			}
			return corrected, err
		}
		corrected++
	}
	return corrected, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.getByID(ctx, id)
}

// GetDetail returns the booking together with its full status history.
func (s *Service) GetDetail(ctx context.Context, id int64) (*domain.Booking, []domain.BookingStatusHistory, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	hist, err := s.history.ListByBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, hist, nil
}

func (s *Service) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, f)
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.List(ctx, repository.BookingFilter{
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Service) getByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) publish(evt events.BookingEvent) {
	if s.events != nil {
		s.events.Publish(evt)
	}
}

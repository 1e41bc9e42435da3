package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"detailbook/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	ReferenceCode      string     `gorm:"column:reference_code"`
	CustomerID         int64      `gorm:"column:customer_id"`
	SlotID             int64      `gorm:"column:slot_id"`
	ServiceID          int64      `gorm:"column:service_id"`
	ScheduledDate      time.Time  `gorm:"column:scheduled_date"`
	ScheduledStart     time.Time  `gorm:"column:scheduled_start"`
	ScheduledEnd       time.Time  `gorm:"column:scheduled_end"`
	Status             string     `gorm:"column:status"`
	PaymentStatus      string     `gorm:"column:payment_status"`
	TotalPrice         float64    `gorm:"column:total_price"`
	PaymentDeadline    *time.Time `gorm:"column:payment_deadline"`
	VehicleType        *string    `gorm:"column:vehicle_type"`
	Address            *string    `gorm:"column:address"`
	AdminNotes         *string    `gorm:"column:admin_notes"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func strOrEmpty(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                 m.ID,
		ReferenceCode:      m.ReferenceCode,
		CustomerID:         m.CustomerID,
		SlotID:             m.SlotID,
		ServiceID:          m.ServiceID,
		ScheduledDate:      m.ScheduledDate,
		ScheduledStart:     m.ScheduledStart,
		ScheduledEnd:       m.ScheduledEnd,
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		TotalPrice:         m.TotalPrice,
		PaymentDeadline:    m.PaymentDeadline,
		VehicleType:        strOrEmpty(m.VehicleType),
		Address:            strOrEmpty(m.Address),
		AdminNotes:         strOrEmpty(m.AdminNotes),
		CancellationReason: strOrEmpty(m.CancellationReason),
		CancelledAt:        m.CancelledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                 b.ID,
		ReferenceCode:      b.ReferenceCode,
		CustomerID:         b.CustomerID,
		SlotID:             b.SlotID,
		ServiceID:          b.ServiceID,
		ScheduledDate:      b.ScheduledDate,
		ScheduledStart:     b.ScheduledStart,
		ScheduledEnd:       b.ScheduledEnd,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		TotalPrice:         b.TotalPrice,
		PaymentDeadline:    b.PaymentDeadline,
		VehicleType:        strOrNil(b.VehicleType),
		Address:            strOrNil(b.Address),
		AdminNotes:         strOrNil(b.AdminNotes),
		CancellationReason: strOrNil(b.CancellationReason),
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// CreateWithSlot inserts the booking and reserves its slot in one
// transaction. The reserve is a conditional update keyed on the availability
// flag, so two racing requests for the same slot get exactly one success and
// one ErrSlotUnavailable.
func (r *BookingRepository) CreateWithSlot(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		res := tx.Model(&timeSlotModel{}).
			Where("id = ? AND is_available = ?", b.SlotID, true).
			Updates(map[string]interface{}{
				"is_available": false,
				"booking_id":   m.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var cnt int64
			if err := tx.Model(&timeSlotModel{}).Where("id = ?", b.SlotID).Count(&cnt).Error; err != nil {
				return err
			}
			if cnt == 0 {
				return ErrNotFound
			}
			return ErrSlotUnavailable
		}

		hist := historyModel{
			BookingID:  m.ID,
			FromStatus: "",
			ToStatus:   m.Status,
			ActorID:    &m.CustomerID,
			Reason:     strOrNil("booking created"),
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}

		*b = *toDomainBooking(m)
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, ref string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("reference_code = ?", ref).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

type BookingFilter struct {
	Status     string
	CustomerID int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.DateFrom != nil {
		q = q.Where("scheduled_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("scheduled_date <= ?", *f.DateTo)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var models []bookingModel
	if err := q.Order("scheduled_start asc").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ListByStatusUnpaid returns bookings in the given status whose payment
// status is not yet paid. Used by the status alignment repair operation.
func (r *BookingRepository) ListByStatusUnpaid(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	var models []bookingModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND payment_status <> ?", string(status), string(domain.PaymentPaid)).
		Order("id asc").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// TransitionOpts carries optional column writes that must land in the same
// transaction as a status change.
type TransitionOpts struct {
	PaymentStatus      *domain.PaymentStatus
	PaymentDeadline    *time.Time
	SetDeadline        bool
	CancellationReason string
	CancelledAt        *time.Time
}

// TransitionStatus performs a conditional status update keyed on the expected
// current status, appends the history row, and applies the slot side effect
// for the target state, all in one transaction. A zero-row status update
// means the booking moved concurrently: the caller gets ErrStaleStatus and
// nothing is written.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus, actorID *int64, reason string, upd *TransitionOpts) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		}
		if upd != nil {
			if upd.PaymentStatus != nil {
				updates["payment_status"] = string(*upd.PaymentStatus)
			}
			if upd.SetDeadline {
				updates["payment_deadline"] = upd.PaymentDeadline
			}
			if upd.CancellationReason != "" {
				updates["cancellation_reason"] = upd.CancellationReason
			}
			if upd.CancelledAt != nil {
				updates["cancelled_at"] = upd.CancelledAt
			}
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var cnt int64
			if err := tx.Model(&bookingModel{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
				return err
			}
			if cnt == 0 {
				return ErrNotFound
			}
			return ErrStaleStatus
		}

		if to.ReleasesSlot() {
			var m bookingModel
			if err := tx.First(&m, id).Error; err != nil {
				return err
			}
			if err := tx.Model(&timeSlotModel{}).
				Where("id = ?", m.SlotID).
				Updates(map[string]interface{}{
					"is_available": true,
					"booking_id":   nil,
				}).Error; err != nil {
				return err
			}
		}

		hist := historyModel{
			BookingID:  id,
			FromStatus: string(from),
			ToStatus:   string(to),
			ActorID:    actorID,
			Reason:     strOrNil(reason),
		}
		return tx.Create(&hist).Error
	})
}

// Reschedule moves the booking onto newSlot in one transaction: rewrite the
// denormalized schedule columns, reserve the new slot (conditional), release
// the old one, and append both history legs. The booking write is keyed on
// the expected status and current slot, so a booking that moved concurrently
// yields ErrStaleStatus and the transaction rolls back with nothing changed.
func (r *BookingRepository) Reschedule(ctx context.Context, id int64, from domain.BookingStatus, newSlot *domain.TimeSlot, actorID *int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		oldSlotID := m.SlotID

		// Under read committed a concurrent cancel or reschedule can commit
		// between the read above and this write. Keying on (status, slot_id)
		// makes the update match zero rows in that case instead of stomping
		// the newer row version.
		upd := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ? AND slot_id = ?", id, string(from), oldSlotID).
			Updates(map[string]interface{}{
				"slot_id":         newSlot.ID,
				"scheduled_date":  newSlot.Date,
				"scheduled_start": newSlot.StartTime,
				"scheduled_end":   newSlot.EndTime,
				"updated_at":      time.Now(),
			})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrStaleStatus
		}

		res := tx.Model(&timeSlotModel{}).
			Where("id = ? AND is_available = ?", newSlot.ID, true).
			Updates(map[string]interface{}{
				"is_available": false,
				"booking_id":   id,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotUnavailable
		}

		if err := tx.Model(&timeSlotModel{}).
			Where("id = ?", oldSlotID).
			Updates(map[string]interface{}{
				"is_available": true,
				"booking_id":   nil,
			}).Error; err != nil {
			return err
		}

		// The status passes through rescheduled and lands back where it was;
		// both legs go into the audit trail.
		legs := []historyModel{
			{BookingID: id, FromStatus: string(from), ToStatus: string(domain.BookingRescheduled), ActorID: actorID, Reason: strOrNil(reason)},
			{BookingID: id, FromStatus: string(domain.BookingRescheduled), ToStatus: string(from), ActorID: actorID},
		}
		return tx.Create(&legs).Error
	})
}

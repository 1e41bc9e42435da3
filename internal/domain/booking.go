package domain

import "time"

type BookingStatus string

const (
	BookingPending       BookingStatus = "pending"
	BookingProcessing    BookingStatus = "processing"
	BookingPaymentFailed BookingStatus = "payment_failed"
	BookingConfirmed     BookingStatus = "confirmed"
	BookingRescheduled   BookingStatus = "rescheduled"
	BookingInProgress    BookingStatus = "in_progress"
	BookingCompleted     BookingStatus = "completed"
	BookingDeclined      BookingStatus = "declined"
	BookingCancelled     BookingStatus = "cancelled"
	BookingNoShow        BookingStatus = "no_show"
)

// IsTerminal reports whether no further transition is permitted out of s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingDeclined, BookingNoShow:
		return true
	}
	return false
}

// ReleasesSlot reports whether entering s must free the reserved slot.
// Every terminal state returns the window to the calendar; the booking row
// itself persists for history.
func (s BookingStatus) ReleasesSlot() bool {
	return s.IsTerminal()
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID            int64         `json:"id"`
	ReferenceCode string        `json:"reference_code" gorm:"uniqueIndex;size:16"`
	CustomerID    int64         `json:"customer_id" validate:"required"`
	SlotID        int64         `json:"slot_id" validate:"required"`
	ServiceID     int64         `json:"service_id"`

	// Denormalized copy of the slot window at booking time. Survives slot
	// mutation so history stays truthful after reschedules.
	ScheduledDate  time.Time `json:"scheduled_date"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`

	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	TotalPrice      float64       `json:"total_price"`
	PaymentDeadline *time.Time    `json:"payment_deadline,omitempty"`

	VehicleType string `json:"vehicle_type,omitempty"`
	Address     string `json:"address,omitempty"`
	AdminNotes  string `json:"admin_notes,omitempty" gorm:"type:text"`

	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Customer *User     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Slot     *TimeSlot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
}

// BookingStatusHistory is the append-only audit trail of status transitions.
// Rows are never mutated or deleted.
type BookingStatusHistory struct {
	ID         int64         `json:"id"`
	BookingID  int64         `json:"booking_id"`
	FromStatus BookingStatus `json:"from_status"`
	ToStatus   BookingStatus `json:"to_status"`
	ActorID    *int64        `json:"actor_id,omitempty"`
	Reason     string        `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at"`
}

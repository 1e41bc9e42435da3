package domain

import "time"

// TimeSlot is a bookable calendar window. IsAvailable is flipped by reservation
// and release only; it must be true iff no active booking references the slot.
type TimeSlot struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	BookingID   *int64    `json:"booking_id,omitempty"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s TimeSlot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}

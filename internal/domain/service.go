package domain

import "time"

// Service is a detailing package offered for booking (exterior wash, full
// detail, ceramic coat and so on). Pricing administration is handled
// elsewhere; bookings only reference a service for price and duration.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	Price           float64   `json:"price" validate:"gte=0"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

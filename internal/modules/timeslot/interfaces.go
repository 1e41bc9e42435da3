package timeslot

import (
	"context"
	"time"

	"detailbook/internal/domain"
)

// SlotRepository is the persistence contract for the slot calendar.
type SlotRepository interface {
	Create(ctx context.Context, s *domain.TimeSlot) error
	CreateBatch(ctx context.Context, slots []domain.TimeSlot) error
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	QueryByDate(ctx context.Context, date time.Time) ([]domain.TimeSlot, error)
	QueryRange(ctx context.Context, from, to time.Time) ([]domain.TimeSlot, error)
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"detailbook/internal/domain"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type historyModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	BookingID  int64     `gorm:"column:booking_id;index"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	ActorID    *int64    `gorm:"column:actor_id"`
	Reason     *string   `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (historyModel) TableName() string { return "booking_status_histories" }

func toDomainHistory(m historyModel) domain.BookingStatusHistory {
	return domain.BookingStatusHistory{
		ID:         m.ID,
		BookingID:  m.BookingID,
		FromStatus: domain.BookingStatus(m.FromStatus),
		ToStatus:   domain.BookingStatus(m.ToStatus),
		ActorID:    m.ActorID,
		Reason:     strOrEmpty(m.Reason),
		CreatedAt:  m.CreatedAt,
	}
}

func (r *HistoryRepository) Append(ctx context.Context, h *domain.BookingStatusHistory) error {
	m := historyModel{
		BookingID:  h.BookingID,
		FromStatus: string(h.FromStatus),
		ToStatus:   string(h.ToStatus),
		ActorID:    h.ActorID,
		Reason:     strOrNil(h.Reason),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*h = toDomainHistory(m)
	return nil
}

func (r *HistoryRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingStatusHistory, error) {
	var models []historyModel
	tx := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id asc").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.BookingStatusHistory, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainHistory(m))
	}
	return out, nil
}

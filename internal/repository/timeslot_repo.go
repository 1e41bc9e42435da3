package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"detailbook/internal/domain"
)

type TimeSlotRepository struct {
	db *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

type timeSlotModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	Date        time.Time  `gorm:"column:date;index"`
	StartTime   time.Time  `gorm:"column:start_time"`
	EndTime     time.Time  `gorm:"column:end_time"`
	IsAvailable bool       `gorm:"column:is_available"`
	BookingID   *int64     `gorm:"column:booking_id"`
	CreatedBy   *int64     `gorm:"column:created_by"`
	Note        *string    `gorm:"column:note"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (timeSlotModel) TableName() string { return "time_slots" }

func toDomainSlot(m timeSlotModel) *domain.TimeSlot {
	var note string
	if m.Note != nil {
		note = *m.Note
	}
	return &domain.TimeSlot{
		ID:          m.ID,
		Date:        m.Date,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		IsAvailable: m.IsAvailable,
		BookingID:   m.BookingID,
		CreatedBy:   m.CreatedBy,
		Note:        note,
		CreatedAt:   m.CreatedAt,
	}
}

func toSlotModel(s *domain.TimeSlot) timeSlotModel {
	var note *string
	if s.Note != "" {
		v := s.Note
		note = &v
	}
	return timeSlotModel{
		ID:          s.ID,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsAvailable: s.IsAvailable,
		BookingID:   s.BookingID,
		CreatedBy:   s.CreatedBy,
		Note:        note,
		CreatedAt:   s.CreatedAt,
	}
}

func (r *TimeSlotRepository) Create(ctx context.Context, s *domain.TimeSlot) error {
	m := toSlotModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSlot(m)
	return nil
}

func (r *TimeSlotRepository) CreateBatch(ctx context.Context, slots []domain.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	models := make([]timeSlotModel, len(slots))
	for i := range slots {
		models[i] = toSlotModel(&slots[i])
	}
	tx := r.db.WithContext(ctx).Create(&models)
	if tx.Error != nil {
		return tx.Error
	}
	for i := range models {
		slots[i] = *toDomainSlot(models[i])
	}
	return nil
}

func (r *TimeSlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	var m timeSlotModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainSlot(m), nil
}

// Reserve flips the availability flag for slotID iff it is currently true.
// The WHERE clause makes this a single compare-and-swap at the store: two
// racing reservations cannot both match the row.
func (r *TimeSlotRepository) Reserve(ctx context.Context, slotID, bookingID int64) error {
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("id = ? AND is_available = ?", slotID, true).
		Updates(map[string]interface{}{
			"is_available": false,
			"booking_id":   bookingID,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).Model(&timeSlotModel{}).Where("id = ?", slotID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
		return ErrSlotUnavailable
	}
	return nil
}

// Release is idempotent: an already-available slot is left as is.
func (r *TimeSlotRepository) Release(ctx context.Context, slotID int64) error {
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("id = ?", slotID).
		Updates(map[string]interface{}{
			"is_available": true,
			"booking_id":   nil,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).Model(&timeSlotModel{}).Where("id = ?", slotID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *TimeSlotRepository) QueryByDate(ctx context.Context, date time.Time) ([]domain.TimeSlot, error) {
	var models []timeSlotModel
	tx := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("start_time asc").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.TimeSlot, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

func (r *TimeSlotRepository) QueryRange(ctx context.Context, from, to time.Time) ([]domain.TimeSlot, error) {
	var models []timeSlotModel
	tx := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date asc, start_time asc").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.TimeSlot, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

// CountAvailableByDate returns free-slot counts per day for a date range,
// without enumerating the slots themselves.
func (r *TimeSlotRepository) CountAvailableByDate(ctx context.Context, from, to time.Time) (map[string]int, error) {
	type row struct {
		Date  time.Time `gorm:"column:date"`
		Count int       `gorm:"column:count"`
	}
	var rows []row
	tx := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Select("date, count(1) as count").
		Where("date >= ? AND date <= ? AND is_available = ?", from, to, true).
		Group("date").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Date.Format("2006-01-02")] = r.Count
	}
	return out, nil
}

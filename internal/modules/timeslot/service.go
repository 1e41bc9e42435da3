package timeslot

import (
	"context"
	"errors"
	"time"

	"detailbook/internal/domain"
	"detailbook/internal/metrics"
	"detailbook/internal/repository"
)

const dateLayout = "2006-01-02"

type Service struct {
	slots SlotRepository
	now   func() time.Time
}

func NewService(slots SlotRepository) *Service {
	return &Service{
		slots: slots,
		now:   time.Now,
	}
}

// CreateSlot creates a single bookable window. Overlapping slots are allowed
// on purpose: parallel capacity at the same time is a scheduling decision,
// not an error.
func (s *Service) CreateSlot(ctx context.Context, actorID int64, req CreateSlotRequest) (*domain.TimeSlot, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}
	if date.Before(todayUTC(s.now())) {
		return nil, ErrValidation
	}
	if req.DurationMinutes <= 0 {
		return nil, ErrValidation
	}
	start, err := atTime(date, req.Start)
	if err != nil {
		return nil, ErrValidation
	}

	slot := &domain.TimeSlot{
		Date:        date,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(req.DurationMinutes) * time.Minute),
		IsAvailable: true,
		CreatedBy:   &actorID,
		Note:        req.Note,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	metrics.AddSlotsCreated(1)
	return slot, nil
}

// CreateSlots generates consecutive slots for every day in the range,
// stepping duration minutes from start to end. A trailing remainder shorter
// than the duration is dropped, not created. Days matching skip_weekday are
// skipped entirely.
func (s *Service) CreateSlots(ctx context.Context, actorID int64, req BulkCreateSlotsRequest) ([]domain.TimeSlot, error) {
	from, err := parseDate(req.DateFrom)
	if err != nil {
		return nil, ErrValidation
	}
	to := from
	if req.DateTo != "" {
		to, err = parseDate(req.DateTo)
		if err != nil {
			return nil, ErrValidation
		}
	}
	if to.Before(from) || from.Before(todayUTC(s.now())) {
		return nil, ErrValidation
	}
	if req.DurationMinutes <= 0 {
		return nil, ErrValidation
	}

	var slots []domain.TimeSlot
	step := time.Duration(req.DurationMinutes) * time.Minute

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if req.SkipWeekday != nil && int(day.Weekday()) == *req.SkipWeekday {
			continue
		}

		dayStart, err := atTime(day, req.StartTime)
		if err != nil {
			return nil, ErrValidation
		}
		dayEnd, err := atTime(day, req.EndTime)
		if err != nil {
			return nil, ErrValidation
		}
		if !dayEnd.After(dayStart) {
			return nil, ErrValidation
		}

		for cursor := dayStart; !cursor.Add(step).After(dayEnd); cursor = cursor.Add(step) {
			slots = append(slots, domain.TimeSlot{
				Date:        day,
				StartTime:   cursor,
				EndTime:     cursor.Add(step),
				IsAvailable: true,
				CreatedBy:   &actorID,
			})
		}
	}

	if err := s.slots.CreateBatch(ctx, slots); err != nil {
		return nil, err
	}
	metrics.AddSlotsCreated(len(slots))
	return slots, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return slot, nil
}

// Query returns all slots for a date, ordered by start time.
func (s *Service) Query(ctx context.Context, dateStr string) ([]domain.TimeSlot, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, ErrValidation
	}
	return s.slots.QueryByDate(ctx, date)
}

// QueryRange returns per-day slot lists for a date range.
func (s *Service) QueryRange(ctx context.Context, fromStr, toStr string) (map[string][]domain.TimeSlot, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return nil, ErrValidation
	}
	to, err := parseDate(toStr)
	if err != nil {
		return nil, ErrValidation
	}
	if to.Before(from) {
		return nil, ErrValidation
	}

	slots, err := s.slots.QueryRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.TimeSlot)
	for _, slot := range slots {
		key := slot.Date.Format(dateLayout)
		out[key] = append(out[key], slot)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

func atTime(date time.Time, hm string) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func todayUTC(now time.Time) time.Time {
	n := now.UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

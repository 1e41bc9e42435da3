package availability

import (
	"context"
	"errors"
	"time"

	"detailbook/internal/domain"
)

const dateLayout = "2006-01-02"

var ErrValidation = errors.New("validation error")

// SlotReader is the read side of the slot store the query service composes.
type SlotReader interface {
	QueryByDate(ctx context.Context, date time.Time) ([]domain.TimeSlot, error)
	CountAvailableByDate(ctx context.Context, from, to time.Time) (map[string]int, error)
}

// DaySummary reports the free-slot count for one day without enumerating
// the slots, for calendar overviews.
type DaySummary struct {
	Date      string `json:"date"`
	FreeSlots int    `json:"free_slots"`
}

type Service struct {
	slots SlotReader

	// Minimum lead time before a slot start that still permits same-day
	// booking: a slot starting in 40 minutes is not offered with a 60-minute
	// buffer, because last-minute jobs cannot be dispatched.
	bufferMinutes int
	windowDays    int

	now func() time.Time
}

func NewService(slots SlotReader, bufferMinutes, windowDays int) *Service {
	return &Service{
		slots:         slots,
		bufferMinutes: bufferMinutes,
		windowDays:    windowDays,
		now:           time.Now,
	}
}

// ForDate returns the available slots on a date. For today, slots starting
// before now+buffer are filtered out. Past dates are rejected; a date with
// no slots yields an empty list.
func (s *Service) ForDate(ctx context.Context, dateStr string, bufferMinutes int) ([]domain.TimeSlot, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, ErrValidation
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, ErrValidation
	}
	if bufferMinutes < 0 {
		bufferMinutes = s.bufferMinutes
	}

	slots, err := s.slots.QueryByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(time.Duration(bufferMinutes) * time.Minute)
	out := make([]domain.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsAvailable {
			continue
		}
		if date.Equal(today) && slot.StartTime.Before(cutoff) {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// ForRange returns per-day free-slot counts. Empty bounds fall back to the
// default customer window, today through today+windowDays.
func (s *Service) ForRange(ctx context.Context, fromStr, toStr string) ([]DaySummary, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	from := today
	to := today.AddDate(0, 0, s.windowDays)

	var err error
	if fromStr != "" {
		from, err = parseDate(fromStr)
		if err != nil {
			return nil, ErrValidation
		}
	}
	if toStr != "" {
		to, err = parseDate(toStr)
		if err != nil {
			return nil, ErrValidation
		}
	}
	if to.Before(from) || to.Before(today) {
		return nil, ErrValidation
	}

	counts, err := s.slots.CountAvailableByDate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]DaySummary, 0)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		out = append(out, DaySummary{Date: key, FreeSlots: counts[key]})
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

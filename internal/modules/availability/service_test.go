package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"detailbook/internal/domain"
)

type MockSlotReader struct {
	mock.Mock
}

func (m *MockSlotReader) QueryByDate(ctx context.Context, date time.Time) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockSlotReader) CountAvailableByDate(ctx context.Context, from, to time.Time) (map[string]int, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// fixedNow is 10:00 UTC so same-day buffer math is easy to follow.
var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newService(reader *MockSlotReader) *Service {
	svc := NewService(reader, 60, 14)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func slotAt(id int64, date time.Time, hour, min int, available bool) domain.TimeSlot {
	start := date.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	return domain.TimeSlot{
		ID:          id,
		Date:        date,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		IsAvailable: available,
	}
}

func TestForDate_FiltersReservedSlots(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	reader.On("QueryByDate", mock.Anything, tomorrow).Return([]domain.TimeSlot{
		slotAt(1, tomorrow, 9, 0, true),
		slotAt(2, tomorrow, 10, 0, false),
		slotAt(3, tomorrow, 11, 0, true),
	}, nil)

	slots, err := svc.ForDate(context.Background(), "2026-03-11", -1)

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, int64(1), slots[0].ID)
	assert.Equal(t, int64(3), slots[1].ID)
}

func TestForDate_SameDayBufferCutsNearSlots(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	// Now is 10:00. The 10:30 slot is inside the default 60-minute buffer.
	reader.On("QueryByDate", mock.Anything, today).Return([]domain.TimeSlot{
		slotAt(1, today, 10, 30, true),
		slotAt(2, today, 11, 0, true),
		slotAt(3, today, 13, 0, true),
	}, nil)

	slots, err := svc.ForDate(context.Background(), "2026-03-10", -1)

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, int64(2), slots[0].ID)
}

func TestForDate_BufferOverride(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	reader.On("QueryByDate", mock.Anything, today).Return([]domain.TimeSlot{
		slotAt(1, today, 10, 30, true),
	}, nil)

	// A 15-minute buffer keeps the 10:30 slot on offer.
	slots, err := svc.ForDate(context.Background(), "2026-03-10", 15)

	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestForDate_PastDateRejected(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	_, err := svc.ForDate(context.Background(), "2026-03-09", -1)

	assert.ErrorIs(t, err, ErrValidation)
	reader.AssertNotCalled(t, "QueryByDate", mock.Anything, mock.Anything)
}

func TestForDate_EmptyDayIsNotAnError(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	reader.On("QueryByDate", mock.Anything, tomorrow).Return([]domain.TimeSlot{}, nil)

	slots, err := svc.ForDate(context.Background(), "2026-03-11", -1)

	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestForRange_DefaultsToBookingWindow(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 14)
	reader.On("CountAvailableByDate", mock.Anything, today, end).Return(map[string]int{
		"2026-03-11": 3,
		"2026-03-12": 1,
	}, nil)

	days, err := svc.ForRange(context.Background(), "", "")

	require.NoError(t, err)
	require.Len(t, days, 15)
	assert.Equal(t, DaySummary{Date: "2026-03-10", FreeSlots: 0}, days[0])
	assert.Equal(t, DaySummary{Date: "2026-03-11", FreeSlots: 3}, days[1])
}

func TestForRange_ReversedBoundsRejected(t *testing.T) {
	reader := new(MockSlotReader)
	svc := newService(reader)

	_, err := svc.ForRange(context.Background(), "2026-03-15", "2026-03-12")

	assert.ErrorIs(t, err, ErrValidation)
}

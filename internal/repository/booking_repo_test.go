package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"detailbook/internal/database"
	"detailbook/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	// Each pooled connection would get its own empty in-memory database, so
	// cap the pool at one. Concurrent callers still race over the same rows.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSlot(t *testing.T, db *gorm.DB, startHour int) *domain.TimeSlot {
	t.Helper()
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	slot := &domain.TimeSlot{
		Date:        date,
		StartTime:   date.Add(time.Duration(startHour) * time.Hour),
		EndTime:     date.Add(time.Duration(startHour+2) * time.Hour),
		IsAvailable: true,
	}
	require.NoError(t, db.Create(slot).Error)
	return slot
}

func newBooking(slot *domain.TimeSlot, ref string) *domain.Booking {
	return &domain.Booking{
		ReferenceCode:  ref,
		CustomerID:     1,
		SlotID:         slot.ID,
		ServiceID:      1,
		ScheduledDate:  slot.Date,
		ScheduledStart: slot.StartTime,
		ScheduledEnd:   slot.EndTime,
		Status:         domain.BookingPending,
		PaymentStatus:  domain.PaymentPending,
		TotalPrice:     120,
	}
}

func TestCreateWithSlot(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	slots := NewTimeSlotRepository(db)
	ctx := context.Background()

	slot := seedSlot(t, db, 9)
	b := newBooking(slot, "DTL-AAAA0001")

	require.NoError(t, repo.CreateWithSlot(ctx, b))
	assert.NotZero(t, b.ID)

	got, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	require.NotNil(t, got.BookingID)
	assert.Equal(t, b.ID, *got.BookingID)

	// The same slot cannot be reserved twice.
	err = repo.CreateWithSlot(ctx, newBooking(slot, "DTL-AAAA0002"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// The losing request leaves no booking behind.
	_, err = repo.GetByReference(ctx, "DTL-AAAA0002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateWithSlot_MissingSlot(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)

	b := newBooking(&domain.TimeSlot{ID: 12345}, "DTL-AAAA0001")
	err := repo.CreateWithSlot(context.Background(), b)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionStatus_ConditionalOnCurrentStatus(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	history := NewHistoryRepository(db)
	ctx := context.Background()

	slot := seedSlot(t, db, 9)
	b := newBooking(slot, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, b))

	// Wrong expected status writes nothing.
	err := repo.TransitionStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingInProgress, nil, "", nil)
	assert.ErrorIs(t, err, ErrStaleStatus)

	hist, err := history.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "only the creation row")

	// Correct expected status succeeds and appends the audit row.
	require.NoError(t, repo.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, nil, "deposit received", nil))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	hist, err = history.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, domain.BookingPending, hist[1].FromStatus)
	assert.Equal(t, domain.BookingConfirmed, hist[1].ToStatus)
	assert.Equal(t, "deposit received", hist[1].Reason)
}

func TestTransitionStatus_TerminalReleasesSlot(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	slots := NewTimeSlotRepository(db)
	ctx := context.Background()

	slot := seedSlot(t, db, 9)
	b := newBooking(slot, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, b))

	now := time.Now().UTC()
	opts := &TransitionOpts{CancellationReason: "customer request", CancelledAt: &now}
	require.NoError(t, repo.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingCancelled, nil, "customer request", opts))

	got, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	assert.Nil(t, got.BookingID)

	cancelled, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer request", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestReschedule_SwapsSlotsAtomically(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	slots := NewTimeSlotRepository(db)
	history := NewHistoryRepository(db)
	ctx := context.Background()

	oldSlot := seedSlot(t, db, 9)
	newSlot := seedSlot(t, db, 14)
	b := newBooking(oldSlot, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, b))

	require.NoError(t, repo.Reschedule(ctx, b.ID, domain.BookingPending, newSlot, nil, "customer asked"))

	moved, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, newSlot.ID, moved.SlotID)
	assert.Equal(t, newSlot.StartTime.Unix(), moved.ScheduledStart.Unix())
	assert.Equal(t, domain.BookingPending, moved.Status, "status lands back where it was")

	freed, err := slots.GetByID(ctx, oldSlot.ID)
	require.NoError(t, err)
	assert.True(t, freed.IsAvailable)

	taken, err := slots.GetByID(ctx, newSlot.ID)
	require.NoError(t, err)
	assert.False(t, taken.IsAvailable)

	hist, err := history.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3, "creation plus both reschedule legs")
	assert.Equal(t, domain.BookingRescheduled, hist[1].ToStatus)
	assert.Equal(t, domain.BookingRescheduled, hist[2].FromStatus)
	assert.Equal(t, domain.BookingPending, hist[2].ToStatus)
}

func TestReschedule_TakenSlotRollsBack(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	slots := NewTimeSlotRepository(db)
	ctx := context.Background()

	oldSlot := seedSlot(t, db, 9)
	takenSlot := seedSlot(t, db, 14)
	b := newBooking(oldSlot, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, b))
	other := newBooking(takenSlot, "DTL-AAAA0002")
	require.NoError(t, repo.CreateWithSlot(ctx, other))

	err := repo.Reschedule(ctx, b.ID, domain.BookingPending, takenSlot, nil, "")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Nothing moved.
	unchanged, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, oldSlot.ID, unchanged.SlotID)

	stillMine, err := slots.GetByID(ctx, oldSlot.ID)
	require.NoError(t, err)
	assert.False(t, stillMine.IsAvailable)
	require.NotNil(t, stillMine.BookingID)
	assert.Equal(t, b.ID, *stillMine.BookingID)
}

func TestReschedule_StaleBookingRollsBack(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	slots := NewTimeSlotRepository(db)
	history := NewHistoryRepository(db)
	ctx := context.Background()

	oldSlot := seedSlot(t, db, 9)
	newSlot := seedSlot(t, db, 14)
	b := newBooking(oldSlot, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, b))

	// The booking moved on since the caller last saw it.
	require.NoError(t, repo.TransitionStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, nil, "", nil))

	err := repo.Reschedule(ctx, b.ID, domain.BookingPending, newSlot, nil, "")
	assert.ErrorIs(t, err, ErrStaleStatus)

	// The booking keeps its slot and the target slot stays free.
	unchanged, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, oldSlot.ID, unchanged.SlotID)
	assert.Equal(t, domain.BookingConfirmed, unchanged.Status)

	untouched, err := slots.GetByID(ctx, newSlot.ID)
	require.NoError(t, err)
	assert.True(t, untouched.IsAvailable)
	assert.Nil(t, untouched.BookingID)

	hist, err := history.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 2, "creation and the confirm, no reschedule legs")
}

func TestListByStatusUnpaid(t *testing.T) {
	db := setupDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	s1 := seedSlot(t, db, 9)
	s2 := seedSlot(t, db, 11)
	s3 := seedSlot(t, db, 14)

	unpaid := newBooking(s1, "DTL-AAAA0001")
	require.NoError(t, repo.CreateWithSlot(ctx, unpaid))
	require.NoError(t, repo.TransitionStatus(ctx, unpaid.ID, domain.BookingPending, domain.BookingConfirmed, nil, "", nil))

	paid := newBooking(s2, "DTL-AAAA0002")
	require.NoError(t, repo.CreateWithSlot(ctx, paid))
	paidStatus := domain.PaymentPaid
	require.NoError(t, repo.TransitionStatus(ctx, paid.ID, domain.BookingPending, domain.BookingConfirmed, nil, "", &TransitionOpts{PaymentStatus: &paidStatus}))

	pending := newBooking(s3, "DTL-AAAA0003")
	require.NoError(t, repo.CreateWithSlot(ctx, pending))

	got, err := repo.ListByStatusUnpaid(ctx, domain.BookingConfirmed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, unpaid.ID, got[0].ID)
}

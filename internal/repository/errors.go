package repository

import "errors"

var (
	// ErrSlotUnavailable means the conditional reserve matched zero rows
	// because another booking already holds the slot.
	ErrSlotUnavailable = errors.New("slot already reserved")

	// ErrStaleStatus means a conditional status update matched zero rows
	// because the booking is no longer in the expected status.
	ErrStaleStatus = errors.New("booking status changed concurrently")

	ErrNotFound = errors.New("record not found")
)

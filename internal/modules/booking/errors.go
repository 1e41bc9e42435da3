package booking

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("booking not found")
	ErrSlotConflict = errors.New("slot already reserved")
	ErrStaleStatus  = errors.New("booking status changed concurrently")
	ErrForbidden    = errors.New("forbidden")
)

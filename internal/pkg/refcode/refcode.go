package refcode

import (
	"strings"

	"github.com/google/uuid"
)

const prefix = "DTL-"

// New returns a human-readable booking reference like "DTL-9F2C41AB".
// Uniqueness is enforced by the bookings table, not here.
func New() string {
	id := uuid.New().String()
	return prefix + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

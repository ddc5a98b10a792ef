package store

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a time-ordered identifier without dashes.
func NewID() string {
	id := uuid.Must(uuid.NewV7())
	return strings.ReplaceAll(id.String(), "-", "")
}

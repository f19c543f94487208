package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// NormalizeCode trims and upper-cases employee codes so lookups and stored
// values agree.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

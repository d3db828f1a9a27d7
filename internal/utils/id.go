package utils

import "github.com/google/uuid"

// NewID returns a random identifier used to correlate log lines of one connection or request.
func NewID() string {
	return uuid.NewString()
}

// ShortID trims an identifier to its first block for compact log fields.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

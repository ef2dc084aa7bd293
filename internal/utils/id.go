package utils

import "github.com/google/uuid"

// NewConnectionID returns an identifier for a live transport session. It is
// ephemeral and distinct from any durable id the store assigns.
func NewConnectionID() string {
	return uuid.NewString()
}

package core

import "github.com/google/uuid"

// NewID returns a unique identifier. Horizon uses it for request correlation
// ids and auto-generated session ids.
func NewID() string {
	return uuid.NewString()
}

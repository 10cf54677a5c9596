package domain

import "github.com/google/uuid"

// NewID mints a new random identifier for configs, jobs, and pages.
func NewID() string {
	return uuid.New().String()
}

package common

import (
	"github.com/google/uuid"
)

// NewDemoID generates a unique demo session ID with the "demo_" prefix
// Format: demo_<uuid>
func NewDemoID() string {
	return "demo_" + uuid.New().String()
}

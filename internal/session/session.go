// Package session owns the per-session state: one Tabular Dataset and the
// bookkeeping around it. Sessions never share datasets; a new successful
// load replaces the session's dataset and a failed load leaves it untouched.
package session

import (
	"time"

	"github.com/google/uuid"

	"csv-chat/internal/dataset"
)

// Session is the unit of ownership for a loaded dataset.
type Session struct {
	ID           string           `json:"id"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastActiveAt time.Time        `json:"lastActiveAt"`
	Dataset      *dataset.Dataset `json:"dataset,omitempty"`
}

// New creates an empty session.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Touch updates the activity timestamp.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now().UTC()
}

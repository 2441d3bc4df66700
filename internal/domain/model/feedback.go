package model

import "time"

// Feedback is a free-form message a user left through the feedback flow.
// The text is stored as-is, no validation.
type Feedback struct {
	ID        string // UUID
	UserID    int64
	Message   string
	CreatedAt time.Time
}

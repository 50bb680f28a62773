package model

import "time"

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

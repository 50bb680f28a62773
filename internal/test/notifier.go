package test

import (
	"context"
	"sync"
)

// Notification is a captured Notify call.
type Notification struct {
	UserID int64
	Title  string
	Body   string
	Data   map[string]string
}

// NotifierStub records notifications for assertions.
type NotifierStub struct {
	mu   sync.Mutex
	sent []Notification
}

// Notify stores the notification.
func (n *NotifierStub) Notify(_ context.Context, userID int64, title, body string, data map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{UserID: userID, Title: title, Body: body, Data: data})
}

// Sent returns a copy of recorded notifications.
func (n *NotifierStub) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

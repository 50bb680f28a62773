package usecase

import "context"

// Notifier delivers a message to a user. Delivery is best effort and never
// reports failure back to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, body string, data map[string]string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, int64, string, string, map[string]string) {}

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewNotificationDispatcherDefaults(t *testing.T) {
	d := NewNotificationDispatcher(&testhelpers.PublisherStub{}, 0, 0, nil, nil)
	if d.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", d.workers)
	}
	if cap(d.jobs) != 1 {
		t.Fatalf("expected queue size default to 1, got %d", cap(d.jobs))
	}
	if d.logger == nil || d.observer == nil {
		t.Fatal("expected logger and observer defaults")
	}
}

func TestNotificationDispatcherPublishes(t *testing.T) {
	publisher := &testhelpers.PublisherStub{}
	observer := &testhelpers.ObserverStub{}
	d := NewNotificationDispatcher(publisher, 2, 8, observer, zap.NewNop())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	d.now = func() time.Time { return fixed }

	d.Start(context.Background())
	d.Notify(context.Background(), 7, "Order status updated", "Your order is SHIPPED", map[string]string{"order_id": "40"})
	d.Notify(context.Background(), 8, "New order", "Order 41 was placed", nil)

	waitFor(t, func() bool { return publisher.Count() == 2 })
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	publisher.Lock()
	defer publisher.Unlock()
	byUser := map[int64]model.Notification{}
	for _, n := range publisher.Published {
		byUser[n.UserID] = n
	}
	first := byUser[7]
	if first.ID == "" || first.Data["order_id"] != "40" {
		t.Fatalf("unexpected notification: %+v", first)
	}
	if !first.CreatedAt.Equal(fixed) || first.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", first.CreatedAt)
	}
	if byUser[8].ID == first.ID {
		t.Fatal("expected distinct notification ids")
	}
	if observer.PublishedCount != 2 {
		t.Fatalf("expected 2 published, got %d", observer.PublishedCount)
	}
}

func TestNotificationDispatcherDropsWhenQueueFull(t *testing.T) {
	observer := &testhelpers.ObserverStub{}
	d := NewNotificationDispatcher(&testhelpers.PublisherStub{}, 1, 1, observer, zap.NewNop())

	// Not started, so the single slot stays occupied.
	d.Notify(context.Background(), 1, "a", "a", nil)
	d.Notify(context.Background(), 2, "b", "b", nil)

	if observer.DroppedFor("queue_full") != 1 {
		t.Fatalf("expected one queue_full drop, got %v", observer.Dropped)
	}
}

func TestNotificationDispatcherPublishFailureIsDropped(t *testing.T) {
	observer := &testhelpers.ObserverStub{}
	publisher := &testhelpers.PublisherStub{
		PublishFn: func(context.Context, model.Notification) error { return errors.New("broker down") },
	}
	d := NewNotificationDispatcher(publisher, 1, 4, observer, zap.NewNop())
	d.Start(context.Background())

	d.Notify(context.Background(), 1, "a", "a", nil)
	waitFor(t, func() bool { return observer.DroppedFor("publish_failed") == 1 })

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if publisher.Count() != 0 {
		t.Fatalf("expected nothing published, got %d", publisher.Count())
	}
}

func TestNotificationDispatcherStopDrainsQueue(t *testing.T) {
	publisher := &testhelpers.PublisherStub{}
	d := NewNotificationDispatcher(publisher, 1, 16, nil, zap.NewNop())
	for i := 0; i < 10; i++ {
		d.Notify(context.Background(), int64(i), "t", "b", nil)
	}

	d.Start(context.Background())
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if publisher.Count() != 10 {
		t.Fatalf("expected queue drained, got %d", publisher.Count())
	}
}

func TestNotificationDispatcherAfterStop(t *testing.T) {
	observer := &testhelpers.ObserverStub{}
	d := NewNotificationDispatcher(&testhelpers.PublisherStub{}, 1, 4, observer, zap.NewNop())
	d.Start(context.Background())
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}

	d.Notify(context.Background(), 1, "late", "late", nil)
	if observer.DroppedFor("stopped") != 1 {
		t.Fatalf("expected stopped drop, got %v", observer.Dropped)
	}
}

func TestNotificationDispatcherStopHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	publisher := &testhelpers.PublisherStub{
		PublishFn: func(ctx context.Context, _ model.Notification) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-release:
				return nil
			}
		},
	}
	defer close(release)

	d := NewNotificationDispatcher(publisher, 1, 4, nil, zap.NewNop())
	d.Start(context.Background())
	d.Notify(context.Background(), 1, "slow", "slow", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

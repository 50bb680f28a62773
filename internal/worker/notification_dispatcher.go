package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ErrDispatcherStopped is reported to the observer for messages offered after Stop.
var ErrDispatcherStopped = errors.New("notification dispatcher stopped")

// Publisher hands a notification to the delivery transport.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

// DeliveryObserver is told about the fate of every notification.
type DeliveryObserver interface {
	NotificationPublished()
	NotificationDropped(reason string)
}

type nopObserver struct{}

func (nopObserver) NotificationPublished()     {}
func (nopObserver) NotificationDropped(string) {}

// NotificationDispatcher queues notifications and publishes them from a fixed
// pool of workers. Enqueueing never blocks: a full queue drops the message.
type NotificationDispatcher struct {
	publisher Publisher
	observer  DeliveryObserver
	workers   int
	logger    *zap.Logger
	now       func() time.Time

	jobs    chan model.Notification
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewNotificationDispatcher constructs the dispatcher worker pool.
func NewNotificationDispatcher(publisher Publisher, workers, queueSize int, observer DeliveryObserver, logger *zap.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		publisher: publisher,
		observer:  observer,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
		jobs:      make(chan model.Notification, queueSize),
	}
}

// Start launches background publishing.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop closes the queue and waits for queued messages to be published.
// When ctx expires first, in-flight publishes are canceled.
func (d *NotificationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	cancel := d.cancel
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if cancel != nil {
		cancel()
	}
	<-done
	return err
}

// Notify enqueues a notification for userID.
func (d *NotificationDispatcher) Notify(_ context.Context, userID int64, title, body string, data map[string]string) {
	n := model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: d.now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(n, "stopped", ErrDispatcherStopped)
		return
	}

	select {
	case d.jobs <- n:
	default:
		d.drop(n, "queue_full", nil)
	}
}

func (d *NotificationDispatcher) drop(n model.Notification, reason string, err error) {
	d.observer.NotificationDropped(reason)
	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.Int64("user_id", n.UserID),
		zap.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	d.logger.Warn("notification dropped", fields...)
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for n := range d.jobs {
		if ctx.Err() != nil {
			d.drop(n, "canceled", ctx.Err())
			continue
		}
		if err := d.publisher.Publish(ctx, n); err != nil {
			d.drop(n, "publish_failed", err)
			continue
		}
		d.observer.NotificationPublished()
	}
}

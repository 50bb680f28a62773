package test

import (
	"context"
	"sync"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PublisherStub captures published notifications.
type PublisherStub struct {
	sync.Mutex
	Published []model.Notification
	// PublishFn overrides the default behaviour when set.
	PublishFn func(ctx context.Context, n model.Notification) error
}

// Publish records n unless PublishFn returns an error.
func (p *PublisherStub) Publish(ctx context.Context, n model.Notification) error {
	if p.PublishFn != nil {
		if err := p.PublishFn(ctx, n); err != nil {
			return err
		}
	}
	p.Lock()
	defer p.Unlock()
	p.Published = append(p.Published, n)
	return nil
}

// Count returns how many notifications were published.
func (p *PublisherStub) Count() int {
	p.Lock()
	defer p.Unlock()
	return len(p.Published)
}

// ObserverStub counts delivery outcomes.
type ObserverStub struct {
	sync.Mutex
	PublishedCount int
	Dropped        map[string]int
}

// NotificationPublished increments the published counter.
func (o *ObserverStub) NotificationPublished() {
	o.Lock()
	defer o.Unlock()
	o.PublishedCount++
}

// NotificationDropped increments the drop counter for reason.
func (o *ObserverStub) NotificationDropped(reason string) {
	o.Lock()
	defer o.Unlock()
	if o.Dropped == nil {
		o.Dropped = map[string]int{}
	}
	o.Dropped[reason]++
}

// DroppedFor returns the number of drops recorded for reason.
func (o *ObserverStub) DroppedFor(reason string) int {
	o.Lock()
	defer o.Unlock()
	return o.Dropped[reason]
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Client publishes notifications to the message bus.
type Client interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes notifications as JSON messages keyed by user id, so every
// message of one user lands on the same partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewPublisher creates a Kafka backed publisher for topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: writer, topic: topic, logger: logger}
}

// Publish encodes n and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, n model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(n.UserID, 10)),
		Value: payload,
		Time:  n.CreatedAt,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(n.ID)},
			{Key: "event_type", Value: []byte(n.Data["type"])},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	p.logger.Debug("notification published",
		zap.String("notification_id", n.ID),
		zap.Int64("user_id", n.UserID),
	)
	return nil
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs notifications. It is used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher writing to logger.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, n model.Notification) error {
	p.logger.Info("notification",
		zap.String("notification_id", n.ID),
		zap.Int64("user_id", n.UserID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Any("data", n.Data),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"go.uber.org/zap"
)

const (
	TypeCityAdded   = "city.added"
	TypeCityRemoved = "city.removed"
)

// Event describes a change of the tracked-city set.
type Event struct {
	Type      string    `json:"type"`
	City      city.City `json:"city"`
	Timestamp string    `json:"timestamp"`
}

func NewEvent(eventType string, c city.City) Event {
	return Event{
		Type:      eventType,
		City:      c,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(cfg config.EventsConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
	}
	return NewKafkaPublisherWithWriter(writer, logger)
}

func NewKafkaPublisherWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish keys messages by "name,CC" so events for one city stay ordered on a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.City.Query()),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("type", event.Type),
		zap.String("city", event.City.Name),
		zap.String("country_code", event.City.CountryCode))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// New returns a Kafka publisher when events are enabled and a no-op otherwise.
func New(cfg config.EventsConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	logger.Info("Tracked-city events enabled",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))
	return NewKafkaPublisher(cfg, logger)
}

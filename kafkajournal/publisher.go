// Package kafkajournal publishes airport movements to a Kafka topic.
package kafkajournal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"

	airport "go-airport"
)

var (
	// ErrPublisherClosed is returned when recording on a closed publisher
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrNoBrokers is returned when no broker address is configured
	ErrNoBrokers = errors.New("at least one broker is required")

	// ErrEmptyTopic is returned when no topic is configured
	ErrEmptyTopic = errors.New("topic cannot be empty")
)

const headerAirportID = "airport_id"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is an airport.Journal that writes each movement as a JSON message
// keyed by aircraft id, so the movements of one aircraft stay ordered.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ airport.Journal = (*Publisher)(nil)

// NewPublisher creates a Publisher writing to topic on the given brokers.
// Broker errors are logged to logger; a nil logger discards them.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...), "topic", topic)
		}),
	}

	return newPublisher(writer, topic, logger), nil
}

func newPublisher(writer messageWriter, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// RecordMovement publishes one movement and waits for the brokers to acknowledge it.
func (p *Publisher) RecordMovement(ctx context.Context, movement airport.Movement) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	var msg, err = encode(movement)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s of %q to %s: %w", movement.Kind, movement.AircraftID, p.topic, err)
	}

	p.logger.Debug("movement published",
		"topic", p.topic,
		"aircraft_id", movement.AircraftID,
		"token_id", movement.TokenID)
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func encode(movement airport.Movement) (kafka.Message, error) {
	var value, err = json.Marshal(movement)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode movement: %w", err)
	}

	return kafka.Message{
		Key:   []byte(movement.AircraftID),
		Value: value,
		Time:  movement.RecordedAt,
		Headers: []kafka.Header{
			{Key: headerAirportID, Value: []byte(movement.AirportID)},
		},
	}, nil
}

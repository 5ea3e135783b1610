package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits interaction events to a Kafka topic. Publishing is
// best-effort: callers drop the error after logging it.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher creates a new interaction event publisher
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish sends one interaction event, keyed by ticker
func (p *Publisher) Publish(ctx context.Context, interaction *model.Interaction) error {
	value, err := json.Marshal(interaction)
	if err != nil {
		p.logger.Error("Failed to marshal interaction event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(interaction.Ticker),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish interaction event",
			zap.String("ticker", interaction.Ticker),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Interaction event published",
		zap.String("ticker", interaction.Ticker))

	return nil
}

// Close closes the underlying Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

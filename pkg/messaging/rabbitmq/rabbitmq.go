package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/pkg/messaging"
)

const exchangeType = "topic"

// Channel is the subset of *amqp.Channel the broker publishes through.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes JSON events to a durable topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   zerolog.Logger

	// amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

type Config struct {
	URL      string
	Exchange string
}

func NewPublisher(config Config, logger zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		config.Exchange,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p := NewWithChannel(ch, config.Exchange, logger)
	p.conn = conn
	p.logger.Info().Str("exchange", config.Exchange).Msg("connected to RabbitMQ")
	return p, nil
}

func NewWithChannel(ch Channel, exchange string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger.With().Str("component", "rabbitmq-publisher").Logger(),
	}
}

var _ messaging.Broker = (*Publisher)(nil)

// Publish sends message with routingKey as the topic.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", routingKey, err)
	}

	p.logger.Debug().Str("routing_key", routingKey).Msg("published event")
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

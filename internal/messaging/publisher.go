package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	sharedMessaging "fallen-dragon-server/shared/messaging"
)

const (
	publishTimeout  = 10 * time.Second
	publishAttempts = 3
	appID           = "fallen-dragon-server"
)

var _ interfaces.SessionEventPublisher = (*RabbitMQEventPublisher)(nil)

// RabbitMQEventPublisher publishes session events as persistent JSON messages
// to a durable queue through the default exchange.
type RabbitMQEventPublisher struct {
	mu        sync.Mutex // amqp channels are not safe for concurrent publishing
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQEventPublisher opens a channel on conn and declares the queue
// (the default session events queue when queueName is empty).
func NewRabbitMQEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQEventPublisher, error) {
	logger = logger.Named("SessionEventPublisher")
	if queueName == "" {
		queueName = sharedMessaging.SessionEventsQueueName
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("session event publisher: failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare queue", zap.String("queue", queueName), zap.Error(err))
		return nil, fmt.Errorf("session event publisher: failed to declare queue '%s': %w", queueName, err)
	}
	logger.Info("Queue declared", zap.String("queue", queueName))

	return &RabbitMQEventPublisher{channel: ch, queueName: queueName, logger: logger}, nil
}

// PublishSessionEvent sends event, retrying a few times on channel errors.
func (p *RabbitMQEventPublisher) PublishSessionEvent(ctx context.Context, event sharedMessaging.SessionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal SessionEvent: %w", err)
	}
	return p.publishMessage(ctx, string(event.EventType), body)
}

func (p *RabbitMQEventPublisher) publishMessage(ctx context.Context, messageType string, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // default exchange
			p.queueName, // routing key = queue name
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				Type:         messageType,
				AppId:        appID,
			},
		)
		if err == nil {
			p.logger.Debug("Session event published", zap.String("type", messageType), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed", zap.String("type", messageType), zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to publish to queue %s: %w", p.queueName, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}

// Close closes the channel. The connection stays owned by the caller.
func (p *RabbitMQEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	return err
}

var _ interfaces.SessionEventPublisher = NoopEventPublisher{}

// NoopEventPublisher drops events. Used when RabbitMQ is not configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishSessionEvent(context.Context, sharedMessaging.SessionEvent) error {
	return nil
}

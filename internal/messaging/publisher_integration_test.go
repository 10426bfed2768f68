package messaging_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"fallen-dragon-server/internal/messaging"
	sharedMessaging "fallen-dragon-server/shared/messaging"
)

func TestRabbitMQEventPublisherIntegration(t *testing.T) {
	if testing.Short() || os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run RabbitMQ integration tests")
	}
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	const queue = "story_session_events_test"
	publisher, err := messaging.NewRabbitMQEventPublisher(conn, queue, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	next := 2
	choiceID := int64(11)
	event := sharedMessaging.SessionEvent{
		EventType:     sharedMessaging.SessionEventChoice,
		SessionID:     5,
		UserID:        7,
		StoryID:       1,
		ActNumber:     1,
		NextActNumber: &next,
		ChoiceID:      &choiceID,
		OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, publisher.PublishSessionEvent(ctx, event))

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	var msg amqp.Delivery
	require.Eventually(t, func() bool {
		var ok bool
		msg, ok, err = ch.Get(queue, true)
		return err == nil && ok
	}, 10*time.Second, 100*time.Millisecond)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, string(sharedMessaging.SessionEventChoice), msg.Type)

	var got sharedMessaging.SessionEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, event.SessionID, got.SessionID)
	assert.Equal(t, next, *got.NextActNumber)
	assert.True(t, event.OccurredAt.Equal(got.OccurredAt))
}

func TestNoopEventPublisher(t *testing.T) {
	var publisher messaging.NoopEventPublisher
	assert.NoError(t, publisher.PublishSessionEvent(context.Background(), sharedMessaging.SessionEvent{}))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/washline/laundry-service/internal/config"
	"github.com/washline/laundry-service/internal/events"
)

func TestNotificationServiceRoutesEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@laundry.test",
		WebhookURL: "https://hooks.laundry.test/orders",
	})
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, events.Event{Type: events.EventOrderStatusChanged, ResourceID: "o1"}))
	assert.Equal(t, 1, logs.FilterMessage("OrderStatusChanged").FilterField(zap.String("order_id", "o1")).Len())
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	require.NoError(t, svc.Handle(ctx, events.Event{Type: events.EventType("unknown")}))
	assert.Equal(t, 3, logs.Len())
}

func TestNotificationServiceSkipsUnconfiguredChannels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(zap.New(core), config.NotificationConfig{})

	require.NoError(t, svc.Handle(context.Background(), events.Event{Type: events.EventUserDeleted, ResourceID: "u1"}))
	assert.Equal(t, 1, logs.FilterMessage("UserDeleted").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"wellness/config"
	"wellness/infras/kafka"
	kafkaMocks "wellness/infras/kafka/mocks"
	"wellness/infras/otel/mocks"
	"wellness/internal/events"
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Topics.BookingEvents = "booking.events"
	cfg.Kafka.Topics.OperatorAlerts = "booking.operator-alerts"

	return cfg
}

func TestPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.events", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			assert.Len(t, messages, 1)
			assert.Equal(t, "b-1", messages[0].Key)

			event, ok := messages[0].Value.(events.Event)
			assert.True(t, ok)
			assert.Equal(t, events.TypeBookingCreated, event.Type)
			assert.Equal(t, "staff-1", event.Actor)

			return nil
		})

	events.New(client, newConfig(), mocks.NewOtel()).Publish(context.Background(), events.TypeBookingCreated, "b-1", "staff-1", nil)
}

func TestPublisher_PublishSwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	client.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	assert.NotPanics(t, func() {
		events.New(client, newConfig(), mocks.NewOtel()).Publish(context.Background(), events.TypeBookingCancelled, "b-1", "guest", nil)
	})
}

func TestPublisher_Alert(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	client.EXPECT().
		SendMessages(gomock.Any(), "booking.operator-alerts", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			alert, ok := messages[0].Value.(events.Alert)
			assert.True(t, ok)
			assert.Equal(t, "booking.create", alert.Operation)
			assert.Equal(t, "insert failed", alert.Error)
			assert.Equal(t, "slot-1", alert.Context["slot_id"])

			return nil
		})

	events.New(client, newConfig(), mocks.NewOtel()).
		Alert(context.Background(), "booking.create", errors.New("insert failed"), map[string]any{"slot_id": "slot-1"})
}

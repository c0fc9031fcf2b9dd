package kafka_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/config"
	"wellness/infras/kafka"
)

type bookingCancelled struct {
	BookingID  string `json:"booking_id"`
	SlotsFreed int    `json:"slots_freed"`
}

func TestMessage_RoundTrip(t *testing.T) {
	msg := kafka.Message{Key: "b-1", Value: bookingCancelled{BookingID: "b-1", SlotsFreed: 2}}

	raw, err := msg.ToKafkaMessage("booking.events")
	require.NoError(t, err)
	assert.Equal(t, "booking.events", raw.Topic)
	assert.Equal(t, []byte("b-1"), raw.Key)

	decoded, err := kafka.DecodeKafkaMessage[bookingCancelled](raw)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.SlotsFreed)
}

func TestMessage_UnmarshalableValue(t *testing.T) {
	msg := kafka.Message{Key: "b-1", Value: make(chan int)}

	_, err := msg.ToKafkaMessage("booking.events")
	assert.Error(t, err)
}

func TestNew_WithoutBrokersDoesNotFail(t *testing.T) {
	client := kafka.New(&config.Config{})

	assert.NoError(t, client.SendMessages(context.Background(), "booking.events", kafka.Message{Key: "b-1", Value: "created"}))
	assert.NoError(t, client.Close())
}

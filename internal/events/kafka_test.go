package events

import (
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKafkaPublisherDoesNotBlockRequests(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "hanapp.events", zap.NewNop())
	defer p.Close()

	assert.True(t, p.writer.Async)
	assert.Less(t, p.writer.BatchTimeout.Milliseconds(), int64(100))
	assert.NotNil(t, p.writer.Completion)
}

func TestKafkaPublisherLogsDeliveryFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	p := NewKafkaPublisher([]string{"localhost:9092"}, "hanapp.events", zap.New(core))
	defer p.Close()

	msgs := []kafka.Message{{
		Key:     []byte("b-1"),
		Headers: []kafka.Header{{Key: "type", Value: []byte(BookingCreated)}},
	}}

	p.writer.Completion(msgs, nil)
	assert.Equal(t, 0, logs.Len())

	p.writer.Completion(msgs, errors.New("broker unavailable"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "failed to deliver event", entry.Message)
	assert.Equal(t, BookingCreated, entry.ContextMap()["type"])
	assert.Equal(t, "b-1", entry.ContextMap()["key"])
}

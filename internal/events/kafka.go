package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes envelopes to a single topic. Writes are async:
// Publish returns once the message is queued and delivery errors are
// reported through the logger.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{log: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		Completion:   p.completed,
	}
	return p
}

func (p *KafkaPublisher) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		p.log.Error("failed to deliver event",
			zap.String("type", headerValue(m, "type")),
			zap.ByteString("key", m.Key),
			zap.Error(err))
	}
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, data interface{}) error {
	value, err := encode(eventType, key, data)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(eventType)}},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event types published on the domain topic
const (
	MessageSent                 = "message.sent"
	JobApplicationCreated       = "job_application.created"
	JobApplicationStatusChanged = "job_application.status_changed"
	BookingCreated              = "booking.created"
	BookingStatusChanged        = "booking.status_changed"
	ReviewCreated               = "review.created"
)

// Envelope is the JSON value written for every event
type Envelope struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Publisher emits domain events keyed by aggregate id
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, data interface{}) error
	Close() error
}

func encode(eventType, key string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, eventType, key string, data interface{}) error { return nil }
func (Noop) Close() error { return nil }

// Recorder keeps published envelopes in memory
type Recorder struct {
	mu     sync.Mutex
	Events []Envelope
}

func (r *Recorder) Publish(ctx context.Context, eventType, key string, data interface{}) error {
	b, err := encode(eventType, key, data)
	if err != nil {
		return err
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	r.mu.Lock()
	r.Events = append(r.Events, env)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEnvelope(t *testing.T) {
	b, err := encode(BookingCreated, "b-1", map[string]interface{}{"total_amount": 1500})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, BookingCreated, env.Type)
	assert.Equal(t, "b-1", env.Key)
	assert.False(t, env.OccurredAt.IsZero())
	assert.JSONEq(t, `{"total_amount":1500}`, string(env.Data))
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, MessageSent, "m-1", nil))
	require.NoError(t, r.Publish(ctx, ReviewCreated, "r-1", nil))
	assert.Equal(t, []string{MessageSent, ReviewCreated}, r.Types())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), MessageSent, "x", struct{}{}))
	assert.NoError(t, p.Close())
}

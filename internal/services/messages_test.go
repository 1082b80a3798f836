package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

func msgAt(from, to, content string, at time.Time) *models.Message {
	return &models.Message{SenderID: from, ReceiverID: to, Content: content, CreatedAt: at}
}

func TestAggregateThreadsOnePerPartner(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []*models.Message{
		msgAt("me", "ana", "see you", base.Add(5*time.Minute)),
		msgAt("ben", "me", "how much?", base.Add(4*time.Minute)),
		msgAt("ana", "me", "ok", base.Add(3*time.Minute)),
		msgAt("me", "ben", "hello", base.Add(1*time.Minute)),
	}

	threads := AggregateThreads("me", msgs)
	require.Len(t, threads, 2)

	assert.Equal(t, "ana", threads[0].PartnerID)
	assert.Equal(t, "see you", threads[0].LastMessage)
	assert.Equal(t, "me", threads[0].LastSenderID)

	assert.Equal(t, "ben", threads[1].PartnerID)
	assert.Equal(t, "how much?", threads[1].LastMessage)
	assert.Equal(t, "ben", threads[1].LastSenderID)
}

func TestAggregateThreadsUnorderedInput(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []*models.Message{
		msgAt("me", "ana", "first", base),
		msgAt("ana", "me", "latest", base.Add(time.Hour)),
		msgAt("carl", "me", "middle", base.Add(30*time.Minute)),
	}

	threads := AggregateThreads("me", msgs)
	require.Len(t, threads, 2)
	assert.Equal(t, "ana", threads[0].PartnerID)
	assert.Equal(t, "latest", threads[0].LastMessage)
	assert.Equal(t, "carl", threads[1].PartnerID)
}

func TestAggregateThreadsTieKeepsFirstSeen(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []*models.Message{
		msgAt("ana", "me", "one", at),
		msgAt("me", "ana", "two", at),
	}
	threads := AggregateThreads("me", msgs)
	require.Len(t, threads, 1)
	assert.Equal(t, "one", threads[0].LastMessage)
}

func TestAggregateThreadsEmpty(t *testing.T) {
	threads := AggregateThreads("me", nil)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestMessageServiceSendAndThreads(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := &events.Recorder{}
	svc := NewMessageService(store, rec, zap.NewNop())
	ctx := context.Background()

	me := seedUser(t, store, testPhone, models.RoleClient)
	ana := seedUser(t, store, "+639181234567", models.RoleProvider)
	ana.FirstName, ana.LastName, ana.AvatarURL = "Ana", "Reyes", "https://cdn.example.com/ana.png"
	require.NoError(t, store.UpdateUser(ctx, ana))

	_, err := svc.Send(ctx, me.ID, models.SendMessageRequest{ReceiverID: ana.ID, Content: "  hi  "})
	require.NoError(t, err)
	_, err = svc.Send(ctx, ana.ID, models.SendMessageRequest{ReceiverID: me.ID, Content: "hello po"})
	require.NoError(t, err)

	threads, err := svc.Threads(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, ana.ID, threads[0].PartnerID)
	assert.Equal(t, "Ana Reyes", threads[0].PartnerName)
	assert.Equal(t, "https://cdn.example.com/ana.png", threads[0].PartnerAvatarURL)
	assert.Equal(t, "hello po", threads[0].LastMessage)

	conv, err := svc.Conversation(ctx, me.ID, ana.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi", conv[0].Content)

	assert.Equal(t, []string{events.MessageSent, events.MessageSent}, rec.Types())
}

func TestMessageServiceSendValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewMessageService(store, events.Noop{}, zap.NewNop())
	ctx := context.Background()
	me := seedUser(t, store, testPhone, models.RoleClient)

	_, err := svc.Send(ctx, me.ID, models.SendMessageRequest{ReceiverID: me.ID, Content: "hi"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Send(ctx, me.ID, models.SendMessageRequest{ReceiverID: "5f0c9a52-0d0e-4b7a-9b7e-3e3f1c2d4a5b", Content: "hi"})
	requireStatus(t, err, http.StatusNotFound)
}

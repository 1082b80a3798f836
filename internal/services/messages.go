package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type MessageService struct {
	store storage.Store
	pub   events.Publisher
	log   *zap.Logger
}

func NewMessageService(store storage.Store, pub events.Publisher, logger *zap.Logger) *MessageService {
	return &MessageService{store: store, pub: pub, log: logger.Named("messages")}
}

// AggregateThreads collapses userID's messages into one summary per partner,
// carrying the latest message, ordered by that message's time descending.
// Ties on time keep the message seen first.
func AggregateThreads(userID string, msgs []*models.Message) []models.Thread {
	index := make(map[string]int, len(msgs))
	threads := make([]models.Thread, 0)

	for _, m := range msgs {
		if m == nil {
			continue
		}
		partner := m.PartnerOf(userID)
		if i, ok := index[partner]; ok {
			if m.CreatedAt.After(threads[i].LastMessageAt) {
				threads[i].LastMessage = m.Content
				threads[i].LastMessageAt = m.CreatedAt
				threads[i].LastSenderID = m.SenderID
			}
			continue
		}
		index[partner] = len(threads)
		threads = append(threads, models.Thread{
			PartnerID:     partner,
			LastMessage:   m.Content,
			LastMessageAt: m.CreatedAt,
			LastSenderID:  m.SenderID,
		})
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
	})
	return threads
}

// Threads lists the caller's conversations with partner display fields filled in
func (s *MessageService) Threads(ctx context.Context, userID string) ([]models.Thread, error) {
	msgs, err := s.store.ListMessagesForUser(ctx, userID)
	if err != nil {
		return nil, Internal(err, "failed to load messages")
	}

	threads := AggregateThreads(userID, msgs)
	if len(threads) == 0 {
		return threads, nil
	}

	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.PartnerID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err, "failed to load conversation partners")
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range threads {
		if u, ok := byID[threads[i].PartnerID]; ok {
			threads[i].PartnerName = u.DisplayName()
			threads[i].PartnerAvatarURL = u.AvatarURL
		}
	}
	return threads, nil
}

// Send appends a message from senderID to the receiver
func (s *MessageService) Send(ctx context.Context, senderID string, req models.SendMessageRequest) (*models.Message, error) {
	if req.ReceiverID == senderID {
		return nil, BadRequest("cannot send a message to yourself")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, BadRequest("message content is required")
	}
	if _, err := s.store.GetUser(ctx, req.ReceiverID); err != nil {
		return nil, storeError(err, "receiver")
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, Internal(err, "failed to send message")
	}

	publish(ctx, s.log, s.pub, events.MessageSent, msg.ID, msg)
	return msg, nil
}

// Conversation returns the messages between the caller and partnerID, oldest first
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID string) ([]*models.Message, error) {
	if _, err := s.store.GetUser(ctx, partnerID); err != nil {
		return nil, storeError(err, "user")
	}
	msgs, err := s.store.ListConversation(ctx, userID, partnerID)
	if err != nil {
		return nil, Internal(err, "failed to load conversation")
	}
	return nonNil(msgs), nil
}

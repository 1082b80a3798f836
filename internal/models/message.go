package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users. Messages are append-only.
type Message struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"type:uuid;not null;index"`
	ReceiverID string    `json:"receiver_id" gorm:"type:uuid;not null;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// PartnerOf returns the other participant from userID's point of view
func (m *Message) PartnerOf(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Thread summarizes the conversation with one partner. Derived on every read, never stored.
type Thread struct {
	PartnerID        string    `json:"partner_id"`
	PartnerName      string    `json:"partner_name"`
	PartnerAvatarURL string    `json:"partner_avatar_url"`
	LastMessage      string    `json:"last_message"`
	LastMessageAt    time.Time `json:"last_message_at"`
	LastSenderID     string    `json:"last_sender_id"`
}

// SendMessageRequest is the body of POST /messages
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking represents a client reserving one or more of a provider's services
type Booking struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID    string    `json:"client_id" gorm:"type:uuid;not null;index"`
	ProviderID  string    `json:"provider_id" gorm:"type:uuid;not null;index"`
	ListingID   *string   `json:"listing_id,omitempty" gorm:"type:uuid"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes" gorm:"type:text"`

	// Sum of the service prices captured at booking time
	TotalAmount float64 `json:"total_amount"`

	Status string `json:"status" gorm:"not null;default:pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Services []BookingService `json:"services,omitempty" gorm:"foreignKey:BookingID"`
}

// BookingService is one line of a booking
type BookingService struct {
	ID        string  `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID string  `json:"booking_id" gorm:"type:uuid;not null;index"`
	ServiceID string  `json:"service_id" gorm:"type:uuid;not null"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Booking status constants
const (
	BookingStatusPending   = "pending"
	BookingStatusAccepted  = "accepted"
	BookingStatusRejected  = "rejected"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

func (bs *BookingService) BeforeCreate(tx *gorm.DB) error {
	if bs.ID == "" {
		bs.ID = uuid.NewString()
	}
	return nil
}

// IsParticipant reports whether userID is the client or the provider
func (b *Booking) IsParticipant(userID string) bool {
	return b.ClientID == userID || b.ProviderID == userID
}

// BookingCreate is the body of POST /bookings
type BookingCreate struct {
	ProviderID  string    `json:"provider_id" validate:"required,uuid"`
	ListingID   string    `json:"listing_id" validate:"omitempty,uuid"`
	ServiceIDs  []string  `json:"service_ids" validate:"required,min=1,max=20,dive,uuid"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

// BookingStatusUpdate is the body of PATCH /bookings/:id/status
type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed cancelled"`
}

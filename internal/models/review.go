package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a client's rating of a provider's service
type Review struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	ReviewerID    string     `json:"reviewer_id" gorm:"type:uuid;not null;index"`
	ServiceID     string     `json:"service_id" gorm:"type:uuid;not null;index"`
	ProviderID    string     `json:"provider_id" gorm:"type:uuid;not null;index"`
	BookingID     *string    `json:"booking_id,omitempty" gorm:"type:uuid"`
	Rating        int        `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment       string     `json:"comment" gorm:"type:text"`
	ProviderReply string     `json:"provider_reply,omitempty" gorm:"type:text"`
	RepliedAt     *time.Time `json:"replied_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Reviewer *PublicProfile `json:"reviewer,omitempty" gorm:"-"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReviewCreate is the body of POST /reviews
type ReviewCreate struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	BookingID string `json:"booking_id" validate:"omitempty,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ReviewUpdate is the body of PATCH /reviews/:id
type ReviewUpdate struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// ReviewReply is the body of POST /reviews/:id
type ReviewReply struct {
	Reply string `json:"reply" validate:"required,min=1,max=2000"`
}

// ReviewSummary lists reviews with their average rating
type ReviewSummary struct {
	Reviews       []*Review `json:"reviews"`
	Count         int       `json:"count"`
	AverageRating float64   `json:"average_rating"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobApplication is a provider's bid on a client's service request.
// A provider applies to a given request at most once.
type JobApplication struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID     string    `json:"request_id" gorm:"type:uuid;not null;uniqueIndex:idx_application_request_provider"`
	ProviderID    string    `json:"provider_id" gorm:"type:uuid;not null;uniqueIndex:idx_application_request_provider;index"`
	ClientID      string    `json:"client_id" gorm:"type:uuid;not null;index"` // copied from the request
	CoverLetter   string    `json:"cover_letter" gorm:"type:text"`
	ProposedPrice float64   `json:"proposed_price"`
	Status        string    `json:"status" gorm:"not null;default:pending"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Request  *ServiceRequest `json:"request,omitempty" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Provider *PublicProfile  `json:"provider,omitempty" gorm:"-"`
}

// JobApplication status constants
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

func (a *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusPending
	}
	return nil
}

// JobApplicationCreate is the body of POST /job-applications
type JobApplicationCreate struct {
	RequestID     string  `json:"request_id" validate:"required,uuid"`
	CoverLetter   string  `json:"cover_letter" validate:"max=5000"`
	ProposedPrice float64 `json:"proposed_price" validate:"gte=0"`
}

// ApplicationStatusUpdate is the body of PATCH /job-applications/:id/status
type ApplicationStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected withdrawn"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRequest is a job posted by a client
type ServiceRequest struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID      string     `json:"client_id" gorm:"type:uuid;not null;index"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Category      string     `json:"category" gorm:"index"`
	Location      string     `json:"location"`
	Budget        float64    `json:"budget"`
	PreferredDate *time.Time `json:"preferred_date"`
	Status        string     `json:"status" gorm:"not null;default:open;index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ServiceRequest status constants
const (
	RequestStatusOpen       = "open"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RequestStatusOpen
	}
	return nil
}

// ServiceRequestCreate is the body of POST /service-requests
type ServiceRequestCreate struct {
	Title         string     `json:"title" validate:"required,min=3,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	Category      string     `json:"category" validate:"required,max=100"`
	Location      string     `json:"location" validate:"max=200"`
	Budget        float64    `json:"budget" validate:"gte=0"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// ServiceRequestUpdate is the body of PATCH /service-requests/:id
type ServiceRequestUpdate struct {
	Title         *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	Category      *string    `json:"category" validate:"omitempty,max=100"`
	Location      *string    `json:"location" validate:"omitempty,max=200"`
	Budget        *float64   `json:"budget" validate:"omitempty,gte=0"`
	PreferredDate *time.Time `json:"preferred_date"`
	Status        *string    `json:"status" validate:"omitempty,oneof=open in_progress completed cancelled"`
}

// Apply copies the set fields onto the request
func (u *ServiceRequestUpdate) Apply(r *ServiceRequest) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Location != nil {
		r.Location = *u.Location
	}
	if u.Budget != nil {
		r.Budget = *u.Budget
	}
	if u.PreferredDate != nil {
		r.PreferredDate = u.PreferredDate
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
}

// ServiceRequestFilter narrows GET /service-requests
type ServiceRequestFilter struct {
	Category string
	Location string
	Status   string
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rate types for a listing
const (
	RateTypeHourly = "hourly"
	RateTypeFixed  = "fixed"
)

// ServiceListing is a provider's public advertisement of what they offer
type ServiceListing struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID  string    `json:"provider_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Category    string    `json:"category" gorm:"index"`
	Location    string    `json:"location"`
	Rate        float64   `json:"rate"`
	RateType    string    `json:"rate_type" gorm:"not null;default:fixed"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (l *ServiceListing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.RateType == "" {
		l.RateType = RateTypeFixed
	}
	return nil
}

// ListingCreate is the body of POST /service-listings
type ListingCreate struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Category    string  `json:"category" validate:"required,max=100"`
	Location    string  `json:"location" validate:"max=200"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	RateType    string  `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
}

// ListingUpdate is the body of PATCH /service-listings/:id
type ListingUpdate struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	Rate        *float64 `json:"rate" validate:"omitempty,gte=0"`
	RateType    *string  `json:"rate_type" validate:"omitempty,oneof=hourly fixed"`
	IsActive    *bool    `json:"is_active"`
}

func (u *ListingUpdate) Apply(l *ServiceListing) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Location != nil {
		l.Location = *u.Location
	}
	if u.Rate != nil {
		l.Rate = *u.Rate
	}
	if u.RateType != nil {
		l.RateType = *u.RateType
	}
	if u.IsActive != nil {
		l.IsActive = *u.IsActive
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a single priced item a provider can be booked for
type Service struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID      string    `json:"provider_id" gorm:"type:uuid;not null;index"`
	ListingID       *string   `json:"listing_id,omitempty" gorm:"type:uuid;index"`
	Name            string    `json:"name" gorm:"not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Price           float64   `json:"price" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ServiceCreate is the body of POST /services
type ServiceCreate struct {
	ListingID       string  `json:"listing_id" validate:"omitempty,uuid"`
	Name            string  `json:"name" validate:"required,min=2,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
}

// ServiceUpdate is the body of PATCH /services/:id
type ServiceUpdate struct {
	Name            *string  `json:"name" validate:"omitempty,min=2,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active"`
}

func (u *ServiceUpdate) Apply(s *Service) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Price != nil {
		s.Price = *u.Price
	}
	if u.DurationMinutes != nil {
		s.DurationMinutes = *u.DurationMinutes
	}
	if u.IsActive != nil {
		s.IsActive = *u.IsActive
	}
}

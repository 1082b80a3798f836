package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// User is a marketplace account. A user signs up with a verified phone
// number and acts either as a client or as a provider.
type User struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	Phone         string    `json:"phone" gorm:"uniqueIndex;not null"` // canonical +639XXXXXXXXX
	Email         *string   `json:"email,omitempty" gorm:"uniqueIndex"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	FirstName     string    `json:"first_name" gorm:"not null"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role" gorm:"not null;default:client"`
	Bio           string    `json:"bio"`
	Location      string    `json:"location"`
	AvatarURL     string    `json:"avatar_url"`
	PhoneVerified bool      `json:"phone_verified" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns the UUID and normalizes the email address
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		if e == "" {
			u.Email = nil
		} else {
			u.Email = &e
		}
	}
	return nil
}

// DisplayName is what other users see in threads and reviews
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PublicProfile is the subset of a user that other users may read
type PublicProfile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips contact details and credentials
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Bio:       u.Bio,
		Location:  u.Location,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// SignupRequest is the body of POST /user/signup
type SignupRequest struct {
	Phone     string `json:"phone" validate:"required,ph_phone"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"required,oneof=client provider"`
}

// LoginRequest accepts either a phone number or an email address
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required_without=Email,omitempty,ph_phone"`
	Email    string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is the body of PATCH /user/profile/:id. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=1000"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// Apply copies the set fields onto the user
func (p *ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

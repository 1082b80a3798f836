package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtpVerification is a phone verification code. A row is created on send,
// mutated on each verify attempt and becomes terminal once verified or expired.
type OtpVerification struct {
	ID         string     `json:"id" gorm:"type:uuid;primaryKey"`
	Phone      string     `json:"phone" gorm:"not null;index"`
	OtpCode    string     `json:"-" gorm:"column:otp_code;size:6;not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null;index"`
	Attempts   int        `json:"attempts" gorm:"not null;default:0"`
	Verified   bool       `json:"verified" gorm:"not null;default:false"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (o *OtpVerification) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// IsExpired compares against the wall clock value passed in
func (o *OtpVerification) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// SendOTPRequest is the body of POST /user/send-otp
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required,ph_phone"`
}

// VerifyOTPRequest is the body of POST /user/verify-otp
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,ph_phone"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// OTPSent is returned after a code was dispatched. The code itself is never echoed.
type OTPSent struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

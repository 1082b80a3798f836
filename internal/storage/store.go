package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("duplicate record")
)

// Store defines the interface for storage operations
type Store interface {
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// OTP operations
	CreateOTP(ctx context.Context, otp *models.OtpVerification) error
	GetLatestOTP(ctx context.Context, phone string) (*models.OtpVerification, error)
	UpdateOTP(ctx context.Context, otp *models.OtpVerification) error
	DeleteUnverifiedOTPs(ctx context.Context, phone string) error
	DeleteOTPsByPhone(ctx context.Context, phone string) error
	DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error)

	// Message operations
	CreateMessage(ctx context.Context, msg *models.Message) error
	// ListMessagesForUser returns every message the user sent or received, newest first
	ListMessagesForUser(ctx context.Context, userID string) ([]*models.Message, error)
	// ListConversation returns the messages between two users, oldest first
	ListConversation(ctx context.Context, userID, partnerID string) ([]*models.Message, error)

	// Service request operations
	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListServiceRequests(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, error)
	ListServiceRequestsByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error)
	UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error
	UpdateServiceRequestStatus(ctx context.Context, id, status string) error
	DeleteServiceRequest(ctx context.Context, id string) error

	// Job application operations
	CreateJobApplication(ctx context.Context, app *models.JobApplication) error
	GetJobApplication(ctx context.Context, id string) (*models.JobApplication, error)
	HasApplied(ctx context.Context, requestID, providerID string) (bool, error)
	ListApplicationsByProvider(ctx context.Context, providerID string) ([]*models.JobApplication, error)
	ListApplicationsByClient(ctx context.Context, clientID string) ([]*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) error

	// Listing operations
	CreateListing(ctx context.Context, listing *models.ServiceListing) error
	GetListing(ctx context.Context, id string) (*models.ServiceListing, error)
	ListActiveListings(ctx context.Context, category string) ([]*models.ServiceListing, error)
	ListListingsByProvider(ctx context.Context, providerID string) ([]*models.ServiceListing, error)
	UpdateListing(ctx context.Context, listing *models.ServiceListing) error
	DeleteListing(ctx context.Context, id string) error

	// Service operations
	CreateService(ctx context.Context, svc *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetServicesByIDs(ctx context.Context, ids []string) ([]*models.Service, error)
	ListServicesByProvider(ctx context.Context, providerID string) ([]*models.Service, error)
	ListServicesByListing(ctx context.Context, listingID string) ([]*models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id string) error

	// Booking operations. CreateBooking writes the booking and its service lines together.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByClient(ctx context.Context, clientID string) ([]*models.Booking, error)
	ListBookingsByProvider(ctx context.Context, providerID string) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error

	// Review operations
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	ListReviewsByService(ctx context.Context, serviceID string) ([]*models.Review, error)
	ListReviewsByProvider(ctx context.Context, providerID string) ([]*models.Review, error)
}

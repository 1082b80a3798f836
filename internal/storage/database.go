package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

// DatabaseStore implements Store on PostgreSQL through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// invalidTextRepresentation is raised when a path id is not a valid uuid
const invalidTextRepresentation = "22P02"

// translate maps GORM errors onto the storage sentinels
func translate(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		// the referenced row is gone
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}

// affected turns a zero-row update or delete into ErrNotFound
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// User operations
func (s *DatabaseStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *DatabaseStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *DatabaseStore) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

// OTP operations
func (s *DatabaseStore) CreateOTP(ctx context.Context, otp *models.OtpVerification) error {
	return translate(s.db.WithContext(ctx).Create(otp).Error)
}

func (s *DatabaseStore) GetLatestOTP(ctx context.Context, phone string) (*models.OtpVerification, error) {
	var otp models.OtpVerification
	err := s.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

func (s *DatabaseStore) UpdateOTP(ctx context.Context, otp *models.OtpVerification) error {
	res := s.db.WithContext(ctx).Model(otp).Updates(map[string]interface{}{
		"attempts":    otp.Attempts,
		"verified":    otp.Verified,
		"verified_at": otp.VerifiedAt,
	})
	return affected(res)
}

func (s *DatabaseStore) DeleteUnverifiedOTPs(ctx context.Context, phone string) error {
	return s.db.WithContext(ctx).
		Where("phone = ? AND verified = ?", phone, false).
		Delete(&models.OtpVerification{}).Error
}

func (s *DatabaseStore) DeleteOTPsByPhone(ctx context.Context, phone string) error {
	return s.db.WithContext(ctx).
		Where("phone = ?", phone).
		Delete(&models.OtpVerification{}).Error
}

func (s *DatabaseStore) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.OtpVerification{})
	return res.RowsAffected, res.Error
}

// Message operations
func (s *DatabaseStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	return translate(s.db.WithContext(ctx).Create(msg).Error)
}

func (s *DatabaseStore) ListMessagesForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (s *DatabaseStore) ListConversation(ctx context.Context, userID, partnerID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// Service request operations
func (s *DatabaseStore) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	return translate(s.db.WithContext(ctx).Create(req).Error)
}

func (s *DatabaseStore) GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (s *DatabaseStore) ListServiceRequests(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, error) {
	q := s.db.WithContext(ctx).Model(&models.ServiceRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Location != "" {
		q = q.Where("location ILIKE ?", "%"+filter.Location+"%")
	}

	var reqs []*models.ServiceRequest
	err := q.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (s *DatabaseStore) ListServiceRequestsByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error) {
	var reqs []*models.ServiceRequest
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (s *DatabaseStore) UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	return translate(s.db.WithContext(ctx).Save(req).Error)
}

func (s *DatabaseStore) UpdateServiceRequestStatus(ctx context.Context, id, status string) error {
	return affected(s.db.WithContext(ctx).
		Model(&models.ServiceRequest{}).
		Where("id = ?", id).
		Update("status", status))
}

// DeleteServiceRequest removes the request together with its applications
func (s *DatabaseStore) DeleteServiceRequest(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&models.JobApplication{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.ServiceRequest{}, "id = ?", id))
	}))
}

// Job application operations
func (s *DatabaseStore) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	return translate(s.db.WithContext(ctx).Omit("Request").Create(app).Error)
}

func (s *DatabaseStore) GetJobApplication(ctx context.Context, id string) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := s.db.WithContext(ctx).Preload("Request").First(&app, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *DatabaseStore) HasApplied(ctx context.Context, requestID, providerID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("request_id = ? AND provider_id = ?", requestID, providerID).
		Count(&count).Error
	return count > 0, err
}

func (s *DatabaseStore) ListApplicationsByProvider(ctx context.Context, providerID string) ([]*models.JobApplication, error) {
	var apps []*models.JobApplication
	err := s.db.WithContext(ctx).
		Preload("Request").
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (s *DatabaseStore) ListApplicationsByClient(ctx context.Context, clientID string) ([]*models.JobApplication, error) {
	var apps []*models.JobApplication
	err := s.db.WithContext(ctx).
		Preload("Request").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (s *DatabaseStore) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	return affected(s.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("id = ?", id).
		Update("status", status))
}

// Listing operations
func (s *DatabaseStore) CreateListing(ctx context.Context, listing *models.ServiceListing) error {
	return translate(s.db.WithContext(ctx).Create(listing).Error)
}

func (s *DatabaseStore) GetListing(ctx context.Context, id string) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	if err := s.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (s *DatabaseStore) ListActiveListings(ctx context.Context, category string) ([]*models.ServiceListing, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	var listings []*models.ServiceListing
	err := q.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (s *DatabaseStore) ListListingsByProvider(ctx context.Context, providerID string) ([]*models.ServiceListing, error) {
	var listings []*models.ServiceListing
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

func (s *DatabaseStore) UpdateListing(ctx context.Context, listing *models.ServiceListing) error {
	return translate(s.db.WithContext(ctx).Save(listing).Error)
}

func (s *DatabaseStore) DeleteListing(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).Delete(&models.ServiceListing{}, "id = ?", id))
}

// Service operations
func (s *DatabaseStore) CreateService(ctx context.Context, svc *models.Service) error {
	return translate(s.db.WithContext(ctx).Create(svc).Error)
}

func (s *DatabaseStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &svc, nil
}

func (s *DatabaseStore) GetServicesByIDs(ctx context.Context, ids []string) ([]*models.Service, error) {
	var svcs []*models.Service
	if len(ids) == 0 {
		return svcs, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&svcs).Error
	return svcs, err
}

func (s *DatabaseStore) ListServicesByProvider(ctx context.Context, providerID string) ([]*models.Service, error) {
	var svcs []*models.Service
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC").
		Find(&svcs).Error
	return svcs, err
}

func (s *DatabaseStore) ListServicesByListing(ctx context.Context, listingID string) ([]*models.Service, error) {
	var svcs []*models.Service
	err := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&svcs).Error
	return svcs, err
}

func (s *DatabaseStore) UpdateService(ctx context.Context, svc *models.Service) error {
	return translate(s.db.WithContext(ctx).Save(svc).Error)
}

func (s *DatabaseStore) DeleteService(ctx context.Context, id string) error {
	return affected(s.db.WithContext(ctx).Delete(&models.Service{}, "id = ?", id))
}

// Booking operations
func (s *DatabaseStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").Create(booking).Error; err != nil {
			return translate(err)
		}
		if len(booking.Services) == 0 {
			return nil
		}
		for i := range booking.Services {
			booking.Services[i].BookingID = booking.ID
		}
		return translate(tx.Create(&booking.Services).Error)
	})
}

func (s *DatabaseStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Services").First(&booking, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *DatabaseStore) ListBookingsByClient(ctx context.Context, clientID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.WithContext(ctx).
		Preload("Services").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *DatabaseStore) ListBookingsByProvider(ctx context.Context, providerID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.WithContext(ctx).
		Preload("Services").
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (s *DatabaseStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	return affected(s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status))
}

// Review operations
func (s *DatabaseStore) CreateReview(ctx context.Context, review *models.Review) error {
	return translate(s.db.WithContext(ctx).Create(review).Error)
}

func (s *DatabaseStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *DatabaseStore) UpdateReview(ctx context.Context, review *models.Review) error {
	return translate(s.db.WithContext(ctx).Save(review).Error)
}

func (s *DatabaseStore) ListReviewsByService(ctx context.Context, serviceID string) ([]*models.Review, error) {
	var reviews []*models.Review
	err := s.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *DatabaseStore) ListReviewsByProvider(ctx context.Context, providerID string) ([]*models.Review, error) {
	var reviews []*models.Review
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

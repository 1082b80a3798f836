package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

// MemoryStore holds all data in memory. Used by tests and by local runs
// with storage.memory=true. Values are copied in and out so callers never
// share pointers with the store.
type MemoryStore struct {
	users    map[string]models.User
	otps     []models.OtpVerification
	messages []models.Message
	requests map[string]models.ServiceRequest
	apps     map[string]models.JobApplication
	listings map[string]models.ServiceListing
	services map[string]models.Service
	bookings map[string]models.Booking
	reviews  map[string]models.Review

	// Mutexes for thread safety
	userMu    sync.RWMutex
	otpMu     sync.RWMutex
	messageMu sync.RWMutex
	requestMu sync.RWMutex
	appMu     sync.RWMutex
	listingMu sync.RWMutex
	serviceMu sync.RWMutex
	bookingMu sync.RWMutex
	reviewMu  sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		requests: make(map[string]models.ServiceRequest),
		apps:     make(map[string]models.JobApplication),
		listings: make(map[string]models.ServiceListing),
		services: make(map[string]models.Service),
		bookings: make(map[string]models.Booking),
		reviews:  make(map[string]models.Review),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// User operations
func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, u := range m.users {
		if u.Phone == user.Phone {
			return ErrDuplicate
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return ErrDuplicate
		}
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, u := range m.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, &u)
		}
	}
	return users, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

// OTP operations
func (m *MemoryStore) CreateOTP(ctx context.Context, otp *models.OtpVerification) error {
	if err := otp.BeforeCreate(nil); err != nil {
		return err
	}
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	stamp(&otp.CreatedAt, &otp.UpdatedAt)
	m.otps = append(m.otps, *otp)
	return nil
}

func (m *MemoryStore) GetLatestOTP(ctx context.Context, phone string) (*models.OtpVerification, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	// rows are appended in creation order, so the last match is the latest
	for i := len(m.otps) - 1; i >= 0; i-- {
		if m.otps[i].Phone == phone {
			otp := m.otps[i]
			return &otp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateOTP(ctx context.Context, otp *models.OtpVerification) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	for i := range m.otps {
		if m.otps[i].ID == otp.ID {
			otp.UpdatedAt = time.Now()
			m.otps[i] = *otp
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) deleteOTPs(keep func(o *models.OtpVerification) bool) int64 {
	kept := m.otps[:0]
	var removed int64
	for i := range m.otps {
		if keep(&m.otps[i]) {
			kept = append(kept, m.otps[i])
		} else {
			removed++
		}
	}
	m.otps = kept
	return removed
}

func (m *MemoryStore) DeleteUnverifiedOTPs(ctx context.Context, phone string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.deleteOTPs(func(o *models.OtpVerification) bool {
		return o.Phone != phone || o.Verified
	})
	return nil
}

func (m *MemoryStore) DeleteOTPsByPhone(ctx context.Context, phone string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.deleteOTPs(func(o *models.OtpVerification) bool {
		return o.Phone != phone
	})
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	return m.deleteOTPs(func(o *models.OtpVerification) bool {
		return !o.ExpiresAt.Before(before)
	}), nil
}

// Message operations
func (m *MemoryStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := msg.BeforeCreate(nil); err != nil {
		return err
	}
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *MemoryStore) ListMessagesForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var out []*models.Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.SenderID == userID || msg.ReceiverID == userID {
			out = append(out, &msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) ListConversation(ctx context.Context, userID, partnerID string) ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var out []*models.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.ReceiverID == partnerID) ||
			(msg.SenderID == partnerID && msg.ReceiverID == userID) {
			msg := msg
			out = append(out, &msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Service request operations
func (m *MemoryStore) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	if err := req.BeforeCreate(nil); err != nil {
		return err
	}
	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	stamp(&req.CreatedAt, &req.UpdatedAt)
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryStore) GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ListServiceRequests(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	var out []*models.ServiceRequest
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(r.Category, filter.Category) {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(filter.Location)) {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sortRequests(out)
	return out, nil
}

func (m *MemoryStore) ListServiceRequestsByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()

	var out []*models.ServiceRequest
	for _, r := range m.requests {
		if r.ClientID == clientID {
			r := r
			out = append(out, &r)
		}
	}
	sortRequests(out)
	return out, nil
}

func sortRequests(rs []*models.ServiceRequest) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].CreatedAt.After(rs[j].CreatedAt) })
}

func (m *MemoryStore) UpdateServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	if _, ok := m.requests[req.ID]; !ok {
		return ErrNotFound
	}
	req.UpdatedAt = time.Now()
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryStore) UpdateServiceRequestStatus(ctx context.Context, id, status string) error {
	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	m.requests[id] = r
	return nil
}

// DeleteServiceRequest removes the request together with its applications
func (m *MemoryStore) DeleteServiceRequest(ctx context.Context, id string) error {
	m.requestMu.Lock()
	if _, ok := m.requests[id]; !ok {
		m.requestMu.Unlock()
		return ErrNotFound
	}
	delete(m.requests, id)
	m.requestMu.Unlock()

	m.appMu.Lock()
	defer m.appMu.Unlock()
	for appID, a := range m.apps {
		if a.RequestID == id {
			delete(m.apps, appID)
		}
	}
	return nil
}

// Job application operations
func (m *MemoryStore) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	if err := app.BeforeCreate(nil); err != nil {
		return err
	}
	m.appMu.Lock()
	defer m.appMu.Unlock()

	for _, a := range m.apps {
		if a.RequestID == app.RequestID && a.ProviderID == app.ProviderID {
			return ErrDuplicate
		}
	}
	stamp(&app.CreatedAt, &app.UpdatedAt)
	stored := *app
	stored.Request = nil
	stored.Provider = nil
	m.apps[app.ID] = stored
	return nil
}

func (m *MemoryStore) GetJobApplication(ctx context.Context, id string) (*models.JobApplication, error) {
	m.appMu.RLock()
	a, ok := m.apps[id]
	m.appMu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	m.attachRequest(&a)
	return &a, nil
}

func (m *MemoryStore) HasApplied(ctx context.Context, requestID, providerID string) (bool, error) {
	m.appMu.RLock()
	defer m.appMu.RUnlock()

	for _, a := range m.apps {
		if a.RequestID == requestID && a.ProviderID == providerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) listApplications(match func(a *models.JobApplication) bool) []*models.JobApplication {
	m.appMu.RLock()
	var out []*models.JobApplication
	for _, a := range m.apps {
		if match(&a) {
			a := a
			out = append(out, &a)
		}
	}
	m.appMu.RUnlock()

	for _, a := range out {
		m.attachRequest(a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// attachRequest mirrors the Preload done by the database store
func (m *MemoryStore) attachRequest(a *models.JobApplication) {
	m.requestMu.RLock()
	defer m.requestMu.RUnlock()
	if r, ok := m.requests[a.RequestID]; ok {
		a.Request = &r
	}
}

func (m *MemoryStore) ListApplicationsByProvider(ctx context.Context, providerID string) ([]*models.JobApplication, error) {
	return m.listApplications(func(a *models.JobApplication) bool { return a.ProviderID == providerID }), nil
}

func (m *MemoryStore) ListApplicationsByClient(ctx context.Context, clientID string) ([]*models.JobApplication, error) {
	return m.listApplications(func(a *models.JobApplication) bool { return a.ClientID == clientID }), nil
}

func (m *MemoryStore) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	m.appMu.Lock()
	defer m.appMu.Unlock()

	a, ok := m.apps[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	m.apps[id] = a
	return nil
}

// Listing operations
func (m *MemoryStore) CreateListing(ctx context.Context, listing *models.ServiceListing) error {
	if err := listing.BeforeCreate(nil); err != nil {
		return err
	}
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	stamp(&listing.CreatedAt, &listing.UpdatedAt)
	m.listings[listing.ID] = *listing
	return nil
}

func (m *MemoryStore) GetListing(ctx context.Context, id string) (*models.ServiceListing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	l, ok := m.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (m *MemoryStore) ListActiveListings(ctx context.Context, category string) ([]*models.ServiceListing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	var out []*models.ServiceListing
	for _, l := range m.listings {
		if !l.IsActive {
			continue
		}
		if category != "" && !strings.EqualFold(l.Category, category) {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListListingsByProvider(ctx context.Context, providerID string) ([]*models.ServiceListing, error) {
	m.listingMu.RLock()
	defer m.listingMu.RUnlock()

	var out []*models.ServiceListing
	for _, l := range m.listings {
		if l.ProviderID == providerID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateListing(ctx context.Context, listing *models.ServiceListing) error {
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	if _, ok := m.listings[listing.ID]; !ok {
		return ErrNotFound
	}
	listing.UpdatedAt = time.Now()
	m.listings[listing.ID] = *listing
	return nil
}

func (m *MemoryStore) DeleteListing(ctx context.Context, id string) error {
	m.listingMu.Lock()
	defer m.listingMu.Unlock()

	if _, ok := m.listings[id]; !ok {
		return ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

// Service operations
func (m *MemoryStore) CreateService(ctx context.Context, svc *models.Service) error {
	if err := svc.BeforeCreate(nil); err != nil {
		return err
	}
	m.serviceMu.Lock()
	defer m.serviceMu.Unlock()

	stamp(&svc.CreatedAt, &svc.UpdatedAt)
	m.services[svc.ID] = *svc
	return nil
}

func (m *MemoryStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	m.serviceMu.RLock()
	defer m.serviceMu.RUnlock()

	s, ok := m.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) GetServicesByIDs(ctx context.Context, ids []string) ([]*models.Service, error) {
	m.serviceMu.RLock()
	defer m.serviceMu.RUnlock()

	out := make([]*models.Service, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.services[id]; ok {
			out = append(out, &s)
		}
	}
	return out, nil
}

func (m *MemoryStore) listServices(match func(s *models.Service) bool) []*models.Service {
	m.serviceMu.RLock()
	defer m.serviceMu.RUnlock()

	var out []*models.Service
	for _, s := range m.services {
		if match(&s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListServicesByProvider(ctx context.Context, providerID string) ([]*models.Service, error) {
	return m.listServices(func(s *models.Service) bool { return s.ProviderID == providerID }), nil
}

func (m *MemoryStore) ListServicesByListing(ctx context.Context, listingID string) ([]*models.Service, error) {
	return m.listServices(func(s *models.Service) bool {
		return s.ListingID != nil && *s.ListingID == listingID
	}), nil
}

func (m *MemoryStore) UpdateService(ctx context.Context, svc *models.Service) error {
	m.serviceMu.Lock()
	defer m.serviceMu.Unlock()

	if _, ok := m.services[svc.ID]; !ok {
		return ErrNotFound
	}
	svc.UpdatedAt = time.Now()
	m.services[svc.ID] = *svc
	return nil
}

func (m *MemoryStore) DeleteService(ctx context.Context, id string) error {
	m.serviceMu.Lock()
	defer m.serviceMu.Unlock()

	if _, ok := m.services[id]; !ok {
		return ErrNotFound
	}
	delete(m.services, id)
	return nil
}

// Booking operations
func (m *MemoryStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := booking.BeforeCreate(nil); err != nil {
		return err
	}
	for i := range booking.Services {
		booking.Services[i].BookingID = booking.ID
		if err := booking.Services[i].BeforeCreate(nil); err != nil {
			return err
		}
	}
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	stamp(&booking.CreatedAt, &booking.UpdatedAt)
	m.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func cloneBooking(b *models.Booking) models.Booking {
	c := *b
	c.Services = append([]models.BookingService(nil), b.Services...)
	return c
}

func (m *MemoryStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneBooking(&b)
	return &c, nil
}

func (m *MemoryStore) listBookings(match func(b *models.Booking) bool) []*models.Booking {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var out []*models.Booking
	for _, b := range m.bookings {
		if match(&b) {
			c := cloneBooking(&b)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListBookingsByClient(ctx context.Context, clientID string) ([]*models.Booking, error) {
	return m.listBookings(func(b *models.Booking) bool { return b.ClientID == clientID }), nil
}

func (m *MemoryStore) ListBookingsByProvider(ctx context.Context, providerID string) ([]*models.Booking, error) {
	return m.listBookings(func(b *models.Booking) bool { return b.ProviderID == providerID }), nil
}

func (m *MemoryStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	m.bookings[id] = b
	return nil
}

// Review operations
func (m *MemoryStore) CreateReview(ctx context.Context, review *models.Review) error {
	if err := review.BeforeCreate(nil); err != nil {
		return err
	}
	m.reviewMu.Lock()
	defer m.reviewMu.Unlock()

	stamp(&review.CreatedAt, &review.UpdatedAt)
	stored := *review
	stored.Reviewer = nil
	m.reviews[review.ID] = stored
	return nil
}

func (m *MemoryStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	m.reviewMu.RLock()
	defer m.reviewMu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) UpdateReview(ctx context.Context, review *models.Review) error {
	m.reviewMu.Lock()
	defer m.reviewMu.Unlock()

	if _, ok := m.reviews[review.ID]; !ok {
		return ErrNotFound
	}
	review.UpdatedAt = time.Now()
	stored := *review
	stored.Reviewer = nil
	m.reviews[review.ID] = stored
	return nil
}

func (m *MemoryStore) listReviews(match func(r *models.Review) bool) []*models.Review {
	m.reviewMu.RLock()
	defer m.reviewMu.RUnlock()

	var out []*models.Review
	for _, r := range m.reviews {
		if match(&r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryStore) ListReviewsByService(ctx context.Context, serviceID string) ([]*models.Review, error) {
	return m.listReviews(func(r *models.Review) bool { return r.ServiceID == serviceID }), nil
}

func (m *MemoryStore) ListReviewsByProvider(ctx context.Context, providerID string) ([]*models.Review, error) {
	return m.listReviews(func(r *models.Review) bool { return r.ProviderID == providerID }), nil
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type BookingService struct {
	store storage.Store
	pub   events.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewBookingService(store storage.Store, pub events.Publisher, logger *zap.Logger) *BookingService {
	return &BookingService{store: store, pub: pub, log: logger.Named("bookings"), now: time.Now}
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// transition describes who may move a booking into a status and from where
type transition struct {
	byProvider bool
	from       []string
}

var bookingTransitions = map[string]transition{
	models.BookingStatusAccepted:  {byProvider: true, from: []string{models.BookingStatusPending}},
	models.BookingStatusRejected:  {byProvider: true, from: []string{models.BookingStatusPending}},
	models.BookingStatusCompleted: {byProvider: true, from: []string{models.BookingStatusAccepted}},
	models.BookingStatusCancelled: {byProvider: false, from: []string{models.BookingStatusPending, models.BookingStatusAccepted}},
}

// Create books one or more of a provider's active services. The total is the
// sum of the service prices at booking time.
func (s *BookingService) Create(ctx context.Context, actor Actor, in models.BookingCreate) (*models.Booking, error) {
	if !actor.IsClient() {
		return nil, Forbidden("only clients can make bookings")
	}
	if in.ProviderID == actor.ID {
		return nil, BadRequest("cannot book your own services")
	}
	if !in.ScheduledAt.After(s.now()) {
		return nil, BadRequest("scheduled_at must be in the future")
	}

	provider, err := s.store.GetUser(ctx, in.ProviderID)
	if err != nil {
		return nil, storeError(err, "provider")
	}
	if provider.Role != models.RoleProvider {
		return nil, BadRequest("user is not a provider")
	}

	var listingID *string
	if in.ListingID != "" {
		l, err := s.store.GetListing(ctx, in.ListingID)
		if err != nil {
			return nil, storeError(err, "listing")
		}
		if l.ProviderID != provider.ID {
			return nil, BadRequest("listing does not belong to this provider")
		}
		listingID = &l.ID
	}

	seen := make(map[string]bool, len(in.ServiceIDs))
	for _, id := range in.ServiceIDs {
		if seen[id] {
			return nil, BadRequest("service %s listed more than once", id)
		}
		seen[id] = true
	}

	svcs, err := s.store.GetServicesByIDs(ctx, in.ServiceIDs)
	if err != nil {
		return nil, Internal(err, "failed to load services")
	}
	if len(svcs) != len(in.ServiceIDs) {
		return nil, NotFound("one or more services not found")
	}

	booking := &models.Booking{
		ClientID:    actor.ID,
		ProviderID:  provider.ID,
		ListingID:   listingID,
		ScheduledAt: in.ScheduledAt,
		Notes:       in.Notes,
		Status:      models.BookingStatusPending,
		Services:    make([]models.BookingService, 0, len(svcs)),
	}
	for _, svc := range svcs {
		if svc.ProviderID != provider.ID {
			return nil, BadRequest("service %s is not offered by this provider", svc.ID)
		}
		if !svc.IsActive {
			return nil, BadRequest("service %s is not available", svc.ID)
		}
		booking.TotalAmount += svc.Price
		booking.Services = append(booking.Services, models.BookingService{
			ServiceID: svc.ID,
			Name:      svc.Name,
			Price:     svc.Price,
		})
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, Internal(err, "failed to create booking")
	}

	s.log.Info("booking created", zap.String("booking_id", booking.ID), zap.Float64("total", booking.TotalAmount))
	publish(ctx, s.log, s.pub, events.BookingCreated, booking.ID, booking)
	return booking, nil
}

// Get returns a booking to its client or provider only
func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeError(err, "booking")
	}
	if !b.IsParticipant(actor.ID) {
		return nil, Forbidden("not your booking")
	}
	return b, nil
}

func (s *BookingService) ListAsClient(ctx context.Context, actor Actor) ([]*models.Booking, error) {
	out, err := s.store.ListBookingsByClient(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list bookings")
	}
	return nonNil(out), nil
}

func (s *BookingService) ListAsProvider(ctx context.Context, actor Actor) ([]*models.Booking, error) {
	out, err := s.store.ListBookingsByProvider(ctx, actor.ID)
	if err != nil {
		return nil, Internal(err, "failed to list bookings")
	}
	return nonNil(out), nil
}

// UpdateStatus applies a provider or client transition
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*models.Booking, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	tr, ok := bookingTransitions[status]
	if !ok {
		return nil, BadRequest("unsupported status %q", status)
	}
	if tr.byProvider && b.ProviderID != actor.ID {
		return nil, Forbidden("only the provider can mark a booking %s", status)
	}
	if !tr.byProvider && b.ClientID != actor.ID {
		return nil, Forbidden("only the client can mark a booking %s", status)
	}

	allowed := false
	for _, from := range tr.from {
		if b.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, BadRequest("cannot move booking from %s to %s", b.Status, status)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, storeError(err, "booking")
	}
	b.Status = status

	publish(ctx, s.log, s.pub, events.BookingStatusChanged, b.ID, map[string]string{
		"id":     b.ID,
		"status": status,
	})
	return b, nil
}

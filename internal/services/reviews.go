package services

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type ReviewService struct {
	store storage.Store
	pub   events.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewReviewService(store storage.Store, pub events.Publisher, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: store, pub: pub, log: logger.Named("reviews"), now: time.Now}
}

func (s *ReviewService) Create(ctx context.Context, actor Actor, in models.ReviewCreate) (*models.Review, error) {
	svc, err := s.store.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, storeError(err, "service")
	}
	if svc.ProviderID == actor.ID {
		return nil, BadRequest("cannot review your own service")
	}

	var bookingID *string
	if in.BookingID != "" {
		b, err := s.store.GetBooking(ctx, in.BookingID)
		if err != nil {
			return nil, storeError(err, "booking")
		}
		if b.ClientID != actor.ID {
			return nil, Forbidden("not your booking")
		}
		if b.Status != models.BookingStatusCompleted {
			return nil, BadRequest("booking is not completed yet")
		}
		if !bookingIncludes(b, svc.ID) {
			return nil, BadRequest("booking does not include this service")
		}
		bookingID = &b.ID
	}

	review := &models.Review{
		ReviewerID: actor.ID,
		ServiceID:  svc.ID,
		ProviderID: svc.ProviderID,
		BookingID:  bookingID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, storeError(err, "review")
	}

	publish(ctx, s.log, s.pub, events.ReviewCreated, review.ID, review)
	return review, nil
}

func bookingIncludes(b *models.Booking, serviceID string) bool {
	for _, line := range b.Services {
		if line.ServiceID == serviceID {
			return true
		}
	}
	return false
}

// Update edits the rating or comment; only the reviewer may do so
func (s *ReviewService) Update(ctx context.Context, actor Actor, id string, upd models.ReviewUpdate) (*models.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, storeError(err, "review")
	}
	if r.ReviewerID != actor.ID {
		return nil, Forbidden("not your review")
	}
	if upd.Rating != nil {
		r.Rating = *upd.Rating
	}
	if upd.Comment != nil {
		r.Comment = strings.TrimSpace(*upd.Comment)
	}
	if err := s.store.UpdateReview(ctx, r); err != nil {
		return nil, storeError(err, "review")
	}
	return r, nil
}

// Reply stores the provider's public response to a review
func (s *ReviewService) Reply(ctx context.Context, actor Actor, id string, in models.ReviewReply) (*models.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, storeError(err, "review")
	}
	if r.ProviderID != actor.ID {
		return nil, Forbidden("only the reviewed provider can reply")
	}
	now := s.now()
	r.ProviderReply = strings.TrimSpace(in.Reply)
	r.RepliedAt = &now
	if err := s.store.UpdateReview(ctx, r); err != nil {
		return nil, storeError(err, "review")
	}
	return r, nil
}

func (s *ReviewService) ListByService(ctx context.Context, serviceID string) (*models.ReviewSummary, error) {
	rs, err := s.store.ListReviewsByService(ctx, serviceID)
	if err != nil {
		return nil, Internal(err, "failed to list reviews")
	}
	return s.summarize(ctx, rs)
}

func (s *ReviewService) ListByProvider(ctx context.Context, providerID string) (*models.ReviewSummary, error) {
	rs, err := s.store.ListReviewsByProvider(ctx, providerID)
	if err != nil {
		return nil, Internal(err, "failed to list reviews")
	}
	return s.summarize(ctx, rs)
}

// summarize attaches reviewer profiles and computes the average rating to two decimals
func (s *ReviewService) summarize(ctx context.Context, rs []*models.Review) (*models.ReviewSummary, error) {
	sum := &models.ReviewSummary{Reviews: nonNil(rs), Count: len(rs)}
	if len(rs) == 0 {
		return sum, nil
	}

	ids := make([]string, 0, len(rs))
	total := 0
	for _, r := range rs {
		ids = append(ids, r.ReviewerID)
		total += r.Rating
	}
	sum.AverageRating = math.Round(float64(total)/float64(len(rs))*100) / 100

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err, "failed to load reviewers")
	}
	profiles := make(map[string]models.PublicProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Public()
	}
	for _, r := range rs {
		if p, ok := profiles[r.ReviewerID]; ok {
			p := p
			r.Reviewer = &p
		}
	}
	return sum, nil
}

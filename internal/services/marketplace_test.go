package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

type market struct {
	store    *storage.MemoryStore
	rec      *events.Recorder
	requests *ServiceRequestService
	apps     *JobApplicationService
	listings *ListingService
	catalog  *CatalogService
	bookings *BookingService
	reviews  *ReviewService

	client   Actor
	provider Actor
	other    Actor
}

func newMarket(t *testing.T) *market {
	t.Helper()
	store := storage.NewMemoryStore()
	rec := &events.Recorder{}
	log := zap.NewNop()

	c := seedUser(t, store, "+639170000001", models.RoleClient)
	p := seedUser(t, store, "+639170000002", models.RoleProvider)
	o := seedUser(t, store, "+639170000003", models.RoleProvider)

	return &market{
		store:    store,
		rec:      rec,
		requests: NewServiceRequestService(store, log),
		apps:     NewJobApplicationService(store, rec, log),
		listings: NewListingService(store, log),
		catalog:  NewCatalogService(store, log),
		bookings: NewBookingService(store, rec, log),
		reviews:  NewReviewService(store, rec, log),
		client:   Actor{ID: c.ID, Role: c.Role},
		provider: Actor{ID: p.ID, Role: p.Role},
		other:    Actor{ID: o.ID, Role: o.Role},
	}
}

func (m *market) postRequest(t *testing.T) *models.ServiceRequest {
	t.Helper()
	req, err := m.requests.Create(context.Background(), m.client, models.ServiceRequestCreate{
		Title:    "Fix leaking sink",
		Category: "Plumbing",
		Location: "Makati City",
		Budget:   1500,
	})
	require.NoError(t, err)
	return req
}

func (m *market) offer(t *testing.T, owner Actor, name string, price float64) *models.Service {
	t.Helper()
	svc, err := m.catalog.Create(context.Background(), owner, models.ServiceCreate{Name: name, Price: price})
	require.NoError(t, err)
	return svc
}

func TestServiceRequestLifecycle(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()

	_, err := m.requests.Create(ctx, m.provider, models.ServiceRequestCreate{Title: "x", Category: "y"})
	requireStatus(t, err, http.StatusForbidden)

	req := m.postRequest(t)
	assert.Equal(t, models.RequestStatusOpen, req.Status)

	open, err := m.requests.List(ctx, models.ServiceRequestFilter{Category: "plumbing", Location: "makati"})
	require.NoError(t, err)
	require.Len(t, open, 1)

	none, err := m.requests.List(ctx, models.ServiceRequestFilter{Category: "electrical"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	title := "Fix leaking kitchen sink"
	_, err = m.requests.Update(ctx, m.provider, req.ID, models.ServiceRequestUpdate{Title: &title})
	requireStatus(t, err, http.StatusForbidden)

	updated, err := m.requests.Update(ctx, m.client, req.ID, models.ServiceRequestUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	mine, err := m.requests.ListMine(ctx, m.client)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	requireStatus(t, m.requests.Delete(ctx, m.provider, req.ID), http.StatusForbidden)
	require.NoError(t, m.requests.Delete(ctx, m.client, req.ID))
	_, err = m.requests.Get(ctx, req.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestApplyRejectsDuplicate(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	req := m.postRequest(t)

	app, err := m.apps.Apply(ctx, m.provider, models.JobApplicationCreate{RequestID: req.ID, ProposedPrice: 1200})
	require.NoError(t, err)
	assert.Equal(t, req.ClientID, app.ClientID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)

	_, err = m.apps.Apply(ctx, m.provider, models.JobApplicationCreate{RequestID: req.ID})
	requireStatus(t, err, http.StatusConflict)

	_, err = m.apps.Apply(ctx, m.other, models.JobApplicationCreate{RequestID: req.ID})
	assert.NoError(t, err, "a different provider may still apply")

	assert.Equal(t, []string{events.JobApplicationCreated, events.JobApplicationCreated}, m.rec.Types())
}

func TestApplyGuards(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()

	_, err := m.apps.Apply(ctx, m.provider, models.JobApplicationCreate{RequestID: "5f0c9a52-0d0e-4b7a-9b7e-3e3f1c2d4a5b"})
	requireStatus(t, err, http.StatusNotFound)

	req := m.postRequest(t)
	_, err = m.apps.Apply(ctx, m.client, models.JobApplicationCreate{RequestID: req.ID})
	requireStatus(t, err, http.StatusForbidden)

	require.NoError(t, m.store.UpdateServiceRequestStatus(ctx, req.ID, models.RequestStatusCancelled))
	_, err = m.apps.Apply(ctx, m.provider, models.JobApplicationCreate{RequestID: req.ID})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestApplicationStatusTransitions(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	req := m.postRequest(t)

	a1, err := m.apps.Apply(ctx, m.provider, models.JobApplicationCreate{RequestID: req.ID})
	require.NoError(t, err)
	a2, err := m.apps.Apply(ctx, m.other, models.JobApplicationCreate{RequestID: req.ID})
	require.NoError(t, err)

	_, err = m.apps.UpdateStatus(ctx, m.provider, a1.ID, models.ApplicationStatusAccepted)
	requireStatus(t, err, http.StatusForbidden)
	_, err = m.apps.UpdateStatus(ctx, m.client, a2.ID, models.ApplicationStatusWithdrawn)
	requireStatus(t, err, http.StatusForbidden)

	_, err = m.apps.UpdateStatus(ctx, m.other, a2.ID, models.ApplicationStatusWithdrawn)
	require.NoError(t, err)

	accepted, err := m.apps.UpdateStatus(ctx, m.client, a1.ID, models.ApplicationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)

	got, err := m.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, got.Status)

	_, err = m.apps.UpdateStatus(ctx, m.client, a1.ID, models.ApplicationStatusRejected)
	requireStatus(t, err, http.StatusBadRequest)

	received, err := m.apps.ListReceived(ctx, m.client)
	require.NoError(t, err)
	require.Len(t, received, 2)
	for _, a := range received {
		require.NotNil(t, a.Provider)
	}

	sent, err := m.apps.ListSent(ctx, m.provider)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Request)
	assert.Equal(t, req.ID, sent[0].Request.ID)
}

func TestListingAndCatalogOwnership(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()

	_, err := m.listings.Create(ctx, m.client, models.ListingCreate{Title: "Aircon cleaning", Category: "Aircon"})
	requireStatus(t, err, http.StatusForbidden)

	l, err := m.listings.Create(ctx, m.provider, models.ListingCreate{Title: "Aircon cleaning", Category: "Aircon", Rate: 800})
	require.NoError(t, err)
	assert.True(t, l.IsActive)
	assert.Equal(t, models.RateTypeFixed, l.RateType)

	_, err = m.catalog.Create(ctx, m.other, models.ServiceCreate{ListingID: l.ID, Name: "Split type", Price: 900})
	requireStatus(t, err, http.StatusForbidden)

	svc, err := m.catalog.Create(ctx, m.provider, models.ServiceCreate{ListingID: l.ID, Name: "Split type", Price: 900})
	require.NoError(t, err)
	byListing, err := m.catalog.ListByListing(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, byListing, 1)
	assert.Equal(t, svc.ID, byListing[0].ID)

	inactive := false
	_, err = m.listings.Update(ctx, m.other, l.ID, models.ListingUpdate{IsActive: &inactive})
	requireStatus(t, err, http.StatusForbidden)
	_, err = m.listings.Update(ctx, m.provider, l.ID, models.ListingUpdate{IsActive: &inactive})
	require.NoError(t, err)

	active, err := m.listings.ListActive(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, active)

	price := 1000.0
	_, err = m.catalog.Update(ctx, m.other, svc.ID, models.ServiceUpdate{Price: &price})
	requireStatus(t, err, http.StatusForbidden)
	requireStatus(t, m.catalog.Delete(ctx, m.other, svc.ID), http.StatusForbidden)
	require.NoError(t, m.catalog.Delete(ctx, m.provider, svc.ID))
	require.NoError(t, m.listings.Delete(ctx, m.provider, l.ID))
}

func TestBookingTotalsAndTransitions(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	a := m.offer(t, m.provider, "Deep cleaning", 1200)
	b := m.offer(t, m.provider, "Sofa shampoo", 650.5)
	foreign := m.offer(t, m.other, "Painting", 3000)

	in := models.BookingCreate{
		ProviderID:  m.provider.ID,
		ServiceIDs:  []string{a.ID, b.ID},
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}

	booking, err := m.bookings.Create(ctx, m.client, in)
	require.NoError(t, err)
	assert.Equal(t, 1850.5, booking.TotalAmount)
	require.Len(t, booking.Services, 2)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	bad := in
	bad.ServiceIDs = []string{a.ID, foreign.ID}
	_, err = m.bookings.Create(ctx, m.client, bad)
	requireStatus(t, err, http.StatusBadRequest)

	past := in
	past.ScheduledAt = time.Now().Add(-time.Hour)
	_, err = m.bookings.Create(ctx, m.client, past)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = m.bookings.Get(ctx, m.other, booking.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = m.bookings.UpdateStatus(ctx, m.client, booking.ID, models.BookingStatusAccepted)
	requireStatus(t, err, http.StatusForbidden)
	_, err = m.bookings.UpdateStatus(ctx, m.provider, booking.ID, models.BookingStatusCompleted)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = m.bookings.UpdateStatus(ctx, m.provider, booking.ID, models.BookingStatusAccepted)
	require.NoError(t, err)
	done, err := m.bookings.UpdateStatus(ctx, m.provider, booking.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Status)

	_, err = m.bookings.UpdateStatus(ctx, m.client, booking.ID, models.BookingStatusCancelled)
	requireStatus(t, err, http.StatusBadRequest)

	asClient, err := m.bookings.ListAsClient(ctx, m.client)
	require.NoError(t, err)
	assert.Len(t, asClient, 1)
	asProvider, err := m.bookings.ListAsProvider(ctx, m.provider)
	require.NoError(t, err)
	assert.Len(t, asProvider, 1)

	assert.Contains(t, m.rec.Types(), events.BookingCreated)
	assert.Contains(t, m.rec.Types(), events.BookingStatusChanged)
}

func TestReviews(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	svc := m.offer(t, m.provider, "Deep cleaning", 1200)

	_, err := m.reviews.Create(ctx, m.provider, models.ReviewCreate{ServiceID: svc.ID, Rating: 5})
	requireStatus(t, err, http.StatusBadRequest)

	r1, err := m.reviews.Create(ctx, m.client, models.ReviewCreate{ServiceID: svc.ID, Rating: 4, Comment: "Maayos"})
	require.NoError(t, err)
	assert.Equal(t, m.provider.ID, r1.ProviderID)
	_, err = m.reviews.Create(ctx, m.other, models.ReviewCreate{ServiceID: svc.ID, Rating: 5})
	require.NoError(t, err)

	five := 5
	_, err = m.reviews.Update(ctx, m.other, r1.ID, models.ReviewUpdate{Rating: &five})
	requireStatus(t, err, http.StatusForbidden)

	_, err = m.reviews.Reply(ctx, m.client, r1.ID, models.ReviewReply{Reply: "thanks"})
	requireStatus(t, err, http.StatusForbidden)
	replied, err := m.reviews.Reply(ctx, m.provider, r1.ID, models.ReviewReply{Reply: "Salamat po!"})
	require.NoError(t, err)
	assert.Equal(t, "Salamat po!", replied.ProviderReply)
	assert.NotNil(t, replied.RepliedAt)

	summary, err := m.reviews.ListByService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 4.5, summary.AverageRating)
	for _, r := range summary.Reviews {
		require.NotNil(t, r.Reviewer)
	}

	byProvider, err := m.reviews.ListByProvider(ctx, m.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, byProvider.Count)

	empty, err := m.reviews.ListByProvider(ctx, m.other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Reviews)
}

func TestReviewTiedToBookingMustBeCompleted(t *testing.T) {
	m := newMarket(t)
	ctx := context.Background()
	svc := m.offer(t, m.provider, "Deep cleaning", 1200)
	booking, err := m.bookings.Create(ctx, m.client, models.BookingCreate{
		ProviderID:  m.provider.ID,
		ServiceIDs:  []string{svc.ID},
		ScheduledAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	in := models.ReviewCreate{ServiceID: svc.ID, BookingID: booking.ID, Rating: 5}
	_, err = m.reviews.Create(ctx, m.client, in)
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, m.store.UpdateBookingStatus(ctx, booking.ID, models.BookingStatusCompleted))
	r, err := m.reviews.Create(ctx, m.client, in)
	require.NoError(t, err)
	require.NotNil(t, r.BookingID)
	assert.Equal(t, booking.ID, *r.BookingID)
}

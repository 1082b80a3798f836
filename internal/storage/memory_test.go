package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

func TestMemoryCreateUserDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	email := "juan@example.com"
	require.NoError(t, store.CreateUser(ctx, &models.User{Phone: "+639171234567", Email: &email}))
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{Phone: "+639171234567"}), ErrDuplicate)

	other := "juan@example.com"
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{Phone: "+639181234567", Email: &other}), ErrDuplicate)

	found, err := store.GetUserByEmail(ctx, " JUAN@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "+639171234567", found.Phone)

	_, err = store.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOTPLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	phone := "+639171234567"
	now := time.Now()

	first := &models.OtpVerification{Phone: phone, OtpCode: "111111", ExpiresAt: now.Add(-time.Hour)}
	second := &models.OtpVerification{Phone: phone, OtpCode: "222222", ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, store.CreateOTP(ctx, first))
	require.NoError(t, store.CreateOTP(ctx, second))

	latest, err := store.GetLatestOTP(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "222222", latest.OtpCode)

	latest.Verified = true
	require.NoError(t, store.UpdateOTP(ctx, latest))

	// only the unverified first row goes
	require.NoError(t, store.DeleteUnverifiedOTPs(ctx, phone))
	n, err := store.DeleteExpiredOTPs(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	latest, err = store.GetLatestOTP(ctx, phone)
	require.NoError(t, err)
	assert.True(t, latest.Verified)

	require.NoError(t, store.DeleteOTPsByPhone(ctx, phone))
	_, err = store.GetLatestOTP(ctx, phone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMessagesOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateMessage(ctx, &models.Message{SenderID: "a", ReceiverID: "b", Content: "one", CreatedAt: base}))
	require.NoError(t, store.CreateMessage(ctx, &models.Message{SenderID: "b", ReceiverID: "a", Content: "two", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.CreateMessage(ctx, &models.Message{SenderID: "c", ReceiverID: "a", Content: "three", CreatedAt: base.Add(2 * time.Minute)}))

	all, err := store.ListMessagesForUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Content)
	assert.Equal(t, "one", all[2].Content)

	conv, err := store.ListConversation(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "one", conv[0].Content)
	assert.Equal(t, "two", conv[1].Content)
}

func TestMemoryJobApplicationDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	req := &models.ServiceRequest{ClientID: "client", Title: "Fix sink"}
	require.NoError(t, store.CreateServiceRequest(ctx, req))

	app := &models.JobApplication{RequestID: req.ID, ProviderID: "provider", ClientID: "client"}
	require.NoError(t, store.CreateJobApplication(ctx, app))
	assert.Equal(t, models.ApplicationStatusPending, app.Status)

	applied, err := store.HasApplied(ctx, req.ID, "provider")
	require.NoError(t, err)
	assert.True(t, applied)

	dup := &models.JobApplication{RequestID: req.ID, ProviderID: "provider", ClientID: "client"}
	assert.ErrorIs(t, store.CreateJobApplication(ctx, dup), ErrDuplicate)

	got, err := store.GetJobApplication(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Request)
	assert.Equal(t, "Fix sink", got.Request.Title)

	assert.ErrorIs(t, store.UpdateApplicationStatus(ctx, "missing", models.ApplicationStatusAccepted), ErrNotFound)
}

func TestMemoryDeleteServiceRequestRemovesApplications(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	req := &models.ServiceRequest{ClientID: "client", Title: "Paint fence"}
	require.NoError(t, store.CreateServiceRequest(ctx, req))
	keep := &models.ServiceRequest{ClientID: "client", Title: "Fix roof"}
	require.NoError(t, store.CreateServiceRequest(ctx, keep))

	require.NoError(t, store.CreateJobApplication(ctx, &models.JobApplication{RequestID: req.ID, ProviderID: "provider", ClientID: "client"}))
	require.NoError(t, store.CreateJobApplication(ctx, &models.JobApplication{RequestID: keep.ID, ProviderID: "provider", ClientID: "client"}))

	require.NoError(t, store.DeleteServiceRequest(ctx, req.ID))

	sent, err := store.ListApplicationsByProvider(ctx, "provider")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, keep.ID, sent[0].RequestID)

	assert.ErrorIs(t, store.DeleteServiceRequest(ctx, req.ID), ErrNotFound)
}

func TestMemoryBookingIsCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	booking := &models.Booking{
		ClientID:   "client",
		ProviderID: "provider",
		Services:   []models.BookingService{{ServiceID: "s1", Price: 500}},
	}
	require.NoError(t, store.CreateBooking(ctx, booking))
	assert.Equal(t, booking.ID, booking.Services[0].BookingID)

	booking.Services[0].Price = 1
	got, err := store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Services[0].Price)
	assert.Equal(t, models.BookingStatusPending, got.Status)
}

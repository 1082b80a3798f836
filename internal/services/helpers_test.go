package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/cache"
	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
)

const testPhone = "+639171234567"

var codePattern = regexp.MustCompile(`\d{6}`)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

type otpFixture struct {
	svc   *OTPService
	store *storage.MemoryStore
	sms   *FakeSMS
	clock *clock
}

func newOTPFixture(t *testing.T) *otpFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	sms := &FakeSMS{}
	clk := newClock()
	svc := NewOTPService(store, cache.NewMemoryCache().WithClock(clk.now), sms, OTPOptions{
		TTL:          5 * time.Minute,
		MaxAttempts:  5,
		SendsPerHour: 5,
	}, zap.NewNop()).WithClock(clk.now)
	return &otpFixture{svc: svc, store: store, sms: sms, clock: clk}
}

// lastCode pulls the code out of the most recent SMS
func (f *otpFixture) lastCode(t *testing.T) string {
	t.Helper()
	msg, ok := f.sms.Last()
	require.True(t, ok, "no sms sent")
	code := codePattern.FindString(msg.Body)
	require.NotEmpty(t, code)
	return code
}

// seedUser stores a user directly, bypassing signup
func seedUser(t *testing.T, store storage.Store, phone, role string) *models.User {
	t.Helper()
	u := &models.User{Phone: phone, FirstName: "Juan", LastName: "Dela Cruz", Role: role, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func newRecorder() *events.Recorder { return &events.Recorder{} }

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, StatusOf(err), err.Error())
}

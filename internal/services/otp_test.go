package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOTPRejectsMalformedPhone(t *testing.T) {
	f := newOTPFixture(t)
	_, err := f.svc.SendOTP(context.Background(), "12345")
	requireStatus(t, err, http.StatusBadRequest)
	assert.Empty(t, f.sms.Sent)
}

func TestSendOTPStoresCodeAndSendsSMS(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	sent, err := f.svc.SendOTP(ctx, "0917 123 4567")
	require.NoError(t, err)
	assert.Equal(t, testPhone, sent.Phone)
	assert.Equal(t, f.clock.t.Add(5*time.Minute), sent.ExpiresAt)

	msg, ok := f.sms.Last()
	require.True(t, ok)
	assert.Equal(t, testPhone, msg.To)

	otp, err := f.store.GetLatestOTP(ctx, testPhone)
	require.NoError(t, err)
	assert.Equal(t, f.lastCode(t), otp.OtpCode)
	assert.Zero(t, otp.Attempts)
	assert.False(t, otp.Verified)
}

func TestSendOTPReplacesUnverifiedCode(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)
	first, _ := f.store.GetLatestOTP(ctx, testPhone)

	_, err = f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)
	second, _ := f.store.GetLatestOTP(ctx, testPhone)

	assert.NotEqual(t, first.ID, second.ID)
	n, err := f.store.DeleteExpiredOTPs(ctx, f.clock.t.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "the first code should have been discarded")
}

func TestSendOTPRateLimited(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.SendOTP(ctx, testPhone)
		require.NoError(t, err)
	}
	_, err := f.svc.SendOTP(ctx, testPhone)
	requireStatus(t, err, http.StatusTooManyRequests)

	f.clock.advance(time.Hour)
	_, err = f.svc.SendOTP(ctx, testPhone)
	assert.NoError(t, err)
}

func TestSendOTPGatewayFailure(t *testing.T) {
	f := newOTPFixture(t)
	f.sms.Err = errors.New("gateway down")
	_, err := f.svc.SendOTP(context.Background(), testPhone)
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestVerifyOTPWithoutSend(t *testing.T) {
	f := newOTPFixture(t)
	_, err := f.svc.VerifyOTP(context.Background(), testPhone, "123456")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestVerifyOTPExactMatch(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)

	otp, err := f.svc.VerifyOTP(ctx, "09171234567", f.lastCode(t))
	require.NoError(t, err)
	assert.True(t, otp.Verified)
	require.NotNil(t, otp.VerifiedAt)

	// verifying again is idempotent
	_, err = f.svc.VerifyOTP(ctx, testPhone, "000000")
	assert.NoError(t, err)
}

func TestVerifyOTPMismatchCountsAttempts(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)
	good := f.lastCode(t)
	bad := "000000"
	if good == bad {
		bad = "111111"
	}

	for i := 1; i <= 5; i++ {
		_, err := f.svc.VerifyOTP(ctx, testPhone, bad)
		requireStatus(t, err, http.StatusBadRequest)
		otp, _ := f.store.GetLatestOTP(ctx, testPhone)
		assert.Equal(t, i, otp.Attempts)
	}

	// the correct code no longer helps
	_, err = f.svc.VerifyOTP(ctx, testPhone, good)
	requireStatus(t, err, http.StatusTooManyRequests)
}

func TestVerifyOTPExpiredWinsOverAttempts(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)
	code := f.lastCode(t)

	f.clock.advance(5*time.Minute + time.Second)
	_, err = f.svc.VerifyOTP(ctx, testPhone, code)
	requireStatus(t, err, http.StatusBadRequest)

	otp, _ := f.store.GetLatestOTP(ctx, testPhone)
	assert.False(t, otp.Verified)
}

func TestRequireVerified(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()

	requireStatus(t, f.svc.RequireVerified(ctx, testPhone), http.StatusBadRequest)

	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)
	requireStatus(t, f.svc.RequireVerified(ctx, testPhone), http.StatusBadRequest)

	_, err = f.svc.VerifyOTP(ctx, testPhone, f.lastCode(t))
	require.NoError(t, err)
	assert.NoError(t, f.svc.RequireVerified(ctx, testPhone))

	require.NoError(t, f.svc.Consume(ctx, testPhone))
	requireStatus(t, f.svc.RequireVerified(ctx, testPhone), http.StatusBadRequest)
}

func TestPurgeExpired(t *testing.T) {
	f := newOTPFixture(t)
	ctx := context.Background()
	_, err := f.svc.SendOTP(ctx, testPhone)
	require.NoError(t, err)

	n, err := f.svc.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.advance(2 * time.Hour)
	n, err = f.svc.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

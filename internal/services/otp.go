package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/cache"
	"github.com/hanapp-ph/hanapp-backend/internal/metrics"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

// OTPOptions bounds the verification flow
type OTPOptions struct {
	TTL          time.Duration
	MaxAttempts  int
	SendsPerHour int // 0 disables the send limit
}

type OTPService struct {
	store storage.Store
	cache cache.Cache
	sms   SMSSender
	opts  OTPOptions
	log   *zap.Logger
	now   func() time.Time
}

func NewOTPService(store storage.Store, c cache.Cache, sms SMSSender, opts OTPOptions, logger *zap.Logger) *OTPService {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &OTPService{
		store: store,
		cache: c,
		sms:   sms,
		opts:  opts,
		log:   logger.Named("otp"),
		now:   time.Now,
	}
}

// WithClock replaces the time source
func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

func sendKey(phone string) string { return "otp:send:" + phone }

// SendOTP issues a fresh code for the phone, discarding earlier unverified ones
func (s *OTPService) SendOTP(ctx context.Context, rawPhone string) (*models.OTPSent, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return nil, BadRequest("invalid phone number")
	}

	if s.opts.SendsPerHour > 0 {
		count, err := s.cache.Incr(ctx, sendKey(phone), time.Hour)
		if err != nil {
			return nil, Internal(err, "failed to check send limit")
		}
		if count > int64(s.opts.SendsPerHour) {
			metrics.RecordOTPSend("rate_limited")
			return nil, TooManyRequests("too many codes requested, try again later")
		}
	}

	if err := s.store.DeleteUnverifiedOTPs(ctx, phone); err != nil {
		return nil, Internal(err, "failed to reset previous codes")
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, Internal(err, "failed to generate code")
	}

	otp := &models.OtpVerification{
		Phone:     phone,
		OtpCode:   code,
		ExpiresAt: s.now().Add(s.opts.TTL),
	}
	if err := s.store.CreateOTP(ctx, otp); err != nil {
		return nil, Internal(err, "failed to store code")
	}

	body := fmt.Sprintf("Your HanApp verification code is %s. It expires in %d minutes.", code, int(s.opts.TTL.Minutes()))
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		metrics.RecordOTPSend("gateway_error")
		return nil, Internal(err, "failed to send verification code")
	}

	metrics.RecordOTPSend("sent")
	s.log.Info("otp sent", zap.String("phone", utils.MaskPhone(phone)))
	return &models.OTPSent{Phone: phone, ExpiresAt: otp.ExpiresAt}, nil
}

// VerifyOTP checks code against the latest code issued for the phone
func (s *OTPService) VerifyOTP(ctx context.Context, rawPhone, code string) (*models.OtpVerification, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return nil, BadRequest("invalid phone number")
	}

	otp, err := s.store.GetLatestOTP(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		metrics.RecordOTPVerification("missing")
		return nil, BadRequest("no verification code requested for this phone")
	}
	if err != nil {
		return nil, Internal(err, "failed to load verification code")
	}

	if otp.Verified {
		return otp, nil
	}

	now := s.now()
	if otp.IsExpired(now) {
		metrics.RecordOTPVerification("expired")
		return nil, BadRequest("verification code expired, request a new one")
	}
	if otp.Attempts >= s.opts.MaxAttempts {
		metrics.RecordOTPVerification("exhausted")
		return nil, TooManyRequests("too many attempts, request a new code")
	}

	if subtle.ConstantTimeCompare([]byte(otp.OtpCode), []byte(code)) != 1 {
		otp.Attempts++
		if err := s.store.UpdateOTP(ctx, otp); err != nil {
			return nil, Internal(err, "failed to record attempt")
		}
		metrics.RecordOTPVerification("mismatch")
		return nil, BadRequest("invalid code, %d attempts remaining", s.opts.MaxAttempts-otp.Attempts)
	}

	otp.Verified = true
	otp.VerifiedAt = &now
	if err := s.store.UpdateOTP(ctx, otp); err != nil {
		return nil, Internal(err, "failed to mark code verified")
	}
	metrics.RecordOTPVerification("verified")
	return otp, nil
}

// RequireVerified succeeds only if the latest code for phone is verified,
// unexpired and within its attempt budget
func (s *OTPService) RequireVerified(ctx context.Context, phone string) error {
	otp, err := s.store.GetLatestOTP(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return BadRequest("phone number not verified")
	}
	if err != nil {
		return Internal(err, "failed to load verification code")
	}
	if !otp.Verified {
		return BadRequest("phone number not verified")
	}
	if otp.IsExpired(s.now()) {
		return BadRequest("verification expired, request a new code")
	}
	if otp.Attempts >= s.opts.MaxAttempts {
		return TooManyRequests("too many attempts, request a new code")
	}
	return nil
}

// Consume removes every code for the phone once it has been used
func (s *OTPService) Consume(ctx context.Context, phone string) error {
	return s.store.DeleteOTPsByPhone(ctx, phone)
}

// PurgeExpired deletes codes that expired more than retention ago
func (s *OTPService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.store.DeleteExpiredOTPs(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	metrics.RecordOTPCleanup(n)
	return n, nil
}

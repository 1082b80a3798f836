package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/cache"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
)

type authFixture struct {
	*otpFixture
	auth  *AuthService
	cache *cache.MemoryCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := newOTPFixture(t)
	c := cache.NewMemoryCache().WithClock(f.clock.now)
	auth := NewAuthService(f.store, f.svc, c, AuthOptions{
		Secret: "test-secret",
		TTL:    time.Hour,
		Issuer: "hanapp-test",
	}, zap.NewNop()).WithClock(f.clock.now)
	return &authFixture{otpFixture: f, auth: auth, cache: c}
}

func (f *authFixture) verifyPhone(t *testing.T, phone string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SendOTP(ctx, phone)
	require.NoError(t, err)
	_, err = f.svc.VerifyOTP(ctx, phone, f.lastCode(t))
	require.NoError(t, err)
}

func signupReq(phone string) models.SignupRequest {
	return models.SignupRequest{
		Phone:     phone,
		Password:  "correct-horse",
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "Maria@Example.com",
		Role:      models.RoleProvider,
	}
}

func TestSignupRequiresVerifiedPhone(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.Signup(context.Background(), signupReq("09171234567"))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestSignupCreatesUserAndConsumesCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.verifyPhone(t, testPhone)

	resp, err := f.auth.Signup(ctx, signupReq("09171234567"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, testPhone, resp.User.Phone)
	require.NotNil(t, resp.User.Email)
	assert.Equal(t, "maria@example.com", *resp.User.Email)
	assert.True(t, resp.User.PhoneVerified)
	assert.NotEqual(t, "correct-horse", resp.User.PasswordHash)

	_, err = f.store.GetLatestOTP(ctx, testPhone)
	assert.Error(t, err, "codes are removed after signup")

	claims, err := f.auth.ParseToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)
	assert.Equal(t, models.RoleProvider, claims.Role)
}

func TestSignupDuplicatePhone(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	seedUser(t, f.store, testPhone, models.RoleClient)
	f.verifyPhone(t, testPhone)

	_, err := f.auth.Signup(ctx, signupReq(testPhone))
	requireStatus(t, err, http.StatusConflict)
}

func TestLoginByPhoneAndEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.verifyPhone(t, testPhone)
	_, err := f.auth.Signup(ctx, signupReq(testPhone))
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, models.LoginRequest{Phone: "9171234567", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "MARIA@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, models.LoginRequest{Phone: testPhone, Password: "wrong-password"})
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = f.auth.Login(ctx, models.LoginRequest{Phone: "09981112222", Password: "correct-horse"})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.verifyPhone(t, testPhone)
	resp, err := f.auth.Signup(ctx, signupReq(testPhone))
	require.NoError(t, err)

	claims, err := f.auth.ParseToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, claims))

	_, err = f.auth.ParseToken(ctx, resp.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestParseTokenExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := seedUser(t, f.store, testPhone, models.RoleClient)
	resp, err := f.auth.issue(user)
	require.NoError(t, err)

	f.clock.advance(2 * time.Hour)
	_, err = f.auth.ParseToken(ctx, resp.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestParseTokenWrongSecret(t *testing.T) {
	f := newAuthFixture(t)
	other := NewAuthService(f.store, f.svc, f.cache, AuthOptions{Secret: "other", TTL: time.Hour, Issuer: "hanapp-test"}, zap.NewNop()).
		WithClock(f.clock.now)
	user := seedUser(t, f.store, testPhone, models.RoleClient)
	resp, err := other.issue(user)
	require.NoError(t, err)

	_, err = f.auth.ParseToken(context.Background(), resp.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestUpdateProfileOwnOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	me := seedUser(t, f.store, testPhone, models.RoleClient)
	other := seedUser(t, f.store, "+639181234567", models.RoleProvider)

	bio := "Plumber in Quezon City"
	_, err := f.auth.UpdateProfile(ctx, me.ID, other.ID, models.ProfileUpdate{Bio: &bio})
	requireStatus(t, err, http.StatusForbidden)

	updated, err := f.auth.UpdateProfile(ctx, me.ID, me.ID, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	_, err = f.auth.GetProfile(ctx, "missing")
	requireStatus(t, err, http.StatusNotFound)
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hanapp-ph/hanapp-backend/internal/cache"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

// Claims carried by access tokens
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type AuthService struct {
	store storage.Store
	otp   *OTPService
	cache cache.Cache
	opts  AuthOptions
	log   *zap.Logger
	now   func() time.Time
}

func NewAuthService(store storage.Store, otp *OTPService, c cache.Cache, opts AuthOptions, logger *zap.Logger) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &AuthService{
		store: store,
		otp:   otp,
		cache: c,
		opts:  opts,
		log:   logger.Named("auth"),
		now:   time.Now,
	}
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func revokedKey(jti string) string { return "jwt:revoked:" + jti }

// Signup creates an account for a phone number that has just been verified
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	phone, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return nil, BadRequest("invalid phone number")
	}

	if err := s.otp.RequireVerified(ctx, phone); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByPhone(ctx, phone); err == nil {
		return nil, Conflict("phone number already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "failed to check phone")
	}

	var email *string
	if e := strings.ToLower(strings.TrimSpace(req.Email)); e != "" {
		if _, err := s.store.GetUserByEmail(ctx, e); err == nil {
			return nil, Conflict("email already registered")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, Internal(err, "failed to check email")
		}
		email = &e
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal(err, "failed to hash password")
	}

	user := &models.User{
		Phone:         phone,
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Role:          req.Role,
		PhoneVerified: true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, Conflict("account already registered")
		}
		return nil, Internal(err, "failed to create account")
	}

	// codes are single use
	if err := s.otp.Consume(ctx, phone); err != nil {
		s.log.Warn("failed to clear verification codes", zap.String("phone", utils.MaskPhone(phone)), zap.Error(err))
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

// Login authenticates with phone or email plus password
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var (
		user *models.User
		err  error
	)
	if req.Phone != "" {
		phone, perr := utils.NormalizePhone(req.Phone)
		if perr != nil {
			return nil, BadRequest("invalid phone number")
		}
		user, err = s.store.GetUserByPhone(ctx, phone)
	} else {
		user, err = s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, Internal(err, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, Unauthorized("invalid credentials")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	now := s.now()
	exp := now.Add(s.opts.TTL)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return nil, Internal(err, "failed to sign token")
	}
	return &models.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        user,
	}, nil
}

// ParseToken validates signature, expiry, issuer and revocation
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.opts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.opts.Issuer))
	}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, opts...)
	if err != nil {
		return nil, Unauthorized("invalid or expired token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, Unauthorized("invalid token claims")
	}

	revoked, err := s.cache.Exists(ctx, revokedKey(claims.ID))
	if err != nil {
		return nil, Internal(err, "failed to check token")
	}
	if revoked {
		return nil, Unauthorized("token revoked")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return Unauthorized("invalid token claims")
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedKey(claims.ID), "1", ttl); err != nil {
		return Internal(err, "failed to revoke token")
	}
	return nil
}

// GetProfile loads a user; callers decide how much of it to expose
func (s *AuthService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// UpdateProfile lets users edit only their own profile
func (s *AuthService) UpdateProfile(ctx context.Context, callerID, id string, upd models.ProfileUpdate) (*models.User, error) {
	if callerID != id {
		return nil, Forbidden("cannot edit another user's profile")
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	upd.Apply(user)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, Internal(err, "failed to update profile")
	}
	return user, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/models"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
)

// AuthHandler handles OTP, account and profile requests
type AuthHandler struct {
	otp  *services.OTPService
	auth *services.AuthService
}

func NewAuthHandler(otp *services.OTPService, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{otp: otp, auth: auth}
}

// SendOTP handles POST /user/send-otp
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req models.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sent, err := h.otp.SendOTP(c.UserContext(), req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "Verification code sent",
		"phone":      sent.Phone,
		"expires_at": sent.ExpiresAt,
	})
}

// VerifyOTP handles POST /user/verify-otp
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	otp, err := h.otp.VerifyOTP(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Phone number verified",
		"phone":    otp.Phone,
		"verified": otp.Verified,
	})
}

// Signup handles POST /user/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /user/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout handles POST /user/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetProfile returns the full record to its owner and the public view to everyone else
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.auth.GetProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if middleware.CurrentActor(c).ID == user.ID {
		return c.JSON(user)
	}
	return c.JSON(user.Public())
}

// UpdateProfile handles PATCH /user/profile/:id
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateProfile(c.UserContext(), middleware.CurrentActor(c).ID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

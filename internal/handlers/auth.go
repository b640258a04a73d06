package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/nushka/internal/config"
	"github.com/example/nushka/internal/middleware"
	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/services"
	"github.com/example/nushka/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	carts *services.CartService
	mail  *services.MailService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, carts *services.CartService, mail *services.MailService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, carts: carts, mail: mail}
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone"`
}

// Register creates a new user account. Accounts created here are
// immediately verified; the OTP flow exists for passwordless sign-in,
// not as a registration gate.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		DisplayName:  fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		Role:         models.RoleCustomer,
		PasswordHash: passwordHash,
		IsVerified:   true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return h.issueSession(c, &user, fiber.StatusCreated, "Account created successfully")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user with email + password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	return h.issueSession(c, &user, fiber.StatusOK, "Login successful")
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOTP generates a one-time code, stores it with an expiry and
// emails it. Codes never appear in the response. Requests within the
// resend window are throttled.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var latest models.OTPVerification
	err := h.db.Where("email = ?", req.Email).Order("created_at desc").First(&latest).Error
	if err == nil && latest.UsedAt == nil &&
		time.Since(latest.CreatedAt) < h.cfg.OTPResendAfter {
		return fiber.NewError(fiber.StatusTooManyRequests, "a code was sent recently, try again shortly")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	// Expire any previous unused codes so only the latest one verifies.
	if err := h.db.Model(&models.OTPVerification{}).
		Where("email = ? AND used_at IS NULL", req.Email).
		Update("expires_at", time.Now()).Error; err != nil {
		return err
	}

	verification := models.OTPVerification{
		Email:     req.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpires),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	if err := h.mail.SendOTPCode(req.Email, code, h.cfg.OTPExpires); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send code")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Verification code sent",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// VerifyOTP consumes the latest code for the email and signs the user
// in, creating the account on first use.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var verification models.OTPVerification
	err := h.db.Where("email = ?", req.Email).
		Order("created_at desc").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "verification code not found")
		}
		return err
	}

	if verification.UsedAt != nil {
		return fiber.NewError(fiber.StatusBadRequest, "verification code already used")
	}
	if verification.Code != req.OTP {
		return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
	}
	if verification.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	}

	now := time.Now()
	verification.Verified = true
	verification.UsedAt = &now
	if err := h.db.Save(&verification).Error; err != nil {
		return err
	}

	var user models.User
	err = h.db.Where("email = ?", req.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Passwordless sign-up: first successful verification creates
		// the account.
		user = models.User{
			Email:       req.Email,
			DisplayName: req.Email,
			Role:        models.RoleCustomer,
			IsVerified:  true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !user.IsVerified {
			if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
				Update("is_verified", true).Error; err != nil {
				return err
			}
			user.IsVerified = true
		}
	}

	return h.issueSession(c, &user, fiber.StatusOK, "Verification successful")
}

// Me returns the user resolved from the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Access granted",
		"user":    userResponse(&user),
	})
}

// issueSession generates a token and, when the request carries a guest
// cart token, folds that cart into the user's cart.
func (h *AuthHandler) issueSession(c *fiber.Ctx, user *models.User, status int, message string) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	if guestToken := middleware.GetGuestToken(c); guestToken != "" {
		if _, err := h.carts.MergeGuestCart(guestToken, user.ID); err != nil {
			// Sign-in still succeeds; the guest cart stays intact for a
			// later retry.
			log.Printf("[Auth] Guest cart merge failed for %s: %v", user.ID, err)
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"user":    userResponse(user),
		"token":   token,
	})
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":           user.ID,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"email":        user.Email,
		"phone":        user.Phone,
		"display_name": user.DisplayName,
		"role":         user.Role,
		"is_verified":  user.IsVerified,
	}
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

package handlers

import (
	"net/url"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// Routes acting on the current user are guarded by requireAuth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/check-username", h.HandleCheckUsername)
	authRoutes.Post("/check-email", h.HandleCheckEmail)
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/verify", h.HandleVerifyEmail)
	authRoutes.Get("/change-email", h.HandleConfirmEmailChange)
	authRoutes.Post("/forgot-password/:email", h.HandleForgotPassword)
	authRoutes.Post("/reset-password", h.HandleResetPassword)

	authRoutes.Get("", requireAuth, h.HandleMe)
	authRoutes.Post("/resend-verification", requireAuth, h.HandleResendVerification)
	authRoutes.Post("/change-email", requireAuth, h.HandleRequestEmailChange)
	authRoutes.Post("/change-password", requireAuth, h.HandleChangePassword)
}

// CheckUsernameRequest represents the request body for the username check.
type CheckUsernameRequest struct {
	Username string `json:"username" validate:"required,max=255"`
}

// CheckEmailRequest represents the request body for the email check.
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SignupRequest represents the request body for registration.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=8,max=255,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the request body for login. Email may hold a
// username when username login is enabled.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Remember bool   `json:"remember"`
}

// ChangeEmailRequest represents the request body for an email change.
type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email,max=255"`
}

// ResetPasswordRequest represents the request body for a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,len=21"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// HandleCheckUsername answers 200 when the username is free and 409 otherwise.
func (h *AuthHandler) HandleCheckUsername(c *fiber.Ctx) error {
	var req CheckUsernameRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	available, err := h.authService.IsUsernameAvailable(c.UserContext(), req.Username)
	if err != nil {
		return fail(c, h.log, err)
	}
	if !available {
		return message(c, fiber.StatusConflict, "username is already taken")
	}
	return c.JSON(models.AvailabilityResponse{Available: true})
}

// HandleCheckEmail answers 200 when the email is free and 409 otherwise.
func (h *AuthHandler) HandleCheckEmail(c *fiber.Ctx) error {
	var req CheckEmailRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	available, err := h.authService.IsEmailAvailable(c.UserContext(), req.Email)
	if err != nil {
		return fail(c, h.log, err)
	}
	if !available {
		return message(c, fiber.StatusConflict, "email address is already registered")
	}
	return c.JSON(models.AvailabilityResponse{Available: true})
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	msg, err := h.authService.Signup(c.UserContext(), services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusCreated, msg)
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), req.Email, req.Password, req.Remember)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(resp)
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(models.NewUserResponse(currentUser(c)))
}

// HandleVerifyEmail redeems an email verification token.
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "token is required")
	}
	msg, err := h.authService.VerifyEmail(c.UserContext(), token)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleResendVerification issues a new verification token for the current user.
func (h *AuthHandler) HandleResendVerification(c *fiber.Ctx) error {
	msg, err := h.authService.ResendVerification(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleRequestEmailChange starts an email change for the current user.
func (h *AuthHandler) HandleRequestEmailChange(c *fiber.Ctx) error {
	var req ChangeEmailRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	msg, err := h.authService.RequestEmailChange(c.UserContext(), currentUser(c), req.NewEmail)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleConfirmEmailChange redeems an email change token.
func (h *AuthHandler) HandleConfirmEmailChange(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "token is required")
	}
	msg, err := h.authService.ConfirmEmailChange(c.UserContext(), token)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleForgotPassword mails a password reset link.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	// Route params arrive still escaped, e.g. %40 for @.
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return badRequest(c, "a valid email address is required")
	}
	if err := h.validate.Var(email, "required,email"); err != nil {
		return badRequest(c, "a valid email address is required")
	}
	msg, err := h.authService.RequestPasswordReset(c.UserContext(), email)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleResetPassword sets a new password using a reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	msg, err := h.authService.ResetPassword(c.UserContext(), req.Token, req.NewPassword)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

// HandleChangePassword sets a new password for the current user.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	msg, err := h.authService.ChangePassword(c.UserContext(), currentUser(c), req.NewPassword)
	if err != nil {
		return fail(c, h.log, err)
	}
	return message(c, fiber.StatusOK, msg)
}

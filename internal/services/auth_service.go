package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/repositories"

	"go.uber.org/zap"
)

// tokenAttempts bounds retries when a freshly minted token collides with a stored one.
const tokenAttempts = 3

// SignupInput is the data needed to register a user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AuthService handles business logic for authentication and the single-use
// token flows (email verification, email change, password reset).
type AuthService struct {
	users    repositories.UserRepository
	tokens   repositories.TokenRepository
	issuer   *TokenService
	notifier notify.Dispatcher
	cfg      config.AuthConfig
	now      func() time.Time
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	issuer *TokenService,
	notifier notify.Dispatcher,
	cfg config.AuthConfig,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		notifier: notifier,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// WithClock replaces the clock used to mint and check token expiries.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// IsUsernameAvailable reports whether no user holds username, ignoring case.
func (s *AuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.available(s.users.GetByUsername(ctx, username))
}

// IsEmailAvailable reports whether no user holds email, ignoring case.
func (s *AuthService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	return s.available(s.users.GetByEmail(ctx, email))
}

func (s *AuthService) available(_ *models.User, err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, repositories.ErrNotFound):
		return true, nil
	}
	return false, internal("failed to check availability", err)
}

// Signup registers a user together with its email verification token and
// sends the verification mail. It does not log the user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	if err := s.ensureUnique(ctx, in.Username, in.Email); err != nil {
		return "", err
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return "", internal("failed to register user", err)
	}

	var token string
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err = s.issuer.NewOpaqueToken()
		if err != nil {
			return "", internal("failed to register user", err)
		}
		user := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
		verification := &models.SingleUseToken{
			Kind:       models.TokenEmailVerification,
			Token:      token,
			ValidUntil: s.now().Add(s.cfg.VerificationTokenTTL),
		}

		err = s.users.Create(ctx, user, verification)
		if err == nil {
			s.log.Info("user signed up", zap.String("user_id", user.ID))
			s.notifier.SendVerifyEmail(user.Username, user.Email, token)
			return fmt.Sprintf("signed up successfully, confirm your email address %q to log in", user.Email), nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return "", internal("failed to register user", err)
		}
		// A concurrent signup may have taken the name; otherwise the token collided.
		if uniqueErr := s.ensureUnique(ctx, in.Username, in.Email); uniqueErr != nil {
			return "", uniqueErr
		}
	}
	return "", internal("failed to register user", err)
}

func (s *AuthService) ensureUnique(ctx context.Context, username, email string) error {
	ok, err := s.IsEmailAvailable(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return conflict("email address is already registered")
	}
	ok, err = s.IsUsernameAvailable(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return conflict("username is already taken")
	}
	return nil
}

// issue stores a fresh token of kind for user, replacing any previous one.
func (s *AuthService) issue(ctx context.Context, userID string, kind models.TokenKind, ttl time.Duration, newEmail *string) (string, error) {
	var err error
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		var token string
		token, err = s.issuer.NewOpaqueToken()
		if err != nil {
			return "", err
		}
		err = s.tokens.Replace(ctx, &models.SingleUseToken{
			UserID:     userID,
			Kind:       kind,
			Token:      token,
			ValidUntil: s.now().Add(ttl),
			NewEmail:   newEmail,
		})
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return "", err
		}
	}
	return "", err
}

// consume redeems a token. Missing, used and expired tokens are all NotFound.
func (s *AuthService) consume(ctx context.Context, kind models.TokenKind, token string,
	changes func(*models.SingleUseToken) map[string]interface{}) (*models.SingleUseToken, error) {
	consumed, err := s.tokens.Consume(ctx, kind, token, s.now(), changes)
	switch {
	case err == nil:
		return consumed, nil
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrExpired):
		s.log.Info("rejected single-use token", zap.String("kind", string(kind)), zap.Error(err))
		return nil, notFound("token not found or expired")
	}
	return nil, err
}

// ResendVerification replaces the user's verification token and mails it again.
func (s *AuthService) ResendVerification(ctx context.Context, user *models.User) (string, error) {
	token, err := s.issue(ctx, user.ID, models.TokenEmailVerification, s.cfg.VerificationTokenTTL, nil)
	if err != nil {
		return "", internal("failed to issue verification token", err)
	}
	s.notifier.SendVerifyEmail(user.Username, user.Email, token)
	return "verification email sent", nil
}

// VerifyEmail marks the owner of token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	_, err := s.consume(ctx, models.TokenEmailVerification, token, func(*models.SingleUseToken) map[string]interface{} {
		return map[string]interface{}{"email_verified": true}
	})
	if err != nil {
		return "", asServiceError(err, "failed to verify email")
	}
	return "email address verified, you can now log in", nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string, remember bool) (*models.LoginResponse, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	user, err := s.users.GetByEmail(ctx, identifier)
	if errors.Is(err, repositories.ErrNotFound) && s.cfg.LoginIdentifier == config.LoginByEmailOrUsername {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthorized(nil)
	}
	if err != nil {
		s.log.Error("login lookup failed", zap.Error(err))
		return nil, newError(ErrNotFound, ErrInvalidCredentials, err)
	}

	if !ComparePassword(user.PasswordHash, password) {
		return nil, unauthorized(nil)
	}
	if s.cfg.RequireVerifiedEmail && !user.EmailVerified {
		return nil, forbidden("confirm your email address with the link we sent you")
	}

	token, expiresAt, err := s.issuer.Issue(user, remember)
	if err != nil {
		return nil, newError(ErrNotFound, ErrInvalidCredentials, err)
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session token to the live user record. Sessions whose
// username or email no longer match the record are rejected.
func (s *AuthService) Authenticate(ctx context.Context, sessionToken string) (*models.User, error) {
	claims, err := s.issuer.Parse(sessionToken)
	if err != nil {
		return nil, unauthorized(err)
	}

	user, err := s.users.GetByID(ctx, claims.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthorized(err)
	}
	if err != nil {
		return nil, internal("failed to load user", err)
	}

	if user.Username != claims.Username || user.Email != claims.Email {
		return nil, unauthorized(errors.New("stale session"))
	}
	return user, nil
}

// RequestEmailChange stores a pending change to newEmail and mails the
// confirmation link to the current address.
func (s *AuthService) RequestEmailChange(ctx context.Context, user *models.User, newEmail string) (string, error) {
	newEmail = strings.ToLower(newEmail)

	ok, err := s.IsEmailAvailable(ctx, newEmail)
	if err != nil {
		return "", err
	}
	if !ok {
		s.log.Info("email change to a registered address", zap.String("user_id", user.ID))
		return "", conflict("email address is already registered")
	}

	token, err := s.issue(ctx, user.ID, models.TokenEmailChange, s.cfg.EmailChangeTokenTTL, &newEmail)
	if err != nil {
		return "", internal("failed to issue email change token", err)
	}
	s.notifier.SendChangeEmail(user.Username, user.Email, token)
	return "confirmation email sent", nil
}

// ConfirmEmailChange applies the pending email change of token.
func (s *AuthService) ConfirmEmailChange(ctx context.Context, token string) (string, error) {
	_, err := s.consume(ctx, models.TokenEmailChange, token, func(t *models.SingleUseToken) map[string]interface{} {
		if t.NewEmail == nil {
			return nil
		}
		return map[string]interface{}{"email": *t.NewEmail}
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		return "", conflict("email address is already registered")
	}
	if err != nil {
		return "", asServiceError(err, "failed to change email")
	}
	return "email address changed", nil
}

// RequestPasswordReset mails a reset link to the user registered with email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", readError("user", err)
	}

	token, err := s.issue(ctx, user.ID, models.TokenPasswordReset, s.cfg.PasswordResetTokenTTL, nil)
	if err != nil {
		return "", internal("failed to issue password reset token", err)
	}
	s.notifier.SendResetPassword(user.Username, user.Email, token)
	return "password reset email sent", nil
}

// ResetPassword sets a new password for the owner of token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return "", internal("failed to reset password", err)
	}

	_, err = s.consume(ctx, models.TokenPasswordReset, token, func(*models.SingleUseToken) map[string]interface{} {
		return map[string]interface{}{"password_hash": hash}
	})
	if err != nil {
		return "", asServiceError(err, "failed to reset password")
	}
	return "password changed", nil
}

// ChangePassword sets a new password for user and informs them by mail.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, newPassword string) (string, error) {
	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return "", internal("failed to change password", err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return "", writeError("user", err)
	}
	s.notifier.SendPasswordChangedInfo(user.Username, user.Email)
	return "password changed", nil
}

// asServiceError passes service errors through and wraps anything else as internal.
func asServiceError(err error, msg string) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internal(msg, err)
}

package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// UserRepository defines the interface for user data access. Username and
// email arguments are compared case-insensitively.
type UserRepository interface {
	// Create inserts user together with its initial tokens in one transaction.
	Create(ctx context.Context, user *models.User, tokens ...*models.SingleUseToken) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update writes the given columns of the user row.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// TokenRepository defines the interface for single-use token data access.
type TokenRepository interface {
	// Replace stores token as the only outstanding token of its kind for its user.
	Replace(ctx context.Context, token *models.SingleUseToken) error
	Find(ctx context.Context, kind models.TokenKind, token string) (*models.SingleUseToken, error)
	// Consume deletes a live token and applies changes(token) to its owner in
	// one transaction. It returns ErrNotFound for unknown or already used
	// tokens and ErrExpired when ValidUntil <= now.
	Consume(ctx context.Context, kind models.TokenKind, token string, now time.Time,
		changes func(*models.SingleUseToken) map[string]interface{}) (*models.SingleUseToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

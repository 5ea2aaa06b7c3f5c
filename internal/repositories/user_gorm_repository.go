package repositories

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user and its initial tokens in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User, tokens ...*models.SingleUseToken) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return wrapGormError("create user", err)
		}
		for _, token := range tokens {
			if token.ID == "" {
				token.ID = uuid.New().String()
			}
			token.UserID = user.ID
			if err := tx.Create(token).Error; err != nil {
				return wrapGormError("create user token", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", strings.ToLower(username))
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		return nil, wrapGormError("get user", err)
	}
	return &user, nil
}

// Update writes the given columns of a user. Username and email values are
// lowercased before they are stored.
func (r *GORMUserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	normalizeUserFields(fields)

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapGormError("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func normalizeUserFields(fields map[string]interface{}) {
	for _, key := range []string{"username", "email"} {
		if v, ok := fields[key].(string); ok {
			fields[key] = strings.ToLower(v)
		}
	}
}

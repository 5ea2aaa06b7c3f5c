package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{db: db}
}

// Replace upserts token on (user_id, kind), so a concurrent re-issue for the
// same user and kind serialises on the unique index and the last writer wins.
// A collision on the token value itself is reported as ErrDuplicate.
func (r *GORMTokenRepository) Replace(ctx context.Context, token *models.SingleUseToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.db.NowFunc()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "valid_until", "new_email", "created_at"}),
	}).Create(token).Error
	return wrapGormError("replace token", err)
}

// Find returns the token row of the given kind and value.
func (r *GORMTokenRepository) Find(ctx context.Context, kind models.TokenKind, token string) (*models.SingleUseToken, error) {
	var found models.SingleUseToken
	err := r.db.WithContext(ctx).Where("kind = ? AND token = ?", kind, token).First(&found).Error
	if err != nil {
		return nil, wrapGormError("find token", err)
	}
	return &found, nil
}

// Consume deletes the token and applies its effect to the owning user in a
// single transaction.
func (r *GORMTokenRepository) Consume(
	ctx context.Context,
	kind models.TokenKind,
	token string,
	now time.Time,
	changes func(*models.SingleUseToken) map[string]interface{},
) (*models.SingleUseToken, error) {
	var consumed models.SingleUseToken

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ? AND token = ?", kind, token).First(&consumed).Error; err != nil {
			return wrapGormError("find token", err)
		}
		if consumed.ExpiredAt(now) {
			return ErrExpired
		}

		// Zero rows means a concurrent request consumed it first.
		res := tx.Delete(&models.SingleUseToken{}, "id = ?", consumed.ID)
		if res.Error != nil {
			return wrapGormError("delete token", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		fields := changes(&consumed)
		if len(fields) == 0 {
			return nil
		}
		normalizeUserFields(fields)
		res = tx.Model(&models.User{}).Where("id = ?", consumed.UserID).Updates(fields)
		if res.Error != nil {
			return wrapGormError("apply token", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &consumed, nil
}

// DeleteExpired removes every token whose validity ended at or before now.
func (r *GORMTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("valid_until <= ?", now).Delete(&models.SingleUseToken{})
	if res.Error != nil {
		return 0, wrapGormError("delete expired tokens", res.Error)
	}
	return res.RowsAffected, nil
}

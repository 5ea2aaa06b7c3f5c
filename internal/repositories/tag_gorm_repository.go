package repositories

import (
	"context"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

// Create creates a new tag in the database.
func (r *GORMTagRepository) Create(ctx context.Context, tag *models.TransactionTag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	return wrapGormError("create tag", r.db.WithContext(ctx).Create(tag).Error)
}

// GetByID retrieves a single tag by its ID.
func (r *GORMTagRepository) GetByID(ctx context.Context, id string) (*models.TransactionTag, error) {
	var tag models.TransactionTag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, wrapGormError("get tag", err)
	}
	return &tag, nil
}

// ListByUser retrieves the tags of a user in creation order.
func (r *GORMTagRepository) ListByUser(ctx context.Context, userID string) ([]models.TransactionTag, error) {
	tags := []models.TransactionTag{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, wrapGormError("list tags", err)
	}
	return tags, nil
}

// Update writes the given columns of a tag.
func (r *GORMTagRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.TransactionTag{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapGormError("update tag", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a tag and clears it from every transaction that used it.
func (r *GORMTagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Transaction{}).
			Where("transaction_tag_id = ?", id).
			Update("transaction_tag_id", nil).Error
		if err != nil {
			return wrapGormError("detach tag", err)
		}
		res := tx.Delete(&models.TransactionTag{}, "id = ?", id)
		if res.Error != nil {
			return wrapGormError("delete tag", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

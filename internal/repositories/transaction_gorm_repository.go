package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{db: db}
}

func (r *GORMTransactionRepository) withTag(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("TransactionTag")
}

// Create creates a new transaction in the database.
func (r *GORMTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Omit("TransactionTag").Create(transaction).Error
	return wrapGormError("create transaction", err)
}

// GetByID retrieves a single transaction with its tag.
func (r *GORMTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.withTag(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, wrapGormError("get transaction", err)
	}
	return &transaction, nil
}

// List retrieves the transactions of a wallet, newest first.
func (r *GORMTransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	q := r.withTag(ctx).Where("wallet_id = ?", filter.WalletID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.TagID != "" {
		q = q.Where("transaction_tag_id = ?", filter.TagID)
	}

	transactions := []models.Transaction{}
	if err := q.Order("created_at DESC, id DESC").Find(&transactions).Error; err != nil {
		return nil, wrapGormError("list transactions", err)
	}
	return transactions, nil
}

// Recent retrieves at most limit of the newest transactions of a wallet.
func (r *GORMTransactionRepository) Recent(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := r.withTag(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, wrapGormError("list recent transactions", err)
	}
	return transactions, nil
}

// Latest retrieves the newest transaction of a wallet.
func (r *GORMTransactionRepository) Latest(ctx context.Context, walletID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Take(&transaction).Error
	if err != nil {
		return nil, wrapGormError("get latest transaction", err)
	}
	return &transaction, nil
}

// Between retrieves the transactions of a wallet created in [from, to).
func (r *GORMTransactionRepository) Between(ctx context.Context, walletID string, from, to time.Time) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := r.withTag(ctx).
		Where("wallet_id = ? AND created_at >= ? AND created_at < ?", walletID, from, to).
		Order("created_at DESC, id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, wrapGormError("list transactions", err)
	}
	return transactions, nil
}

// Update writes the given columns of a transaction.
func (r *GORMTransactionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapGormError("update transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a transaction by its ID.
func (r *GORMTransactionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return wrapGormError("delete transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

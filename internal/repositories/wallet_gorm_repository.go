package repositories

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// moneyScale is the number of decimals of the amount column. sqlite sums
// NUMERIC columns as REAL, so aggregates are rounded back to it.
const moneyScale = 2

const walletBalanceSelect = `
SELECT
	w.id AS id,
	w.title AS title,
	w.user_id AS user_id,
	COALESCE(SUM(CASE WHEN t.type = 'INCOME' THEN t.amount ELSE 0 END), 0) -
	COALESCE(SUM(CASE WHEN t.type = 'EXPENSE' THEN t.amount ELSE 0 END), 0) AS balance
FROM wallets w
LEFT JOIN transactions t ON t.wallet_id = w.id
`

const walletBalanceGroup = `
GROUP BY w.id, w.title, w.user_id, w.created_at
ORDER BY w.created_at, w.id`

const sumByTypeQuery = `
SELECT type AS name, COALESCE(SUM(amount), 0) AS value
FROM transactions
WHERE wallet_id = ? AND created_at >= ? AND created_at < ?
GROUP BY type`

const dailyNetQuery = `
SELECT %s AS day,
	COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount ELSE -amount END), 0) AS value
FROM transactions
WHERE wallet_id = ? AND created_at >= ? AND created_at < ?
GROUP BY day
ORDER BY day`

const tagSummaryQuery = `
SELECT tg.id AS tag_id, tg.title AS tag, tg.color AS color, COALESCE(SUM(t.amount), 0) AS amount
FROM transactions t
JOIN transaction_tags tg ON tg.id = t.transaction_tag_id
WHERE t.wallet_id = ? AND t.type = 'EXPENSE'
GROUP BY tg.id, tg.title, tg.color
ORDER BY amount DESC, tg.title`

// GORMWalletRepository is a GORM implementation of WalletRepository.
type GORMWalletRepository struct {
	db *gorm.DB
}

// NewGORMWalletRepository creates a new instance of GORMWalletRepository.
func NewGORMWalletRepository(db *gorm.DB) *GORMWalletRepository {
	return &GORMWalletRepository{db: db}
}

// Create creates a new wallet in the database.
func (r *GORMWalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	return wrapGormError("create wallet", r.db.WithContext(ctx).Create(wallet).Error)
}

// GetByID retrieves a single wallet by its ID.
func (r *GORMWalletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, "id = ?", id).Error; err != nil {
		return nil, wrapGormError("get wallet", err)
	}
	return &wallet, nil
}

// GetWithBalance retrieves a wallet together with its computed balance.
func (r *GORMWalletRepository) GetWithBalance(ctx context.Context, id string) (*models.WalletBalance, error) {
	var rows []models.WalletBalance
	err := r.db.WithContext(ctx).Raw(walletBalanceSelect+"WHERE w.id = ?"+walletBalanceGroup, id).Scan(&rows).Error
	if err != nil {
		return nil, wrapGormError("get wallet balance", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	rows[0].Balance = rows[0].Balance.Round(moneyScale)
	return &rows[0], nil
}

// ListWithBalance retrieves all wallets of a user with their balances.
func (r *GORMWalletRepository) ListWithBalance(ctx context.Context, userID string) ([]models.WalletBalance, error) {
	rows := []models.WalletBalance{}
	err := r.db.WithContext(ctx).Raw(walletBalanceSelect+"WHERE w.user_id = ?"+walletBalanceGroup, userID).Scan(&rows).Error
	if err != nil {
		return nil, wrapGormError("list wallets", err)
	}
	for i := range rows {
		rows[i].Balance = rows[i].Balance.Round(moneyScale)
	}
	return rows, nil
}

// Update writes the given columns of a wallet.
func (r *GORMWalletRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapGormError("update wallet", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a wallet and its transactions.
func (r *GORMWalletRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wallet_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return wrapGormError("delete wallet transactions", err)
		}
		res := tx.Delete(&models.Wallet{}, "id = ?", id)
		if res.Error != nil {
			return wrapGormError("delete wallet", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SumByType totals the wallet's transactions per type within [from, to).
func (r *GORMWalletRepository) SumByType(ctx context.Context, walletID string, from, to time.Time) ([]models.TypeSum, error) {
	rows := []models.TypeSum{}
	if err := r.db.WithContext(ctx).Raw(sumByTypeQuery, walletID, from, to).Scan(&rows).Error; err != nil {
		return nil, wrapGormError("sum transactions by type", err)
	}
	for i := range rows {
		rows[i].Value = rows[i].Value.Round(moneyScale)
	}
	return rows, nil
}

// DailyNet returns the signed daily totals of the wallet within [from, to).
func (r *GORMWalletRepository) DailyNet(ctx context.Context, walletID string, from, to time.Time) ([]models.CalendarDay, error) {
	rows := []models.CalendarDay{}
	query := fmt.Sprintf(dailyNetQuery, dayExpression(r.db))
	if err := r.db.WithContext(ctx).Raw(query, walletID, from, to).Scan(&rows).Error; err != nil {
		return nil, wrapGormError("sum transactions by day", err)
	}
	for i := range rows {
		rows[i].Value = rows[i].Value.Round(moneyScale)
	}
	return rows, nil
}

// TagSummary totals the wallet's expenses per tag.
func (r *GORMWalletRepository) TagSummary(ctx context.Context, walletID string) ([]models.TagSummary, error) {
	rows := []models.TagSummary{}
	if err := r.db.WithContext(ctx).Raw(tagSummaryQuery, walletID).Scan(&rows).Error; err != nil {
		return nil, wrapGormError("sum transactions by tag", err)
	}
	for i := range rows {
		rows[i].Amount = rows[i].Amount.Round(moneyScale)
	}
	return rows, nil
}

// dayExpression formats created_at as a UTC calendar day.
func dayExpression(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', created_at)"
}

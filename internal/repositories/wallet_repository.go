package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// WalletRepository defines the interface for wallet data access.
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	GetWithBalance(ctx context.Context, id string) (*models.WalletBalance, error)
	ListWithBalance(ctx context.Context, userID string) ([]models.WalletBalance, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// Delete removes the wallet and its transactions.
	Delete(ctx context.Context, id string) error

	SumByType(ctx context.Context, walletID string, from, to time.Time) ([]models.TypeSum, error)
	DailyNet(ctx context.Context, walletID string, from, to time.Time) ([]models.CalendarDay, error)
	TagSummary(ctx context.Context, walletID string) ([]models.TagSummary, error)
}

// TransactionFilter narrows a wallet's transaction listing.
type TransactionFilter struct {
	WalletID string
	Type     models.TransactionType
	TagID    string
}

// TransactionRepository defines the interface for transaction data access.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	Recent(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
	Latest(ctx context.Context, walletID string) (*models.Transaction, error)
	// Between lists transactions created in [from, to).
	Between(ctx context.Context, walletID string, from, to time.Time) ([]models.Transaction, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// TagRepository defines the interface for transaction tag data access.
type TagRepository interface {
	Create(ctx context.Context, tag *models.TransactionTag) error
	GetByID(ctx context.Context, id string) (*models.TransactionTag, error)
	ListByUser(ctx context.Context, userID string) ([]models.TransactionTag, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// Delete removes the tag and detaches it from its transactions.
	Delete(ctx context.Context, id string) error
}

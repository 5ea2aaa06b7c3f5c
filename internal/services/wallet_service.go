package services

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// WalletService handles wallets and their aggregates.
type WalletService struct {
	wallets      repositories.WalletRepository
	transactions repositories.TransactionRepository
	log          *zap.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(wallets repositories.WalletRepository, transactions repositories.TransactionRepository, log *zap.Logger) *WalletService {
	return &WalletService{wallets: wallets, transactions: transactions, log: log}
}

// ownedWallet loads a wallet and checks it belongs to userID.
func ownedWallet(ctx context.Context, wallets repositories.WalletRepository, userID, id string) (*models.Wallet, error) {
	wallet, err := wallets.GetByID(ctx, id)
	if err != nil {
		return nil, readError("wallet", err)
	}
	if wallet.UserID != userID {
		return nil, forbidden("wallet belongs to another user")
	}
	return wallet, nil
}

// List returns the wallets of userID with their balances.
func (s *WalletService) List(ctx context.Context, userID string) ([]models.WalletBalance, error) {
	wallets, err := s.wallets.ListWithBalance(ctx, userID)
	if err != nil {
		return nil, internal("failed to load wallets", err)
	}
	return wallets, nil
}

// Get returns a wallet of userID with its balance.
func (s *WalletService) Get(ctx context.Context, userID, id string) (*models.WalletBalance, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}
	wallet, err := s.wallets.GetWithBalance(ctx, id)
	if err != nil {
		return nil, readError("wallet", err)
	}
	return wallet, nil
}

// Create creates an empty wallet for userID.
func (s *WalletService) Create(ctx context.Context, userID, title string) (*models.WalletBalance, error) {
	wallet := &models.Wallet{Title: title, UserID: userID}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, writeError("wallet", err)
	}
	return &models.WalletBalance{ID: wallet.ID, Title: wallet.Title, UserID: userID, Balance: decimal.Zero}, nil
}

// Update renames a wallet of userID.
func (s *WalletService) Update(ctx context.Context, userID, id, title string) (*models.WalletBalance, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}
	if err := s.wallets.Update(ctx, id, map[string]interface{}{"title": title}); err != nil {
		return nil, writeError("wallet", err)
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a wallet of userID and all of its transactions.
func (s *WalletService) Delete(ctx context.Context, userID, id string) error {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return err
	}
	if err := s.wallets.Delete(ctx, id); err != nil {
		return writeError("wallet", err)
	}
	s.log.Info("wallet deleted", zap.String("wallet_id", id), zap.String("user_id", userID))
	return nil
}

// RecentTransactions returns the newest transactions of a wallet. A
// non-positive limit selects the default.
func (s *WalletService) RecentTransactions(ctx context.Context, userID, id string, limit int) ([]models.Transaction, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	list, err := s.transactions.Recent(ctx, id, limit)
	if err != nil {
		return nil, internal("failed to load transactions", err)
	}
	return list, nil
}

// LastDayTransactions returns every transaction booked on the UTC day of the
// wallet's newest transaction.
func (s *WalletService) LastDayTransactions(ctx context.Context, userID, id string) ([]models.Transaction, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}

	latest, err := s.transactions.Latest(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("wallet has no transactions")
	}
	if err != nil {
		return nil, internal("failed to load transactions", err)
	}

	at := latest.CreatedAt.UTC()
	from := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	list, err := s.transactions.Between(ctx, id, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, internal("failed to load transactions", err)
	}
	return list, nil
}

// MonthlySummary totals the wallet's incomes and expenses of one month. Both
// types are always present.
func (s *WalletService) MonthlySummary(ctx context.Context, userID, id string, year, month int) ([]models.TypeSum, error) {
	if month < 1 || month > 12 {
		return nil, newError(ErrValidation, "month must be between 1 and 12", nil)
	}
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	sums, err := s.wallets.SumByType(ctx, id, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, internal("failed to summarize wallet", err)
	}

	out := []models.TypeSum{
		{Name: models.TransactionIncome, Value: decimal.Zero},
		{Name: models.TransactionExpense, Value: decimal.Zero},
	}
	for _, sum := range sums {
		for i := range out {
			if out[i].Name == sum.Name {
				out[i].Value = sum.Value
			}
		}
	}
	return out, nil
}

// Calendar returns the net amount per day in [from, to).
func (s *WalletService) Calendar(ctx context.Context, userID, id string, from, to time.Time) ([]models.CalendarDay, error) {
	if !from.Before(to) {
		return nil, newError(ErrValidation, "from must be before to", nil)
	}
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}
	days, err := s.wallets.DailyNet(ctx, id, from.UTC(), to.UTC())
	if err != nil {
		return nil, internal("failed to summarize wallet", err)
	}
	return days, nil
}

// TagSummary returns the expense total per tag of a wallet.
func (s *WalletService) TagSummary(ctx context.Context, userID, id string) ([]models.TagSummary, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, id); err != nil {
		return nil, err
	}
	tags, err := s.wallets.TagSummary(ctx, id)
	if err != nil {
		return nil, internal("failed to summarize wallet", err)
	}
	return tags, nil
}

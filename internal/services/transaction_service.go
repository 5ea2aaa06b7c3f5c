package services

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/shopspring/decimal"
)

// TransactionInput is the data of a new transaction.
type TransactionInput struct {
	Title    string
	Type     models.TransactionType
	Amount   decimal.Decimal
	WalletID string
	TagID    *string
}

// TransactionUpdate holds the optional changes of a transaction. A TagID
// pointing to an empty string removes the tag.
type TransactionUpdate struct {
	Title    *string
	Type     *models.TransactionType
	Amount   *decimal.Decimal
	WalletID *string
	TagID    *string
}

// TransactionService handles transactions. Ownership is checked through the
// transaction's wallet.
type TransactionService struct {
	transactions repositories.TransactionRepository
	wallets      repositories.WalletRepository
	tags         repositories.TagRepository
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	transactions repositories.TransactionRepository,
	wallets repositories.WalletRepository,
	tags repositories.TagRepository,
) *TransactionService {
	return &TransactionService{transactions: transactions, wallets: wallets, tags: tags}
}

func validTransaction(typ models.TransactionType, amount decimal.Decimal) error {
	if typ != models.TransactionIncome && typ != models.TransactionExpense {
		return newError(ErrValidation, "type must be INCOME or EXPENSE", nil)
	}
	if !amount.IsPositive() {
		return newError(ErrValidation, "amount must be greater than zero", nil)
	}
	return nil
}

// List returns the transactions of a wallet of userID, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	if _, err := ownedWallet(ctx, s.wallets, userID, filter.WalletID); err != nil {
		return nil, err
	}
	list, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, internal("failed to load transactions", err)
	}
	return list, nil
}

// Get returns a transaction of userID.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	transaction, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, readError("transaction", err)
	}
	if _, err := ownedWallet(ctx, s.wallets, userID, transaction.WalletID); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Create books a transaction on a wallet of userID.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if err := validTransaction(in.Type, in.Amount); err != nil {
		return nil, err
	}
	if _, err := ownedWallet(ctx, s.wallets, userID, in.WalletID); err != nil {
		return nil, err
	}
	if in.TagID != nil && *in.TagID == "" {
		in.TagID = nil
	}
	if in.TagID != nil {
		if _, err := ownedTag(ctx, s.tags, userID, *in.TagID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		Title:            in.Title,
		Type:             in.Type,
		Amount:           in.Amount,
		WalletID:         in.WalletID,
		TransactionTagID: in.TagID,
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		return nil, writeError("transaction", err)
	}
	return s.Get(ctx, userID, transaction.ID)
}

// Update changes a transaction of userID. Moving it requires owning the target wallet.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	typ, amount := transaction.Type, transaction.Amount
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Type != nil {
		typ = *in.Type
		fields["type"] = typ
	}
	if in.Amount != nil {
		amount = *in.Amount
		fields["amount"] = amount
	}
	if err := validTransaction(typ, amount); err != nil {
		return nil, err
	}
	if in.WalletID != nil && *in.WalletID != transaction.WalletID {
		if _, err := ownedWallet(ctx, s.wallets, userID, *in.WalletID); err != nil {
			return nil, err
		}
		fields["wallet_id"] = *in.WalletID
	}
	if in.TagID != nil {
		if *in.TagID == "" {
			fields["transaction_tag_id"] = nil
		} else {
			if _, err := ownedTag(ctx, s.tags, userID, *in.TagID); err != nil {
				return nil, err
			}
			fields["transaction_tag_id"] = *in.TagID
		}
	}
	if len(fields) == 0 {
		return transaction, nil
	}

	if err := s.transactions.Update(ctx, id, fields); err != nil {
		return nil, writeError("transaction", err)
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a transaction of userID.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		return writeError("transaction", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet groups transactions of a user. Its balance is never stored.
type Wallet struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Title     string `gorm:"type:varchar(48);not null"`
	UserID    string `gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletBalance is a wallet row joined with the signed sum of its transactions.
type WalletBalance struct {
	ID      string
	Title   string
	UserID  string
	Balance decimal.Decimal
}

// WalletResponse is the public projection of a wallet and its balance.
type WalletResponse struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

// NewWalletResponse projects a wallet with its computed balance.
func NewWalletResponse(w *WalletBalance) WalletResponse {
	return WalletResponse{
		ID:      w.ID,
		Title:   w.Title,
		UserID:  w.UserID,
		Balance: w.Balance,
	}
}

// TypeSum is the total of a wallet's transactions of one type.
type TypeSum struct {
	Name  TransactionType `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CalendarDay is the net amount of a wallet on one day (YYYY-MM-DD).
type CalendarDay struct {
	Day   string          `json:"day"`
	Value decimal.Decimal `json:"value"`
}

// TagSummary is the expense total booked under a tag.
type TagSummary struct {
	TagID  string          `json:"tagId"`
	Tag    string          `json:"tag"`
	Color  string          `json:"color"`
	Amount decimal.Decimal `json:"amount"`
}

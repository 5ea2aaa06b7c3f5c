package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Transaction is a single income or expense booked on a wallet.
type Transaction struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)"`
	Title            string          `gorm:"type:varchar(255);not null"`
	Type             TransactionType `gorm:"type:varchar(16);not null;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	WalletID         string          `gorm:"type:varchar(36);not null;index"`
	TransactionTagID *string         `gorm:"type:varchar(36);index"`
	TransactionTag   *TransactionTag `gorm:"foreignKey:TransactionTagID"`
	CreatedAt        time.Time       `gorm:"index"`
	UpdatedAt        time.Time
}

// TransactionResponse is the public projection of a transaction.
type TransactionResponse struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Type             TransactionType         `json:"type"`
	Amount           decimal.Decimal         `json:"amount"`
	WalletID         string                  `json:"walletId"`
	TransactionTagID *string                 `json:"transactionTagId,omitempty"`
	TransactionTag   *TransactionTagResponse `json:"transactionTag,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// NewTransactionResponse projects t, including its tag when preloaded.
func NewTransactionResponse(t *Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               t.ID,
		Title:            t.Title,
		Type:             t.Type,
		Amount:           t.Amount,
		WalletID:         t.WalletID,
		TransactionTagID: t.TransactionTagID,
		CreatedAt:        t.CreatedAt,
	}
	if t.TransactionTag != nil {
		tag := NewTransactionTagResponse(t.TransactionTag)
		resp.TransactionTag = &tag
	}
	return resp
}

// NewTransactionResponses projects a list of transactions.
func NewTransactionResponses(list []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for i := range list {
		out = append(out, NewTransactionResponse(&list[i]))
	}
	return out
}

package models

import "time"

// TransactionTag is a user-defined label for transactions.
type TransactionTag struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Title     string `gorm:"type:varchar(255);not null"`
	Color     string `gorm:"type:varchar(16)"`
	UserID    string `gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TransactionTagResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Color  string `json:"color"`
	UserID string `json:"userId"`
}

func NewTransactionTagResponse(t *TransactionTag) TransactionTagResponse {
	return TransactionTagResponse{ID: t.ID, Title: t.Title, Color: t.Color, UserID: t.UserID}
}

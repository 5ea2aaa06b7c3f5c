package models

import "time"

// TokenKind distinguishes the purposes a single-use token can serve.
type TokenKind string

const (
	TokenEmailVerification TokenKind = "EMAIL_VERIFICATION"
	TokenEmailChange       TokenKind = "EMAIL_CHANGE"
	TokenPasswordReset     TokenKind = "PASSWORD_RESET"
)

// SingleUseToken is an emailed capability. A user holds at most one token per
// kind; issuing a new one replaces the previous row.
type SingleUseToken struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_single_use_tokens_user_kind"`
	Kind       TokenKind `gorm:"type:varchar(32);not null;uniqueIndex:idx_single_use_tokens_user_kind"`
	Token      string    `gorm:"type:varchar(21);not null;uniqueIndex"`
	ValidUntil time.Time `gorm:"not null;index"`
	NewEmail   *string   `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
}

// ExpiredAt reports whether the token is no longer usable at now. A token whose
// ValidUntil equals now is expired.
func (t *SingleUseToken) ExpiredAt(now time.Time) bool {
	return !t.ValidUntil.After(now)
}

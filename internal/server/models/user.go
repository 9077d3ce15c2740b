package models

import "time"

// User is a web account. TelegramID is the bound external chat identity;
// nil means unlinked. At most one user may hold a given TelegramID, enforced
// by a unique constraint in the store.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	TelegramID   *string
	IsActive     bool
	CreatedAt    time.Time
}

// Linked reports whether the account has a bound chat identity.
func (u *User) Linked() bool {
	return u.TelegramID != nil && *u.TelegramID != ""
}

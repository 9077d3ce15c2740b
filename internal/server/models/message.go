package models

import "time"

// Message is one relayed communication between two accounts.
// TelegramMessageID is set after a successful chat-side delivery; a stored
// message with a nil TelegramMessageID was not (yet) delivered externally.
// Rows are immutable after creation except for attaching the delivery ref.
type Message struct {
	ID                int64
	Content           string
	SenderID          int64
	RecipientID       int64
	TelegramMessageID *string
	AttachmentKey     *string
	IsBotMessage      bool
	CreatedAt         time.Time
}

// Package bot is the chat-side frontend of the relay: it consumes the
// inbound update stream and turns commands and plain messages into relay
// operations.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/logging"
	"github.com/mihhailt/telebridge/internal/server/models"
	"github.com/mihhailt/telebridge/internal/server/telegram"
)

const helpText = `Commands:
/start - get a pairing code for linking this chat to an account
/link - request a fresh pairing code
/status - show which account this chat is linked to
/help - show this message

Plain messages from a linked chat are recorded on the linked account.`

// RelayAPI is the slice of the relay the bot drives.
type RelayAPI interface {
	RequestPairing(ctx context.Context, chatID string) (string, error)
	RelayInbound(ctx context.Context, chatID, messageID, text string) error
	Status(ctx context.Context, chatID string) (*models.User, error)
}

// Sender pushes replies back to the chat that triggered them.
type Sender interface {
	Send(ctx context.Context, chatID string, text string) (string, error)
}

// Bot consumes inbound chat events sequentially. One consumer goroutine is
// enough: command handling is cheap and ordering per chat matters.
type Bot struct {
	relay  RelayAPI
	sender Sender
	logger logging.Logger
}

func New(relay RelayAPI, sender Sender, logger logging.Logger) *Bot {
	return &Bot{
		relay:  relay,
		sender: sender,
		logger: logger.With("module", "bot"),
	}
}

// Run consumes the update stream until it closes or ctx is cancelled.
func (b *Bot) Run(ctx context.Context, updates <-chan telegram.InboundMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			b.handle(ctx, msg)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg telegram.InboundMessage) {
	switch msg.Command {
	case "start":
		b.handlePairing(ctx, msg.ChatID,
			"Welcome! Use this code to link your account:")
	case "link":
		b.handlePairing(ctx, msg.ChatID,
			"Here is a fresh pairing code:")
	case "status":
		b.handleStatus(ctx, msg.ChatID)
	case "help":
		b.reply(ctx, msg.ChatID, helpText)
	case "":
		if err := b.relay.RelayInbound(ctx, msg.ChatID, msg.MessageID, msg.Text); err != nil {
			b.logger.Error(ctx, "error relaying inbound message", "chat_id", msg.ChatID, "error", err.Error())
		}
	default:
		b.reply(ctx, msg.ChatID, "Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) handlePairing(ctx context.Context, chatID, preamble string) {
	code, err := b.relay.RequestPairing(ctx, chatID)
	if err != nil {
		b.logger.Error(ctx, "error issuing pairing code", "chat_id", chatID, "error", err.Error())
		b.reply(ctx, chatID, "Could not issue a pairing code right now, try again later.")
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("%s\n\n%s\n\nEnter it on the web side to finish linking.", preamble, code))
}

func (b *Bot) handleStatus(ctx context.Context, chatID string) {
	user, err := b.relay.Status(ctx, chatID)
	if err != nil {
		if errors.Is(err, common.ErrNotBound) {
			b.reply(ctx, chatID, "This chat is not linked to any account. Send /start to get a pairing code.")
			return
		}
		b.logger.Error(ctx, "error resolving chat status", "chat_id", chatID, "error", err.Error())
		b.reply(ctx, chatID, "Could not check the link status right now, try again later.")
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("This chat is linked to %s.", user.Username))
}

func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if _, err := b.sender.Send(ctx, chatID, text); err != nil {
		b.logger.Error(ctx, "error sending reply", "chat_id", chatID, "error", err.Error())
	}
}

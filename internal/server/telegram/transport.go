// Package telegram adapts the Telegram Bot API to the chat-transport
// boundary used by the relay: request/response sends outward, a long-poll
// update stream inward.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/logging"
)

// Transport sends messages to an external chat identity.
//
// Send returns the external delivery reference on success. Failures are
// non-fatal to callers by contract: the caller must have durably recorded
// the message before attempting delivery. Errors match either
// common.ErrInvalidRecipient (the platform rejected the recipient/request)
// or common.ErrTransportUnavailable (everything else).
type Transport interface {
	Send(ctx context.Context, chatID string, text string) (string, error)
	VerifyIdentity(ctx context.Context, chatID string) (bool, error)
}

// InboundMessage is one chat-originated event: either a bot command
// (Command holds the bare command name, e.g. "start") or a plain text
// message from the chat side.
type InboundMessage struct {
	ChatID    string
	MessageID string
	Text      string
	Command   string
}

// BotTransport implements Transport over a Bot API connection and exposes
// the inbound update stream.
type BotTransport struct {
	bot    *tgbotapi.BotAPI
	logger logging.Logger
}

func NewBotTransport(token string, logger logging.Logger) (*BotTransport, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot api init error: %w", err)
	}

	return &BotTransport{bot: bot, logger: logger.With("module", "telegram")}, nil
}

func (t *BotTransport) Send(ctx context.Context, chatID string, text string) (string, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return "", err
	}

	sent, err := t.bot.Send(tgbotapi.NewMessage(id, text))
	if err != nil {
		return "", mapSendError(err)
	}

	return strconv.Itoa(sent.MessageID), nil
}

// VerifyIdentity is a best-effort existence check against the platform,
// used only as a pre-flight hint before binding.
func (t *BotTransport) VerifyIdentity(ctx context.Context, chatID string) (bool, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return false, nil
	}

	_, err = t.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, mapSendError(err)
	}

	return true, nil
}

// Updates starts long polling and returns the inbound event stream. The
// channel closes when ctx is cancelled.
func (t *BotTransport) Updates(ctx context.Context) <-chan InboundMessage {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	raw := t.bot.GetUpdatesChan(cfg)
	out := make(chan InboundMessage)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				msg, ok := fromUpdate(u)
				if !ok {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					t.bot.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	return out
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed chat id %q", common.ErrInvalidRecipient, chatID)
	}
	return id, nil
}

// mapSendError classifies a Bot API failure. 4xx responses mean the request
// or recipient was rejected; anything else is a transport-level outage.
func mapSendError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
		return fmt.Errorf("%w: %s", common.ErrInvalidRecipient, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", common.ErrTransportUnavailable, err)
}

// fromUpdate converts a raw update into an InboundMessage, dropping
// everything that is not a private text message.
func fromUpdate(u tgbotapi.Update) (InboundMessage, bool) {
	if u.Message == nil || u.Message.Chat == nil {
		return InboundMessage{}, false
	}

	msg := InboundMessage{
		ChatID:    strconv.FormatInt(u.Message.Chat.ID, 10),
		MessageID: strconv.Itoa(u.Message.MessageID),
		Text:      u.Message.Text,
		Command:   parseCommand(u.Message.Text),
	}

	return msg, true
}

// parseCommand extracts the bare command name from a "/command[@bot]" text,
// or returns an empty string for plain messages.
func parseCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/dbx"
	"github.com/mihhailt/telebridge/internal/logging"
	"github.com/mihhailt/telebridge/internal/server/metrics"
	"github.com/mihhailt/telebridge/internal/server/models"
	"github.com/mihhailt/telebridge/internal/server/pairing"
	"github.com/mihhailt/telebridge/internal/server/repositories/repomanager"
	"github.com/mihhailt/telebridge/internal/server/telegram"
)

// RelayService binds chat identities to accounts and relays messages between
// the web side and the chat side.
//
// Delivery is durability-first: a message is persisted before any transport
// attempt, and a failed delivery never fails the operation that stored it.
type RelayService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *pairing.Registry
	transport   telegram.Transport
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewRelayService(db *sql.DB, m repomanager.RepositoryManager, registry *pairing.Registry,
	transport telegram.Transport, logger logging.Logger, metrics *metrics.Metrics) *RelayService {
	return &RelayService{
		db:          db,
		repomanager: m,
		registry:    registry,
		transport:   transport,
		logger:      logger.With("module", "relay"),
		metrics:     metrics,
	}
}

// RequestPairing issues a fresh one-time code for the chat identity,
// invalidating any code issued for it earlier.
func (s *RelayService) RequestPairing(ctx context.Context, chatID string) (string, error) {
	code, err := s.registry.Issue(chatID)
	if err != nil {
		return "", fmt.Errorf("error issuing pairing code: %w", err)
	}

	s.metrics.PairingCodeIssued()
	s.logger.Info(ctx, "pairing code issued", "chat_id", chatID)

	return code, nil
}

// ConfirmPairing consumes the code and binds the chat identity it was issued
// for to the account. The code is spent even when the bind fails afterwards:
// retrying requires requesting a new code from the chat side.
func (s *RelayService) ConfirmPairing(ctx context.Context, userID int64, code string) (*models.User, error) {

	chatID, err := s.registry.Consume(code)
	if err != nil {
		return nil, common.ErrInvalidCode
	}

	user, err := s.bind(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	s.metrics.PairingConfirmed()

	return user, nil
}

// LinkDirect binds a chat identity named by the caller instead of one proved
// via a pairing code. The identity is checked against the platform first, so
// an account cannot be bound to a chat the bot cannot reach.
func (s *RelayService) LinkDirect(ctx context.Context, userID int64, chatID string) (*models.User, error) {

	ok, err := s.transport.VerifyIdentity(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("error verifying chat identity: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidRecipient
	}

	return s.bind(ctx, userID, chatID)
}

// bind associates the chat identity with the account inside a transaction
// and sends the best-effort greeting. Re-binding the same pair is a no-op.
func (s *RelayService) bind(ctx context.Context, userID int64, chatID string) (*models.User, error) {

	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if u.TelegramID != nil && *u.TelegramID == chatID {
			user = u
			return nil
		}

		if err := repo.BindTelegram(ctx, userID, chatID); err != nil {
			return err
		}

		u.TelegramID = &chatID
		user = u
		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrAlreadyLinked) || errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error binding chat identity: %w", err)
	}

	s.logger.Info(ctx, "chat identity bound", "user_id", userID, "chat_id", chatID)

	s.notify(ctx, chatID, fmt.Sprintf("Your Telegram account is now linked to %s.", user.Username))

	return user, nil
}

// Unlink removes the account's chat-identity binding and sends a best-effort
// farewell to the previously bound chat.
func (s *RelayService) Unlink(ctx context.Context, userID int64) error {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.Linked() {
		return common.ErrNotBound
	}
	chatID := *user.TelegramID

	if err := repo.UnbindTelegram(ctx, userID); err != nil {
		return err
	}

	s.logger.Info(ctx, "chat identity unbound", "user_id", userID, "chat_id", chatID)

	s.notify(ctx, chatID, fmt.Sprintf("Your Telegram account has been unlinked from %s.", user.Username))

	return nil
}

// SendMessage stores a message from one account to another, then attempts
// delivery to the recipient's bound chat. A missing binding or a transport
// failure degrades silently: the message stays stored, the caller still
// receives it back.
func (s *RelayService) SendMessage(ctx context.Context, senderID, recipientID int64, content string, attachmentKey *string) (*models.Message, error) {

	userRepo := s.repomanager.Users(s.db)

	sender, err := userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipient, err := userRepo.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRecipientNotFound
		}
		return nil, err
	}

	msg := &models.Message{
		Content:       content,
		SenderID:      sender.ID,
		RecipientID:   recipient.ID,
		AttachmentKey: attachmentKey,
	}

	msg, err = s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("error storing message: %w", err)
	}
	s.metrics.MessageStored()

	if recipient.Linked() {
		s.deliver(ctx, msg, *recipient.TelegramID, fmt.Sprintf("Message from %s:\n%s", sender.Username, content))
	}

	return msg, nil
}

// SendBotMessage stores and delivers a message on behalf of an account,
// marked as bot-originated. Unlike SendMessage the recipient must be bound:
// a bot message has no web-side reader to fall back to.
func (s *RelayService) SendBotMessage(ctx context.Context, senderID, recipientID int64, content string) (*models.Message, error) {

	userRepo := s.repomanager.Users(s.db)

	sender, err := userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipient, err := userRepo.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRecipientNotFound
		}
		return nil, err
	}

	if !recipient.Linked() {
		return nil, common.ErrNotBound
	}

	msg := &models.Message{
		Content:      content,
		SenderID:     sender.ID,
		RecipientID:  recipient.ID,
		IsBotMessage: true,
	}

	msg, err = s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("error storing message: %w", err)
	}
	s.metrics.MessageStored()

	s.deliver(ctx, msg, *recipient.TelegramID, fmt.Sprintf("Bot message from %s:\n%s", sender.Username, content))

	return msg, nil
}

// RelayInbound records a plain chat message from a bound identity as a
// self-addressed message on the owning account. Messages from unbound
// identities are dropped without error.
func (s *RelayService) RelayInbound(ctx context.Context, chatID, messageID, text string) error {

	user, err := s.repomanager.Users(s.db).GetByTelegramID(ctx, chatID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.InboundDropped()
			s.logger.Info(ctx, "inbound message from unbound chat dropped", "chat_id", chatID)
			return nil
		}
		return err
	}

	msg := &models.Message{
		Content:     text,
		SenderID:    user.ID,
		RecipientID: user.ID,
	}

	repo := s.repomanager.Messages(s.db)

	msg, err = repo.Create(ctx, msg)
	if err != nil {
		return fmt.Errorf("error storing inbound message: %w", err)
	}
	s.metrics.MessageStored()

	if messageID != "" {
		if err := repo.AttachDeliveryRef(ctx, msg.ID, messageID); err != nil {
			s.logger.Error(ctx, "error attaching delivery ref", "message_id", msg.ID, "error", err.Error())
		}
	}

	return nil
}

// Status resolves a chat identity to the account it is bound to, if any.
func (s *RelayService) Status(ctx context.Context, chatID string) (*models.User, error) {

	user, err := s.repomanager.Users(s.db).GetByTelegramID(ctx, chatID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotBound
		}
		return nil, err
	}

	return user, nil
}

// ListMessages returns all messages the account sent or received,
// newest first.
func (s *RelayService) ListMessages(ctx context.Context, userID int64) ([]*models.Message, error) {
	return s.repomanager.Messages(s.db).ListForUser(ctx, userID)
}

// ListConversation returns the message history between two accounts,
// newest first.
func (s *RelayService) ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, otherID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRecipientNotFound
		}
		return nil, err
	}

	return s.repomanager.Messages(s.db).ListConversation(ctx, userID, otherID)
}

// MessageStats reports the number of messages the account participated in.
func (s *RelayService) MessageStats(ctx context.Context, userID int64) (int64, error) {
	return s.repomanager.Messages(s.db).CountForUser(ctx, userID)
}

// ListRecipients returns the accounts with a chat binding, excluding the
// caller: the set of accounts that can currently receive relayed messages.
func (s *RelayService) ListRecipients(ctx context.Context, userID int64) ([]*models.User, error) {
	return s.repomanager.Users(s.db).ListLinked(ctx, userID)
}

// deliver pushes the stored message through the chat transport and attaches
// the delivery reference. All failures are logged and swallowed.
func (s *RelayService) deliver(ctx context.Context, msg *models.Message, chatID, text string) {

	ref, err := s.transport.Send(ctx, chatID, text)
	if err != nil {
		s.metrics.DeliveryFailed()
		s.logger.Error(ctx, "delivery failed", "message_id", msg.ID, "chat_id", chatID, "error", err.Error())
		return
	}

	s.metrics.DeliverySucceeded()

	if err := s.repomanager.Messages(s.db).AttachDeliveryRef(ctx, msg.ID, ref); err != nil {
		s.logger.Error(ctx, "error attaching delivery ref", "message_id", msg.ID, "error", err.Error())
		return
	}
	msg.TelegramMessageID = &ref
}

// notify sends a best-effort informational message to a chat.
func (s *RelayService) notify(ctx context.Context, chatID, text string) {
	if _, err := s.transport.Send(ctx, chatID, text); err != nil {
		s.logger.Error(ctx, "notification failed", "chat_id", chatID, "error", err.Error())
	}
}

package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mihhailt/telebridge/internal/common"
	"github.com/mihhailt/telebridge/internal/logging"
	"github.com/mihhailt/telebridge/internal/server/models"
	"github.com/mihhailt/telebridge/internal/server/telegram"
)

type inbound struct {
	chatID    string
	messageID string
	text      string
}

type fakeRelay struct {
	code    string
	codeErr error

	statusOut *models.User
	statusErr error

	relayed  []inbound
	relayErr error
}

func (f *fakeRelay) RequestPairing(ctx context.Context, chatID string) (string, error) {
	if f.codeErr != nil {
		return "", f.codeErr
	}
	return f.code, nil
}

func (f *fakeRelay) RelayInbound(ctx context.Context, chatID, messageID, text string) error {
	if f.relayErr != nil {
		return f.relayErr
	}
	f.relayed = append(f.relayed, inbound{chatID: chatID, messageID: messageID, text: text})
	return nil
}

func (f *fakeRelay) Status(ctx context.Context, chatID string) (*models.User, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusOut, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(ctx context.Context, chatID string, text string) (string, error) {
	f.sent = append(f.sent, text)
	return "1", nil
}

func newTestBot(relay *fakeRelay, sender *fakeSender) *Bot {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(relay, sender, logger)
}

func TestHandle_StartIssuesCode(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{code: "123456"}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", Command: "start", Text: "/start"})

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "123456") {
		t.Fatalf("expected reply with code, got %v", sender.sent)
	}
}

func TestHandle_LinkIssuesFreshCode(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{code: "654321"}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", Command: "link", Text: "/link"})

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "654321") {
		t.Fatalf("expected reply with code, got %v", sender.sent)
	}
}

func TestHandle_StatusLinked(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{statusOut: &models.User{Username: "alice"}}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", Command: "status", Text: "/status"})

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "alice") {
		t.Fatalf("expected status naming the account, got %v", sender.sent)
	}
}

func TestHandle_StatusUnlinked(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{statusErr: common.ErrNotBound}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", Command: "status", Text: "/status"})

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "not linked") {
		t.Fatalf("expected not-linked reply, got %v", sender.sent)
	}
}

func TestHandle_PlainTextRelayed(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", MessageID: "9", Text: "hello there"})

	if len(relay.relayed) != 1 {
		t.Fatalf("expected one relayed message, got %d", len(relay.relayed))
	}
	got := relay.relayed[0]
	if got.chatID != "555" || got.messageID != "9" || got.text != "hello there" {
		t.Fatalf("relayed message mismatch: %+v", got)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("plain text must not trigger a reply, got %v", sender.sent)
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	b.handle(context.Background(), telegram.InboundMessage{ChatID: "555", Command: "frobnicate", Text: "/frobnicate"})

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "/help") {
		t.Fatalf("expected unknown-command reply, got %v", sender.sent)
	}
	if len(relay.relayed) != 0 {
		t.Fatalf("command must not be relayed as a message, got %v", relay.relayed)
	}
}

func TestRun_StopsOnChannelClose(t *testing.T) {
	t.Parallel()

	relay := &fakeRelay{code: "123456"}
	sender := &fakeSender{}
	b := newTestBot(relay, sender)

	updates := make(chan telegram.InboundMessage, 1)
	updates <- telegram.InboundMessage{ChatID: "555", Command: "start", Text: "/start"}
	close(updates)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background(), updates)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after channel close")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected queued update to be handled, got %v", sender.sent)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	b := newTestBot(&fakeRelay{}, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan telegram.InboundMessage)

	done := make(chan struct{})
	go func() {
		b.Run(ctx, updates)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package pairing

import (
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mihhailt/telebridge/internal/common"
)

func TestIssueAndConsume_RoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	code, err := r.Issue("555000111")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(code) {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	chatID, err := r.Consume(code)
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if chatID != "555000111" {
		t.Fatalf("chat identity mismatch: got %q", chatID)
	}
}

func TestConsume_AtMostOnce(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	code, err := r.Issue("42")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := r.Consume(code); err != nil {
		t.Fatalf("first Consume error: %v", err)
	}
	if _, err := r.Consume(code); !errors.Is(err, common.ErrInvalidCode) {
		t.Fatalf("second Consume: want ErrInvalidCode, got %v", err)
	}
}

func TestConsume_UnknownCode(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	if _, err := r.Consume("000000"); !errors.Is(err, common.ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
}

func TestIssue_SupersedesPriorCode(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	first, err := r.Issue("777")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	second, err := r.Issue("777")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := r.Consume(first); !errors.Is(err, common.ErrInvalidCode) {
		t.Fatalf("superseded code must be invalid, got %v", err)
	}
	chatID, err := r.Consume(second)
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if chatID != "777" {
		t.Fatalf("chat identity mismatch: got %q", chatID)
	}
}

func TestConsume_Expired(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	current := time.Now()
	r.now = func() time.Time { return current }

	code, err := r.Issue("999")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	current = current.Add(11 * time.Minute)

	if _, err := r.Consume(code); !errors.Is(err, common.ErrInvalidCode) {
		t.Fatalf("expired code must be invalid, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry after expiry, got %d entries", r.Len())
	}
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	r := NewRegistry(10 * time.Minute)

	code, err := r.Issue("31337")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	const workers = 32
	var wins atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := r.Consume(code); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one successful Consume, got %d", wins.Load())
	}
}

func TestIssue_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)

	current := time.Now()
	r.now = func() time.Time { return current }

	code, err := r.Issue("1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	current = current.Add(24 * time.Hour)

	if _, err := r.Consume(code); err != nil {
		t.Fatalf("Consume error with zero TTL: %v", err)
	}
}

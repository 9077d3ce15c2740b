// Package pairing implements the in-memory registry of one-time account
// linking codes. A chat-side actor requests a code, the web side consumes
// it to bind the chat identity to an account.
//
// The registry is process-local by design: codes are short-lived and lost on
// restart, and the service must not be scaled horizontally without moving
// this state to a shared store.
package pairing

import (
	"sync"
	"time"

	"github.com/mihhailt/telebridge/internal/common"
)

const codeLength = 6

type entry struct {
	chatID   string
	issuedAt time.Time
}

// Registry maps live pairing codes to chat identities. All state is guarded
// by a single mutex; Issue and Consume never block on I/O, so callers must
// not perform store or transport calls while assuming registry consistency.
//
// At most one code is live per chat identity: issuing a new code invalidates
// the previous one. Entries expire after the configured TTL and are evicted
// lazily on access.
type Registry struct {
	mu     sync.Mutex
	codes  map[string]entry
	byChat map[string]string
	ttl    time.Duration
	now    func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		codes:  make(map[string]entry),
		byChat: make(map[string]string),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a 6-digit code for the chat identity, replacing any code
// previously issued for it. Generation retries on the (rare) collision with
// another live code.
func (r *Registry) Issue(chatID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired()

	if prev, ok := r.byChat[chatID]; ok {
		delete(r.codes, prev)
		delete(r.byChat, chatID)
	}

	for {
		code, err := common.MakeRandDigits(codeLength)
		if err != nil {
			return "", err
		}
		if _, taken := r.codes[code]; taken {
			continue
		}
		r.codes[code] = entry{chatID: chatID, issuedAt: r.now()}
		r.byChat[chatID] = code
		return code, nil
	}
}

// Consume atomically looks up and removes the code, returning the chat
// identity it was issued for. A code consumes at most once: concurrent
// Consume calls on the same code succeed for exactly one caller. Unknown,
// already consumed and expired codes all fail with common.ErrInvalidCode.
func (r *Registry) Consume(code string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.codes[code]
	if !ok {
		return "", common.ErrInvalidCode
	}

	delete(r.codes, code)
	delete(r.byChat, e.chatID)

	if r.expired(e) {
		return "", common.ErrInvalidCode
	}

	return e.chatID, nil
}

// Len reports the number of live entries. Intended for tests and metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired()
	return len(r.codes)
}

func (r *Registry) expired(e entry) bool {
	return r.ttl > 0 && r.now().Sub(e.issuedAt) > r.ttl
}

// evictExpired drops stale entries. Called with the mutex held.
func (r *Registry) evictExpired() {
	for code, e := range r.codes {
		if r.expired(e) {
			delete(r.codes, code)
			delete(r.byChat, e.chatID)
		}
	}
}

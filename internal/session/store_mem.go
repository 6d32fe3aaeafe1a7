package session

import (
	"sync"

	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// MemoryStore is a thread-safe, in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	maxTurns int
	threads  map[string][]chat.Message
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store bounding each conversation to
// 2*maxTurns messages. A non-positive maxTurns falls back to DefaultMaxTurns.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MemoryStore{
		maxTurns: maxTurns,
		threads:  make(map[string][]chat.Message),
	}
}

// cap returns the message bound per conversation.
func (s *MemoryStore) cap() int { return 2 * s.maxTurns }

// append adds a message then trims the front down to the bound. Retained
// order is never mutated; eviction only drops the oldest entries.
func (s *MemoryStore) append(key chat.ConversationKey, msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	msgs := append(s.threads[k], msg)
	if over := len(msgs) - s.cap(); over > 0 {
		msgs = msgs[over:]
	}
	s.threads[k] = msgs
}

// AppendUser records a player message.
func (s *MemoryStore) AppendUser(key chat.ConversationKey, text string) error {
	s.append(key, chat.Message{Role: chat.RoleUser, Content: text})
	return nil
}

// AppendAssistant records a persona dialogue reply.
func (s *MemoryStore) AppendAssistant(key chat.ConversationKey, text string) error {
	s.append(key, chat.Message{Role: chat.RoleAssistant, Content: text})
	return nil
}

// Snapshot returns a copy of the history for key, oldest first.
func (s *MemoryStore) Snapshot(key chat.ConversationKey) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.threads[key.String()]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Len returns the number of messages stored for key.
func (s *MemoryStore) Len(key chat.ConversationKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads[key.String()]), nil
}

// Reset clears every conversation.
func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = make(map[string][]chat.Message)
	return nil
}

// Dump returns a deep copy of all conversations by key string.
func (s *MemoryStore) Dump() (map[string][]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]chat.Message, len(s.threads))
	for k, msgs := range s.threads {
		cp := make([]chat.Message, len(msgs))
		copy(cp, msgs)
		out[k] = cp
	}
	return out, nil
}

// Restore replaces the whole store, re-applying the size bound per key.
func (s *MemoryStore) Restore(data map[string][]chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads = make(map[string][]chat.Message, len(data))
	for k, msgs := range data {
		if over := len(msgs) - s.cap(); over > 0 {
			msgs = msgs[over:]
		}
		cp := make([]chat.Message, len(msgs))
		copy(cp, msgs)
		s.threads[k] = cp
	}
	return nil
}

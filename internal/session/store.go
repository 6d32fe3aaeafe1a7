// Package session provides bounded per-conversation message history with an
// in-memory implementation, a SQLite-backed implementation, and JSON save
// file support.
package session

import "github.com/Hector-302/projecto-taberna/pkg/chat"

// DefaultMaxTurns bounds each conversation to 2*DefaultMaxTurns messages
// unless configured otherwise.
const DefaultMaxTurns = 12

// Store manages conversation history per key. Histories are created lazily on
// first append, bounded to 2*maxTurns messages with the oldest evicted first,
// and cleared wholesale by Reset. Implementations must be safe for concurrent
// use.
//
// Only assistant dialogue text is ever persisted from a model turn; narration
// is cosmetic and must never be written into history.
type Store interface {
	// AppendUser records a player message.
	AppendUser(key chat.ConversationKey, text string) error

	// AppendAssistant records a persona (NPC) dialogue reply.
	AppendAssistant(key chat.ConversationKey, text string) error

	// Snapshot returns a copy of the history for key, oldest first. The
	// caller may mutate the result freely.
	Snapshot(key chat.ConversationKey) ([]chat.Message, error)

	// Len returns the number of messages stored for key.
	Len(key chat.ConversationKey) (int, error)

	// Reset clears every conversation.
	Reset() error

	// Dump returns all conversations by key string, for persistence.
	Dump() (map[string][]chat.Message, error)

	// Restore replaces the whole store with the given conversations,
	// re-applying the size bound per key.
	Restore(data map[string][]chat.Message) error
}

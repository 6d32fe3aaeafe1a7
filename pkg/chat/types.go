// Package chat defines the data contract between the dialogue core and the
// front-ends that render it. It covers conversation messages, conversation
// identity, and the normalized display events consumed by renderers.
package chat

// Role identifies the sender of a message in a conversation.
type Role string

// Role constants for conversation messages.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Immutable once appended to history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationKey identifies one chat thread: the player character on one
// side and the persona (NPC) on the other. Threads with different keys never
// share history. CharacterID may be empty in single-character deployments.
type ConversationKey struct {
	CharacterID string
	PersonaID   string
}

// String returns the stable string form of the key, used for persistence.
// When CharacterID is empty the key degenerates to the persona alone.
func (k ConversationKey) String() string {
	if k.CharacterID == "" {
		return k.PersonaID
	}
	return k.CharacterID + "/" + k.PersonaID
}

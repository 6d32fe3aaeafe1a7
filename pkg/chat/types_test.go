package chat_test

import (
	"testing"

	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

func TestConversationKey_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  chat.ConversationKey
		want string
	}{
		{"full key", chat.ConversationKey{CharacterID: "darian", PersonaID: "maela"}, "darian/maela"},
		{"no character", chat.ConversationKey{PersonaID: "sable"}, "sable"},
		{"empty", chat.ConversationKey{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRendererFunc(t *testing.T) {
	t.Parallel()

	var got chat.DisplayEvent
	r := chat.RendererFunc(func(ev chat.DisplayEvent) { got = ev })
	r.Render(chat.Dialogue("Maela", "hola"))

	if got.Kind != chat.EventCharacter || got.Speaker != "Maela" || got.Text != "hola" {
		t.Errorf("Render delivered %+v", got)
	}
}

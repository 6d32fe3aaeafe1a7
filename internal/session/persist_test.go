package session_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

func populate(t *testing.T, store session.Store) {
	t.Helper()
	if err := store.AppendUser(keyMaela, "quiero cerveza"); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendAssistant(keyMaela, "Aquí tienes, son dos cobres."); err != nil {
		t.Fatal(err)
	}
	sable := chat.ConversationKey{CharacterID: "darian", PersonaID: "sable"}
	if err := store.AppendUser(sable, "¿quien eres?"); err != nil {
		t.Fatal(err)
	}
}

func TestSaveFile_RoundTrip(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(12)
	populate(t, store)
	path := filepath.Join(t.TempDir(), "savegame.json")

	if err := session.SaveFile(store, path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	fresh := session.NewMemoryStore(12)
	if err := session.LoadFile(fresh, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	want, _ := store.Dump()
	got, _ := fresh.Dump()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestLoadFile_MissingFileIsNoOp(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(12)
	populate(t, store)

	if err := session.LoadFile(store, filepath.Join(t.TempDir(), "no-existe.json")); err != nil {
		t.Fatalf("LoadFile on missing file: %v", err)
	}
	if n, _ := store.Len(keyMaela); n != 2 {
		t.Error("missing save file must leave the store untouched")
	}
}

func TestLoadFile_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	source := session.NewMemoryStore(12)
	if err := source.AppendUser(chat.ConversationKey{PersonaID: "maela"}, "solo esto"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "savegame.json")
	if err := session.SaveFile(source, path); err != nil {
		t.Fatal(err)
	}

	target := session.NewMemoryStore(12)
	populate(t, target)
	if err := session.LoadFile(target, path); err != nil {
		t.Fatal(err)
	}

	dump, _ := target.Dump()
	if len(dump) != 1 {
		t.Fatalf("load must replace the store wholesale, got keys %v", keysOf(dump))
	}
}

func TestLoadFile_MalformedSaveErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "savegame.json")
	if err := os.WriteFile(path, []byte("{realmente no"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := session.LoadFile(session.NewMemoryStore(12), path); err == nil {
		t.Error("malformed save file should surface an error")
	}
}

func TestWipeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "savegame.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := session.WipeFile(path); err != nil {
		t.Fatalf("WipeFile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("save file still exists after wipe")
	}
	if err := session.WipeFile(path); err != nil {
		t.Errorf("WipeFile on missing file: %v", err)
	}
}

func keysOf(m map[string][]chat.Message) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// SaveFile writes the store's conversations to path as a JSON object mapping
// conversation keys to message arrays. The file is written atomically via a
// temp file rename.
func SaveFile(store Store, path string) error {
	data, err := store.Dump()
	if err != nil {
		return fmt.Errorf("session: dump: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode save: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: create directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("session: write save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("session: commit save: %w", err)
	}
	return nil
}

// LoadFile replaces the store's contents with the conversations in the save
// file at path. A missing file is a no-op.
func LoadFile(store Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("session: read save: %w", err)
	}

	var data map[string][]chat.Message
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("session: decode save %s: %w", path, err)
	}

	if err := store.Restore(data); err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}
	return nil
}

// WipeFile removes the save file at path. A missing file is not an error.
func WipeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: wipe save: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hector-302/projecto-taberna/pkg/chat"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const busyTimeoutMillis = 5000

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		conversation TEXT    NOT NULL,
		seq          INTEGER NOT NULL,
		role         TEXT    NOT NULL,
		content      TEXT    NOT NULL DEFAULT '',
		created_at   TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		PRIMARY KEY (conversation, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation, seq)`,
}

// SQLiteStore is a Store backed by a SQLite database, for deployments that
// want history to survive restarts without juggling save files.
type SQLiteStore struct {
	db       *sql.DB
	maxTurns int
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (and migrates) a SQLite database at path. The
// database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). Close the store when done.
func OpenSQLiteStore(path string, maxTurns int) (*SQLiteStore, error) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("session: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: set busy_timeout: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("session: migrate: %w", err)
		}
	}

	return &SQLiteStore{db: db, maxTurns: maxTurns}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) cap() int { return 2 * s.maxTurns }

// append inserts a message with the next sequence number, then trims rows
// beyond the conversation bound, oldest first, in one transaction.
func (s *SQLiteStore) append(key chat.ConversationKey, msg chat.Message) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	k := key.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (conversation, seq, role, content)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation = ?), ?, ?)`,
		k, k, string(msg.Role), msg.Content,
	); err != nil {
		return fmt.Errorf("session: insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation = ? AND seq <= (
			SELECT COALESCE(MAX(seq), 0) - ? FROM messages WHERE conversation = ?
		 )`,
		k, s.cap(), k,
	); err != nil {
		return fmt.Errorf("session: trim: %w", err)
	}

	return tx.Commit()
}

// AppendUser records a player message.
func (s *SQLiteStore) AppendUser(key chat.ConversationKey, text string) error {
	return s.append(key, chat.Message{Role: chat.RoleUser, Content: text})
}

// AppendAssistant records a persona dialogue reply.
func (s *SQLiteStore) AppendAssistant(key chat.ConversationKey, text string) error {
	return s.append(key, chat.Message{Role: chat.RoleAssistant, Content: text})
}

// Snapshot returns the history for key, oldest first.
func (s *SQLiteStore) Snapshot(key chat.ConversationKey) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT role, content FROM messages WHERE conversation = ? ORDER BY seq`,
		key.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("session: select: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []chat.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("session: scan: %w", err)
		}
		out = append(out, chat.Message{Role: chat.Role(role), Content: content})
	}
	return out, rows.Err()
}

// Len returns the number of messages stored for key.
func (s *SQLiteStore) Len(key chat.ConversationKey) (int, error) {
	var n int
	err := s.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM messages WHERE conversation = ?`, key.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("session: count: %w", err)
	}
	return n, nil
}

// Reset clears every conversation.
func (s *SQLiteStore) Reset() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM messages`); err != nil {
		return fmt.Errorf("session: reset: %w", err)
	}
	return nil
}

// Dump returns all conversations by key string.
func (s *SQLiteStore) Dump() (map[string][]chat.Message, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT conversation, role, content FROM messages ORDER BY conversation, seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("session: select all: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	out := make(map[string][]chat.Message)
	for rows.Next() {
		var conv, role, content string
		if err := rows.Scan(&conv, &role, &content); err != nil {
			return nil, fmt.Errorf("session: scan: %w", err)
		}
		out[conv] = append(out[conv], chat.Message{Role: chat.Role(role), Content: content})
	}
	return out, rows.Err()
}

// Restore replaces the whole store with the given conversations.
func (s *SQLiteStore) Restore(data map[string][]chat.Message) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	for conv, msgs := range data {
		if over := len(msgs) - s.cap(); over > 0 {
			msgs = msgs[over:]
		}
		for i, msg := range msgs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO messages (conversation, seq, role, content) VALUES (?, ?, ?, ?)`,
				conv, i+1, string(msg.Role), msg.Content,
			); err != nil {
				return fmt.Errorf("session: restore insert: %w", err)
			}
		}
	}
	return tx.Commit()
}

package sqlite

import (
	"context"
	"time"

	"github.com/vigilaperu/chaski/pkg/models"
)

// TranscriptStore archives conversation turns append-only, one row per
// message. The live conversation state stays in memory; this table exists so
// operators can audit what was asked and answered.
type TranscriptStore struct {
	store *Store
}

// NewTranscriptStore creates the store and its schema.
func NewTranscriptStore(store *Store) (*TranscriptStore, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS transcripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			created_at_epoch INTEGER NOT NULL
		)
	`
	if _, err := store.db.Exec(schema); err != nil {
		return nil, err
	}
	const index = `CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session_id, id)`
	if _, err := store.db.Exec(index); err != nil {
		return nil, err
	}
	return &TranscriptStore{store: store}, nil
}

// Append records one message at the end of a session's transcript.
func (t *TranscriptStore) Append(ctx context.Context, sessionID string, msg models.Message) error {
	const query = `
		INSERT INTO transcripts (session_id, role, content, created_at, created_at_epoch)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	_, err := t.store.ExecContext(ctx, query,
		sessionID, string(msg.Role), msg.Content,
		now.Format(time.RFC3339), now.UnixMilli(),
	)
	return err
}

// History returns a session's archived messages in insertion order.
func (t *TranscriptStore) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	const query = `
		SELECT role, content FROM transcripts
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := t.store.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		msgs = append(msgs, models.Message{Role: models.Role(role), Content: content})
	}
	return msgs, rows.Err()
}

// Sessions returns the distinct session ids present in the archive.
func (t *TranscriptStore) Sessions(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT session_id FROM transcripts
		ORDER BY session_id ASC
	`
	rows, err := t.store.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

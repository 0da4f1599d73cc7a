// Package archive keeps a local SQLite mirror of fetched conversation
// summaries so history survives offline. It is write-through from the
// remote collection and never feeds the live history view.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Archive provides database operations for the local history mirror.
type Archive struct {
	db *sql.DB
}

// Open creates the archive database at dbPath and initializes the
// schema.
func Open(ctx context.Context, dbPath string) (*Archive, error) {
	// WAL mode and a busy timeout keep concurrent reads cheap.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id                   INTEGER PRIMARY KEY,
		user_id              INTEGER NOT NULL,
		pergunta             TEXT NOT NULL,
		resposta_preview     TEXT NOT NULL,
		fonte                TEXT,
		tempo_processamento  REAL NOT NULL DEFAULT 0,
		status               TEXT NOT NULL,
		created_at           TEXT NOT NULL,
		exported_at          INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_user
		ON conversations(user_id, created_at DESC);
	`
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}

// Summary is one archived conversation row.
type Summary struct {
	ID             int
	UserID         int
	Question       string
	AnswerPreview  string
	Source         string
	ProcessingTime float64
	Status         string
	CreatedAt      string
}

// Save upserts summaries keyed by their remote id. Re-exporting the
// same rows is idempotent. Returns the number of rows written.
func (a *Archive) Save(ctx context.Context, items []Summary) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversations
			(id, user_id, pergunta, resposta_preview, fonte, tempo_processamento, status, created_at, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pergunta            = excluded.pergunta,
			resposta_preview    = excluded.resposta_preview,
			fonte               = excluded.fonte,
			tempo_processamento = excluded.tempo_processamento,
			status              = excluded.status,
			created_at          = excluded.created_at,
			exported_at         = excluded.exported_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, s := range items {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.UserID, s.Question, s.AnswerPreview, s.Source,
			s.ProcessingTime, s.Status, s.CreatedAt, now,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert conversation %d: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(items), nil
}

// Count returns how many conversations are archived for a user.
func (a *Archive) Count(ctx context.Context, userID int) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE user_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return n, nil
}

// List returns archived conversations for a user, newest first.
func (a *Archive) List(ctx context.Context, userID, limit, offset int) ([]Summary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, user_id, pergunta, resposta_preview, COALESCE(fonte, ''),
		       tempo_processamento, status, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var items []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Question, &s.AnswerPreview,
			&s.Source, &s.ProcessingTime, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

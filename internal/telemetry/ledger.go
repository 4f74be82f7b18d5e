// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/parrot-tui/internal/model"
)

// ErrClosed is returned when the ledger is used after Close.
var ErrClosed = errors.New("usage ledger is closed")

// =============================================================================
// TYPES
// =============================================================================

// Record is one completion request.
type Record struct {
	ConversationID   string
	Provider         model.Provider
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
	Failed           bool
	ErrorKind        string
	At               time.Time
}

// Total aggregates the records of one provider.
type Total struct {
	Provider         model.Provider
	Requests         int
	Failures         int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger stores Records in SQLite.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	l := &Ledger{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return l, nil
}

func (l *Ledger) initSchema() error {
	if _, err := l.db.Exec(Schema); err != nil {
		return err
	}
	_, err := l.db.Exec(InitMetadata)
	return err
}

// Record appends r. A zero At is stamped with the current time and a zero
// TotalTokens is derived from the other counts.
func (l *Ledger) Record(ctx context.Context, r Record) error {
	if l.db == nil {
		return ErrClosed
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	if r.TotalTokens == 0 {
		r.TotalTokens = r.PromptTokens + r.CompletionTokens
	}

	_, err := l.db.ExecContext(ctx, `
INSERT INTO completions
    (conversation_id, provider, model, prompt_tokens, completion_tokens,
     total_tokens, duration_ms, failed, error_kind, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ConversationID, string(r.Provider), r.Model,
		r.PromptTokens, r.CompletionTokens, r.TotalTokens,
		r.Duration.Milliseconds(), boolToInt(r.Failed), r.ErrorKind,
		r.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// Totals returns one Total per provider that has records, ordered by
// provider name.
func (l *Ledger) Totals(ctx context.Context) ([]Total, error) {
	if l.db == nil {
		return nil, ErrClosed
	}

	rows, err := l.db.QueryContext(ctx, `
SELECT provider,
       COUNT(*),
       COALESCE(SUM(failed), 0),
       COALESCE(SUM(prompt_tokens), 0),
       COALESCE(SUM(completion_tokens), 0),
       COALESCE(SUM(total_tokens), 0),
       COALESCE(SUM(duration_ms), 0)
FROM completions
GROUP BY provider
ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var totals []Total
	for rows.Next() {
		var (
			t        Total
			provider string
			ms       int64
		)
		if err := rows.Scan(&provider, &t.Requests, &t.Failures, &t.PromptTokens,
			&t.CompletionTokens, &t.TotalTokens, &ms); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		t.Provider = model.Provider(provider)
		t.Duration = time.Duration(ms) * time.Millisecond
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

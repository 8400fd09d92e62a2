package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Store caches prepared records in SQLite so training runs can iterate
// them in a stable order without re-tokenizing the raw corpus.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewStore opens or creates a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewID returns a fresh ULID for record identifiers.
func (s *Store) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id         TEXT PRIMARY KEY,
		pos        INTEGER NOT NULL,
		raw_text   TEXT NOT NULL,
		token_ids  TEXT NOT NULL,
		query      TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_pos ON records(pos);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Replace clears the cache and stores the given records. Position is
// assigned from slice order and fixes iteration order for all runs.
func (s *Store) Replace(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range records {
		ids, _ := json.Marshal(r.TokenIDs)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, pos, raw_text, token_ids, query, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.RawText, string(ids), r.Query, now)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of cached records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Records returns up to limit records starting at offset, in position
// order.
func (s *Store) Records(ctx context.Context, offset, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, raw_text, token_ids, query FROM records
		 ORDER BY pos LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var ids string
		if err := rows.Scan(&r.ID, &r.RawText, &ids, &r.Query); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &r.TokenIDs); err != nil {
			return nil, fmt.Errorf("decode token ids for %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

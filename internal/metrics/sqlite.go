package metrics

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
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteSink stores one row per iteration so past runs can be
// inspected after the fact. Write failures are logged and dropped;
// the training loop never sees them.
type SQLiteSink struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteSink opens or creates the run-history database at dbPath.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteSink{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS iterations (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL,
		iteration   INTEGER NOT NULL,
		reward_mean REAL NOT NULL,
		reward_std  REAL NOT NULL,
		rewards     TEXT NOT NULL,
		rows_json   TEXT,
		timing      TEXT NOT NULL,
		optimizer   TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_iterations_run ON iterations(run_id, iteration);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSink) Emit(ctx context.Context, rec IterationRecord) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()

	rewards, _ := json.Marshal(rec.Rewards)
	rows, _ := json.Marshal(rec.Rows)
	timing, _ := json.Marshal(rec.Timing)
	optimizer, _ := json.Marshal(rec.Optimizer)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO iterations (id, run_id, iteration, reward_mean, reward_std, rewards, rows_json, timing, optimizer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.RunID, rec.Iteration, rec.RewardMean, rec.RewardStd,
		string(rewards), string(rows), string(timing), string(optimizer),
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"run_id":    rec.RunID,
			"iteration": rec.Iteration,
		}).Warn("metrics write dropped")
	}
}

// History returns the recorded iterations of a run in order.
func (s *SQLiteSink) History(ctx context.Context, runID string) ([]IterationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, iteration, reward_mean, reward_std, rewards, rows_json, timing, optimizer, created_at
		 FROM iterations WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []IterationRecord
	for rows.Next() {
		var rec IterationRecord
		var rewards, rowsJSON, timing, optimizer sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.RunID, &rec.Iteration, &rec.RewardMean, &rec.RewardStd,
			&rewards, &rowsJSON, &timing, &optimizer, &createdAt); err != nil {
			return nil, err
		}
		if rewards.Valid {
			json.Unmarshal([]byte(rewards.String), &rec.Rewards)
		}
		if rowsJSON.Valid {
			json.Unmarshal([]byte(rowsJSON.String), &rec.Rows)
		}
		if timing.Valid {
			json.Unmarshal([]byte(timing.String), &rec.Timing)
		}
		if optimizer.Valid {
			json.Unmarshal([]byte(optimizer.String), &rec.Optimizer)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the sink's database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

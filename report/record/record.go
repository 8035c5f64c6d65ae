// Package record persists simulation reports to a SQLite database.
package record

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/cachesim/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	cache_size    INTEGER NOT NULL,
	associativity INTEGER NOT NULL,
	block_size    INTEGER NOT NULL,
	num_sets      INTEGER NOT NULL,
	hits          INTEGER NOT NULL,
	misses        INTEGER NOT NULL,
	evictions     INTEGER NOT NULL,
	accesses      INTEGER NOT NULL,
	skipped       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS set_stats (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	set_index INTEGER NOT NULL,
	hits      INTEGER NOT NULL,
	misses    INTEGER NOT NULL,
	PRIMARY KEY (run_id, set_index)
);
`

// Recorder writes reports into a SQLite database.
type Recorder struct {
	*sql.DB
}

// Open opens or creates the database at path and makes sure the tables
// exist.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create record tables: %w", err)
	}

	return &Recorder{DB: db}, nil
}

// Write stores a report and its per-set counters in one transaction.
func (r *Recorder) Write(rep report.Report) (err error) {
	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin record transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID,
		rep.Config.Size,
		rep.Config.Associativity,
		rep.Config.BlockSize,
		rep.NumSets,
		int64(rep.Hits),
		int64(rep.Misses),
		int64(rep.Evictions),
		int64(rep.Run.Accesses),
		int64(rep.Run.Skipped),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rep.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO set_stats VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare set statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range rep.Sets {
		if _, err = stmt.Exec(rep.RunID, s.Index, int64(s.Hits), int64(s.Misses)); err != nil {
			return fmt.Errorf("failed to insert set %d: %w", s.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rep.RunID, err)
	}

	return nil
}

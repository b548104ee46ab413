// Package persistence provides SQLite-based run storage: one row per run
// plus its per-sweep history, backtracking episodes, corridor, energy
// faults, and certification results. The full lattice snapshot goes to the
// JSON report file instead — it can run to millions of rows and is only
// ever read whole.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/cellview/internal/harness"
)

// DB wraps a SQLite connection for run persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		mode TEXT NOT NULL,
		modulus TEXT NOT NULL,
		seed_hex TEXT NOT NULL,
		candidate_count INTEGER NOT NULL,
		state TEXT NOT NULL,
		sweeps INTEGER NOT NULL,
		total_swaps INTEGER NOT NULL,
		backtrack_index REAL NOT NULL,
		fault_count INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		monotonicity REAL NOT NULL,
		clustering REAL NOT NULL,
		swaps INTEGER NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE TABLE IF NOT EXISTS episodes (
		run_id TEXT NOT NULL,
		start_step INTEGER NOT NULL,
		end_step INTEGER NOT NULL,
		peak REAL NOT NULL,
		valley REAL NOT NULL,
		new_peak REAL NOT NULL,
		score REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS corridor (
		run_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		value TEXT NOT NULL,
		type TEXT NOT NULL,
		energy TEXT NOT NULL,
		origin INTEGER NOT NULL,
		final_position INTEGER NOT NULL,
		episode_share REAL NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	CREATE TABLE IF NOT EXISTS certification (
		run_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		value TEXT NOT NULL,
		remainder TEXT NOT NULL,
		gcd TEXT NOT NULL,
		is_factor INTEGER NOT NULL,
		PRIMARY KEY (run_id, rank)
	);

	CREATE TABLE IF NOT EXISTS faults (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		error TEXT NOT NULL,
		count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_run ON history(run_id);
	CREATE INDEX IF NOT EXISTS idx_corridor_run ON corridor(run_id);
	CREATE INDEX IF NOT EXISTS idx_cert_factor ON certification(is_factor);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveOutcome writes one complete run in a single transaction.
func (db *DB) SaveOutcome(o *harness.Outcome) error {
	cfgJSON, err := json.Marshal(o.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, mode, modulus, seed_hex, candidate_count, state,
		 sweeps, total_swaps, backtrack_index, fault_count, elapsed_ms, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, time.Now().UTC().Format(time.RFC3339), o.Config.Mode,
		o.Modulus.String(), o.SeedHex, o.CandidateCount,
		o.Report.State.String(), o.Report.Sweeps, o.Report.TotalSwaps,
		o.Report.BacktrackIndex, len(o.Report.Faults),
		o.Elapsed.Milliseconds(), string(cfgJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, h := range o.Report.History {
		if _, err := tx.Exec(`INSERT INTO history (run_id, step, monotonicity, clustering, swaps)
			VALUES (?, ?, ?, ?, ?)`,
			o.RunID, h.Step, h.Monotonicity, h.Clustering, h.Swaps); err != nil {
			return fmt.Errorf("insert history step %d: %w", h.Step, err)
		}
	}
	for _, ep := range o.Report.Episodes {
		if _, err := tx.Exec(`INSERT INTO episodes (run_id, start_step, end_step, peak, valley, new_peak, score)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.RunID, ep.Start, ep.End, ep.Peak, ep.Valley, ep.NewPeak, ep.Score()); err != nil {
			return fmt.Errorf("insert episode: %w", err)
		}
	}
	for _, c := range o.Corridor {
		if _, err := tx.Exec(`INSERT INTO corridor (run_id, rank, value, type, energy, origin, final_position, episode_share)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.RunID, c.Rank, c.Value.String(), c.Type, c.Energy.Text('g', 30),
			c.Origin, c.FinalPosition, c.EpisodeShare); err != nil {
			return fmt.Errorf("insert corridor rank %d: %w", c.Rank, err)
		}
	}
	for _, r := range o.Certification {
		factor := 0
		if r.IsFactor {
			factor = 1
		}
		if _, err := tx.Exec(`INSERT INTO certification (run_id, rank, value, remainder, gcd, is_factor)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.RunID, r.Rank, r.Value.String(), r.Remainder.String(), r.Gcd.String(), factor); err != nil {
			return fmt.Errorf("insert certification rank %d: %w", r.Rank, err)
		}
	}
	for _, f := range o.Report.Faults {
		if _, err := tx.Exec(`INSERT INTO faults (run_id, step, position, type, value, error, count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.RunID, f.Step, f.Position, f.Type, f.Value, f.Err, f.Count); err != nil {
			return fmt.Errorf("insert fault: %w", err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID             string  `db:"id"`
	CreatedAt      string  `db:"created_at"`
	Mode           string  `db:"mode"`
	State          string  `db:"state"`
	Sweeps         int     `db:"sweeps"`
	TotalSwaps     int     `db:"total_swaps"`
	BacktrackIndex float64 `db:"backtrack_index"`
	CandidateCount int     `db:"candidate_count"`
	FaultCount     int     `db:"fault_count"`
	ElapsedMs      int64   `db:"elapsed_ms"`
}

// ListRuns returns summaries of the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	var out []RunSummary
	err := db.conn.Select(&out, `SELECT id, created_at, mode, state, sweeps,
		total_swaps, backtrack_index, candidate_count, fault_count, elapsed_ms
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// FactorHits returns every certified value that divided the modulus,
// across all stored runs.
func (db *DB) FactorHits() ([]string, error) {
	var out []string
	err := db.conn.Select(&out, `SELECT DISTINCT value FROM certification WHERE is_factor = 1`)
	if err != nil {
		return nil, fmt.Errorf("factor hits: %w", err)
	}
	return out, nil
}

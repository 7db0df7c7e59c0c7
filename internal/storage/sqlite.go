package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matsen/citefeat/internal/feature"
	"github.com/matsen/citefeat/internal/reference"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite feature store.
type DB struct {
	db *sql.DB
}

// Run describes one stored matrix.
type Run struct {
	ID          string `json:"id"`
	Split       string `json:"split"`
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
	CreatedAt   string `json:"created_at"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			split TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		-- Column names in vector order
		CREATE TABLE IF NOT EXISTS run_columns (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		-- One row per pair; values_json holds the vector
		CREATE TABLE IF NOT EXISTS features (
			run_id TEXT NOT NULL REFERENCES runs(id),
			row_index INTEGER NOT NULL,
			source_id INTEGER NOT NULL,
			target_id INTEGER NOT NULL,
			label INTEGER,
			values_json TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index)
		);

		CREATE INDEX IF NOT EXISTS idx_features_pair ON features(source_id, target_id);
	`
	_, err := db.Exec(schema)
	return err
}

// WriteRun stores a matrix under a new run ID and returns the ID.
func (d *DB) WriteRun(split string, m *feature.Matrix, pairs []reference.Pair) (string, error) {
	if m.Rows() != len(pairs) {
		return "", fmt.Errorf("%w: %d rows, %d pairs", ErrRowMismatch, m.Rows(), len(pairs))
	}

	runID := uuid.NewString()

	tx, err := d.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, split, fingerprint, row_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, split, m.Schema().Fingerprint(), m.Rows(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	colStmt, err := tx.Prepare(`INSERT INTO run_columns (run_id, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing columns insert: %w", err)
	}
	defer colStmt.Close()

	for i, name := range m.Schema().Names() {
		if _, err := colStmt.Exec(runID, i, name); err != nil {
			return "", fmt.Errorf("inserting column %s: %w", name, err)
		}
	}

	rowStmt, err := tx.Prepare(`
		INSERT INTO features (run_id, row_index, source_id, target_id, label, values_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing features insert: %w", err)
	}
	defer rowStmt.Close()

	for r, p := range pairs {
		valuesJSON, err := json.Marshal(m.Row(r))
		if err != nil {
			return "", fmt.Errorf("marshaling row %d: %w", r, err)
		}
		var label sql.NullInt64
		if p.Labeled {
			label = sql.NullInt64{Int64: int64(p.Label), Valid: true}
		}
		if _, err := rowStmt.Exec(runID, r, p.SourceID, p.TargetID, label, string(valuesJSON)); err != nil {
			return "", fmt.Errorf("inserting row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists stored runs, oldest first.
func (d *DB) Runs() ([]Run, error) {
	rows, err := d.db.Query(`SELECT id, split, fingerprint, row_count, created_at FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Split, &r.Fingerprint, &r.Rows, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID.
func (d *DB) GetRun(id string) (*Run, error) {
	var r Run
	err := d.db.QueryRow(`SELECT id, split, fingerprint, row_count, created_at FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Split, &r.Fingerprint, &r.Rows, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return &r, nil
}

// Columns returns the column names of a run in vector order.
func (d *DB) Columns(runID string) ([]string, error) {
	rows, err := d.db.Query(`SELECT name FROM run_columns WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Records returns the rows of a run in input order.
func (d *DB) Records(runID string) ([]Record, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, label, values_json
		FROM features WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			label      sql.NullInt64
			valuesJSON string
		)
		if err := rows.Scan(&rec.Source, &rec.Target, &label, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scanning features: %w", err)
		}
		if label.Valid {
			l := int(label.Int64)
			rec.Label = &l
		}
		if err := json.Unmarshal([]byte(valuesJSON), &rec.Features); err != nil {
			return nil, fmt.Errorf("parsing values for row of %d -> %d: %w", rec.Source, rec.Target, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

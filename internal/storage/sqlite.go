package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/san-kum/indecision/internal/experiment"
)

// SQLiteStore keeps run metadata as JSON blobs and theta series as rows in
// a single database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		particle TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		metadata BLOB NOT NULL
	)`); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS thetas (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		time REAL NOT NULL,
		theta REAL NOT NULL,
		PRIMARY KEY (run_id, idx)
	)`); err != nil {
		return fmt.Errorf("create thetas table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(res *experiment.Result) (id string, retErr error) {
	meta := newMetadata(res)
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`INSERT INTO runs (id, particle, created_at, metadata) VALUES (?, ?, ?, ?)`,
		meta.ID, meta.Particle, meta.Timestamp.UnixNano(), payload); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO thetas (run_id, idx, time, theta) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for i := range res.Thetas {
		if _, err := stmt.Exec(meta.ID, i, res.Times[i], res.Thetas[i]); err != nil {
			return "", fmt.Errorf("insert theta %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT metadata FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var meta RunMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT metadata FROM runs WHERE id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, os.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadThetas(runID string) ([]float64, []float64, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(`SELECT time, theta FROM thetas WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("select thetas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	times := make([]float64, 0)
	thetas := make([]float64, 0)
	for rows.Next() {
		var t, theta float64
		if err := rows.Scan(&t, &theta); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		times = append(times, t)
		thetas = append(thetas, theta)
	}
	return times, thetas, rows.Err()
}

// Delete removes a run and its theta series.
func (s *SQLiteStore) Delete(runID string) error {
	_, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	return err
}

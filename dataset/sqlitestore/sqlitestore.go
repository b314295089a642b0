// Package sqlitestore provides SQLite-based persistence for acquisitions.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bpowers/msview/dataset"
)

// SQLiteStore implements dataset.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ dataset.Store = (*SQLiteStore)(nil)

// New creates a new SQLite-based store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS acquisitions (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    scans       INTEGER NOT NULL,
    peaks       INTEGER NOT NULL,
    created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scans (
    acquisition_id  TEXT NOT NULL REFERENCES acquisitions(id) ON DELETE CASCADE,
    scan            INTEGER NOT NULL,
    retention_time  INTEGER NOT NULL,
    mass_to_charge  TEXT NOT NULL,
    signal          TEXT NOT NULL,
    PRIMARY KEY (acquisition_id, scan)
);
`
	_, err := s.db.Exec(schema)
	return err
}

func encodeList[T any](values []T) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList[T any](src string) ([]T, error) {
	values := []T{}
	if src == "" || src == "[]" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(src), &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Save implements dataset.Store.
func (s *SQLiteStore) Save(name string, ds *dataset.Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("save acquisition: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return "", err
	}

	id := dataset.NewAcquisitionID()
	err := s.ExecInTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO acquisitions (id, name, scans, peaks, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, name, ds.Len(), ds.Peaks(), s.now(),
		); err != nil {
			return fmt.Errorf("insert acquisition: %w", err)
		}

		stmt, err := tx.Prepare(
			`INSERT INTO scans (acquisition_id, scan, retention_time, mass_to_charge, signal) VALUES (?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("prepare scan insert: %w", err)
		}
		defer stmt.Close()

		for i := 0; i < ds.Len(); i++ {
			scan := ds.Scan(i)
			mzJSON, err := encodeList(scan.MassToCharge)
			if err != nil {
				return fmt.Errorf("encode mass_to_charge of scan %d: %w", i, err)
			}
			signalJSON, err := encodeList(scan.Signal)
			if err != nil {
				return fmt.Errorf("encode signal of scan %d: %w", i, err)
			}
			if _, err := stmt.Exec(id, i, scan.RetentionTime, mzJSON, signalJSON); err != nil {
				return fmt.Errorf("insert scan %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Load implements dataset.Store.
func (s *SQLiteStore) Load(id string) (*dataset.Dataset, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT retention_time, mass_to_charge, signal FROM scans WHERE acquisition_id = ? ORDER BY scan`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var (
		retentionTime []int32
		massToCharge  [][]float32
		signal        [][]uint16
	)
	for rows.Next() {
		var rt int32
		var mzJSON, signalJSON string
		if err := rows.Scan(&rt, &mzJSON, &signalJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		mz, err := decodeList[float32](mzJSON)
		if err != nil {
			return nil, fmt.Errorf("decode mass_to_charge of scan %d: %w", len(retentionTime), err)
		}
		sig, err := decodeList[uint16](signalJSON)
		if err != nil {
			return nil, fmt.Errorf("decode signal of scan %d: %w", len(retentionTime), err)
		}
		retentionTime = append(retentionTime, rt)
		massToCharge = append(massToCharge, mz)
		signal = append(signal, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	return dataset.New(retentionTime, massToCharge, signal)
}

// Get implements dataset.Store.
func (s *SQLiteStore) Get(id string) (dataset.Acquisition, error) {
	var a dataset.Acquisition
	err := s.db.QueryRow(
		`SELECT id, name, scans, peaks, created_at FROM acquisitions WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.Name, &a.Scans, &a.Peaks, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dataset.Acquisition{}, fmt.Errorf("%w: acquisition %s", dataset.ErrNotFound, id)
		}
		return dataset.Acquisition{}, fmt.Errorf("query acquisition: %w", err)
	}
	return a, nil
}

// List implements dataset.Store.
func (s *SQLiteStore) List() ([]dataset.Acquisition, error) {
	rows, err := s.db.Query(`SELECT id, name, scans, peaks, created_at FROM acquisitions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query acquisitions: %w", err)
	}
	defer rows.Close()

	var acquisitions []dataset.Acquisition
	for rows.Next() {
		var a dataset.Acquisition
		if err := rows.Scan(&a.ID, &a.Name, &a.Scans, &a.Peaks, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan acquisition: %w", err)
		}
		acquisitions = append(acquisitions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate acquisitions: %w", err)
	}

	return acquisitions, nil
}

// Delete implements dataset.Store.
func (s *SQLiteStore) Delete(id string) error {
	return s.ExecInTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM scans WHERE acquisition_id = ?`, id); err != nil {
			return fmt.Errorf("delete scans: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM acquisitions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete acquisition: %w", err)
		}
		return nil
	})
}

// Close implements dataset.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ExecInTransaction executes a function within a transaction.
func (s *SQLiteStore) ExecInTransaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Package store persists extracted forecast snapshots in SQLite so that a
// loaded edition can be served again without re-downloading or re-parsing
// its workbook.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PolicyEngine/forecast-sources/internal/fetch"
	"github.com/PolicyEngine/forecast-sources/internal/forecast"
	"github.com/PolicyEngine/forecast-sources/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotStored reports an edition absent from the store.
var ErrNotStored = errors.New("edition not stored")

// Store is the SQLite persistence layer.
type Store struct {
	db *sql.DB
}

// EditionInfo summarizes one stored edition.
type EditionInfo struct {
	Edition   string    `json:"edition"`
	SourceURL string    `json:"sourceUrl"`
	LoadedAt  time.Time `json:"loadedAt"`
	Metrics   int       `json:"metrics"`
}

// New opens (creating if needed) the store at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite works best over a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces any stored values for the snapshot's edition.
func (s *Store) SaveSnapshot(snap *forecast.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sourceURL, _ := fetch.EditionURL(snap.Edition())
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO editions (edition, source_url, loaded_at) VALUES (?, ?, ?)`,
		snap.Edition(), sourceURL, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("save edition: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM forecast_values WHERE edition = ?`, snap.Edition()); err != nil {
		return fmt.Errorf("clear previous values: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO forecast_values (edition, metric, year, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for metric, series := range snap.Values() {
		for year, value := range series {
			if _, err := stmt.Exec(snap.Edition(), metric, year, value); err != nil {
				return fmt.Errorf("save value %s/%d: %w", metric, year, err)
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot rebuilds a snapshot from stored values. Returns ErrNotStored
// when the edition has never been saved.
func (s *Store) LoadSnapshot(edition string) (*forecast.Snapshot, error) {
	var stored string
	err := s.db.QueryRow(`SELECT edition FROM editions WHERE edition = ?`, edition).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotStored, edition)
	}
	if err != nil {
		return nil, fmt.Errorf("query edition: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT metric, year, value FROM forecast_values WHERE edition = ?`, edition,
	)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	series := make(map[string]model.Series)
	for rows.Next() {
		var metric string
		var year int
		var value float64
		if err := rows.Scan(&metric, &year, &value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		if _, ok := series[metric]; !ok {
			series[metric] = make(model.Series)
		}
		series[metric][year] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}

	return forecast.NewSnapshot(edition, series), nil
}

// ListEditions returns the stored editions, most recently loaded first.
func (s *Store) ListEditions() ([]EditionInfo, error) {
	rows, err := s.db.Query(`
		SELECT e.edition, e.source_url, e.loaded_at, COUNT(DISTINCT v.metric)
		FROM editions e
		LEFT JOIN forecast_values v ON v.edition = e.edition
		GROUP BY e.edition
		ORDER BY e.loaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query editions: %w", err)
	}
	defer rows.Close()

	infos := make([]EditionInfo, 0)
	for rows.Next() {
		var info EditionInfo
		if err := rows.Scan(&info.Edition, &info.SourceURL, &info.LoadedAt, &info.Metrics); err != nil {
			return nil, fmt.Errorf("scan edition: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// Ensure SQLiteVersionStore implements domain.VersionStore
var _ domain.VersionStore = (*SQLiteVersionStore)(nil)

// SQLiteVersionStore keeps one row per manifest URL in manifest_versions
type SQLiteVersionStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// OpenSQLite opens (creating if needed) the database at path, or an
// in-memory database for "" and ":memory:", and applies migrations
func OpenSQLite(ctx context.Context, path string, logger *utils.Logger) (*SQLiteVersionStore, error) {
	dsn := path
	if path == "" || path == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting database (ping): %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := NewSQLiteVersionStore(db, logger)
	s.logger.Debug().Str("path", dsn).Msg("version store ready")
	return s, nil
}

// NewSQLiteVersionStore wraps an already migrated database
func NewSQLiteVersionStore(db *sql.DB, logger *utils.Logger) *SQLiteVersionStore {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &SQLiteVersionStore{db: db, logger: logger.WithComponent("sqlite-versions")}
}

// Get returns the record for manifestURL, or false if none exists
func (s *SQLiteVersionStore) Get(ctx context.Context, manifestURL string) (domain.VersionRecord, bool, error) {
	query, args, err := getVersionQuery(manifestURL)
	if err != nil {
		return domain.VersionRecord{}, false, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanVersion(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VersionRecord{}, false, nil
	}
	if err != nil {
		return domain.VersionRecord{}, false, fmt.Errorf("get version for %s: %w", manifestURL, err)
	}
	return rec, true, nil
}

// Put inserts or updates the record for rec.ManifestURL
func (s *SQLiteVersionStore) Put(ctx context.Context, rec domain.VersionRecord) error {
	if rec.ManifestURL == "" {
		return fmt.Errorf("put version: %w", domain.ErrInvalidURL)
	}

	query, args, err := upsertVersionQuery(rec)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put version for %s: %w", rec.ManifestURL, err)
	}
	s.logger.Debug().Str("manifest", rec.ManifestURL).Str("version", rec.Version).Msg("version stored")
	return nil
}

// List returns every record ordered by manifest URL
func (s *SQLiteVersionStore) List(ctx context.Context) ([]domain.VersionRecord, error) {
	query, args, err := listVersionsQuery()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []domain.VersionRecord
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return records, nil
}

// Delete removes the record for manifestURL
func (s *SQLiteVersionStore) Delete(ctx context.Context, manifestURL string) error {
	query, args, err := deleteVersionQuery(manifestURL)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete version for %s: %w", manifestURL, err)
	}
	return nil
}

// Close releases the database
func (s *SQLiteVersionStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (domain.VersionRecord, error) {
	var (
		rec       domain.VersionRecord
		updatedAt int64
	)
	if err := row.Scan(&rec.ManifestURL, &rec.Version, &updatedAt); err != nil {
		return domain.VersionRecord{}, err
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}

package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-stage/internal/aspect"
	"media-stage/internal/logging"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when no snapshot exists for an attachment.
var ErrNotFound = errors.New("snapshot not found")

// ErrInvalidRatio is returned when recording a non-positive or non-finite ratio.
var ErrInvalidRatio = errors.New("invalid aspect ratio")

// Entry is one persisted snapshot.
type Entry struct {
	AttachmentID string       `json:"attachmentId"`
	Ratio        aspect.Ratio `json:"ratio"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
	Source       string       `json:"source,omitempty"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Snapshot converts the entry to the resolver's input type.
func (e Entry) Snapshot() aspect.Snapshot {
	return aspect.Snapshot{AttachmentID: e.AttachmentID, Ratio: e.Ratio}
}

// Backend is a persistent snapshot store.
type Backend interface {
	Get(ctx context.Context, attachmentID string) (Entry, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, attachmentID string) error
}

// SQLiteStore persists snapshots in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

var _ Backend = (*SQLiteStore)(nil)

// OpenSQLite opens (and creates if needed) the snapshot database at dbPath.
// The parent directory must already exist and be writable.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	logging.Info("Snapshot database path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close snapshot database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to snapshot database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close snapshot database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	logging.Info("Snapshot database initialized successfully at %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS aspect_snapshots (
		attachment_id TEXT PRIMARY KEY,
		ratio REAL NOT NULL CHECK (ratio > 0),
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_aspect_snapshots_updated_at ON aspect_snapshots(updated_at);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the snapshot for attachmentID or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, attachmentID string) (Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT attachment_id, ratio, width, height, source, updated_at
		 FROM aspect_snapshots WHERE attachment_id = ?`, attachmentID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get snapshot %s: %w", attachmentID, err)
	}
	return entry, nil
}

// Put inserts or replaces a snapshot. Entries with an invalid ratio are rejected.
func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	if entry.AttachmentID == "" {
		return errors.New("snapshot has no attachment id")
	}
	if !entry.Ratio.Valid() {
		return fmt.Errorf("put snapshot %s (%v): %w", entry.AttachmentID, float64(entry.Ratio), ErrInvalidRatio)
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aspect_snapshots (attachment_id, ratio, width, height, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(attachment_id) DO UPDATE SET
			ratio = excluded.ratio,
			width = excluded.width,
			height = excluded.height,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		entry.AttachmentID, float64(entry.Ratio), entry.Width, entry.Height, entry.Source, entry.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", entry.AttachmentID, err)
	}
	return nil
}

// Delete removes the snapshot for attachmentID. Deleting a missing snapshot
// returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, attachmentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM aspect_snapshots WHERE attachment_id = ?`, attachmentID)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", attachmentID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns up to limit snapshots, most recently updated first.
// limit <= 0 returns all of them.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT attachment_id, ratio, width, height, source, updated_at
		FROM aspect_snapshots ORDER BY updated_at DESC, attachment_id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close snapshot rows: %v", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored snapshots.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM aspect_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// Purge removes every snapshot and returns how many were deleted.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM aspect_snapshots`)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry   Entry
		ratio   float64
		updated int64
	)
	if err := row.Scan(&entry.AttachmentID, &ratio, &entry.Width, &entry.Height, &entry.Source, &updated); err != nil {
		return Entry{}, err
	}
	entry.Ratio = aspect.Ratio(ratio)
	entry.UpdatedAt = time.Unix(updated, 0)
	return entry, nil
}

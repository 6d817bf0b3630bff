package replay

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore keeps nonces in a local SQLite table. An expired row is
// overwritten by the next insert of the same nonce and removed by Prune.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once
	now       func() time.Time

	rememberStmt *sql.Stmt
	pruneStmt    *sql.Stmt
}

// NewSQLiteStore opens (or creates) the database at cfg.Path.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("replay: sqlite path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("replay: create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("replay: open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, now: time.Now}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("replay: initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("replay: prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS nonces (
		nonce TEXT PRIMARY KEY,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nonces_expires_at ON nonces(expires_at);
	`)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	// The update only fires when the existing row has expired, so a
	// live nonce leaves zero rows affected.
	s.rememberStmt, err = s.db.Prepare(`
		INSERT INTO nonces (nonce, expires_at) VALUES (?, ?)
		ON CONFLICT (nonce) DO UPDATE SET expires_at = excluded.expires_at
		WHERE nonces.expires_at <= ?
	`)
	if err != nil {
		return fmt.Errorf("remember statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM nonces WHERE expires_at <= ?`)
	if err != nil {
		return fmt.Errorf("prune statement: %w", err)
	}

	return nil
}

// Remember implements Store.
func (s *SQLiteStore) Remember(ctx context.Context, nonce string, expires time.Time) (bool, error) {
	res, err := s.rememberStmt.ExecContext(ctx, nonce, expires.UnixMilli(), s.now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("replay: record nonce: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("replay: record nonce: %w", err)
	}
	return n == 1, nil
}

// Prune implements Pruner.
func (s *SQLiteStore) Prune(ctx context.Context, now time.Time) (int, error) {
	res, err := s.pruneStmt.ExecContext(ctx, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("replay: prune nonces: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("replay: prune nonces: %w", err)
	}
	return int(n), nil
}

// Ping implements Pinger.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.rememberStmt != nil {
			s.rememberStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}

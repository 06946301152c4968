// Package sqlite provides the SQLite implementation of the warm-boot
// store.
//
// The database is opened in WAL (Write-Ahead Logging) mode for crash
// recovery: a warm boot must be able to read back every object the
// previous session committed. Individual methods execute in autocommit
// mode; each is a single statement and therefore atomic by itself.
//
// All SQL uses prepared statements: the SQL is parsed and compiled once
// at open, and subsequent executions reuse the compiled representation.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

//go:embed schema.sql
var schemaSQL string

// sqliteStore implements store.Store using SQLite.
type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger

	stmtBeginSession   *sql.Stmt
	stmtCurrentSession *sql.Stmt
	stmtSaveObject     *sql.Stmt
	stmtDeleteObject   *sql.Stmt
	stmtListObjects    *sql.Stmt
}

// New opens (creating if necessary) the warm-boot store at dbPath.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "db", dbPath)

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driverName, dsn(dbPath, [][2]string{{"journal_mode", "WAL"}, {"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &sqliteStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.Info("opened database", "path", dbPath)
	return s, nil
}

// NewInMemory creates an in-memory store for testing.
func NewInMemory(ctx context.Context, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "db", ":memory:")

	db, err := sql.Open(driverName, dsn(":memory:", [][2]string{{"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would otherwise see its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)

	s := &sqliteStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

func (s *sqliteStore) prepareStatements() error {
	var err error

	const sqlBeginSession = `
		INSERT INTO sessions (id, session_uuid, chip_family, switch_id, started_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  session_uuid = excluded.session_uuid,
		  chip_family = excluded.chip_family,
		  switch_id = excluded.switch_id,
		  started_at = excluded.started_at`
	if s.stmtBeginSession, err = s.db.Prepare(sqlBeginSession); err != nil {
		return fmt.Errorf("prepare BeginSession: %w", err)
	}

	const sqlCurrentSession = `
		SELECT session_uuid, chip_family, switch_id, started_at FROM sessions WHERE id = 1`
	if s.stmtCurrentSession, err = s.db.Prepare(sqlCurrentSession); err != nil {
		return fmt.Errorf("prepare CurrentSession: %w", err)
	}

	const sqlSaveObject = `
		INSERT INTO objects (category, object_key, key_kind, switch_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category, object_key) DO UPDATE SET
		  key_kind = excluded.key_kind,
		  switch_id = excluded.switch_id,
		  created_at = excluded.created_at`
	if s.stmtSaveObject, err = s.db.Prepare(sqlSaveObject); err != nil {
		return fmt.Errorf("prepare SaveObject: %w", err)
	}

	const sqlDeleteObject = "DELETE FROM objects WHERE category = ? AND object_key = ?"
	if s.stmtDeleteObject, err = s.db.Prepare(sqlDeleteObject); err != nil {
		return fmt.Errorf("prepare DeleteObject: %w", err)
	}

	const sqlListObjects = `
		SELECT object_key, key_kind, switch_id, created_at
		FROM objects WHERE category = ? ORDER BY created_at, object_key`
	if s.stmtListObjects, err = s.db.Prepare(sqlListObjects); err != nil {
		return fmt.Errorf("prepare ListObjects: %w", err)
	}

	return nil
}

func (s *sqliteStore) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.stmtBeginSession,
		s.stmtCurrentSession,
		s.stmtSaveObject,
		s.stmtDeleteObject,
		s.stmtListObjects,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

func (s *sqliteStore) BeginSession(ctx context.Context, sess store.Session) error {
	_, err := s.stmtBeginSession.ExecContext(ctx,
		sess.UUID.String(),
		sess.Chip,
		int64(sess.SwitchID),
		sess.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	s.logger.Debug("recorded session", "session", sess.UUID, "chip", sess.Chip)
	return nil
}

func (s *sqliteStore) CurrentSession(ctx context.Context) (store.Session, error) {
	var (
		sess      store.Session
		uuidStr   string
		switchID  int64
		startedAt string
	)
	err := s.stmtCurrentSession.QueryRowContext(ctx).Scan(&uuidStr, &sess.Chip, &switchID, &startedAt)
	if err == sql.ErrNoRows {
		return store.Session{}, store.ErrNotFound
	}
	if err != nil {
		return store.Session{}, fmt.Errorf("current session: %w", err)
	}

	if sess.UUID, err = uuid.Parse(uuidStr); err != nil {
		return store.Session{}, fmt.Errorf("current session: malformed uuid: %w", err)
	}
	if sess.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return store.Session{}, fmt.Errorf("current session: malformed timestamp: %w", err)
	}
	sess.SwitchID = sdk.ObjectID(switchID)
	return sess, nil
}

func (s *sqliteStore) SaveObject(ctx context.Context, r store.Record) error {
	_, err := s.stmtSaveObject.ExecContext(ctx,
		r.Category.String(),
		r.Key,
		r.KeyKind,
		int64(r.SwitchID),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save object %s/%s: %w", r.Category, r.Key, err)
	}
	return nil
}

func (s *sqliteStore) DeleteObject(ctx context.Context, category sdk.ObjectCategory, key string) error {
	res, err := s.stmtDeleteObject.ExecContext(ctx, category.String(), key)
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", category, key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *sqliteStore) ListObjects(ctx context.Context, category sdk.ObjectCategory) ([]store.Record, error) {
	rows, err := s.stmtListObjects.QueryContext(ctx, category.String())
	if err != nil {
		return nil, fmt.Errorf("list objects %s: %w", category, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		r := store.Record{Category: category}
		var (
			switchID  int64
			createdAt string
		)
		if err := rows.Scan(&r.Key, &r.KeyKind, &switchID, &createdAt); err != nil {
			return nil, fmt.Errorf("list objects %s: %w", category, err)
		}
		r.SwitchID = sdk.ObjectID(switchID)
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list objects %s: malformed timestamp: %w", category, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

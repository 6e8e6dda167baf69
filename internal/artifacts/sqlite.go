// Package artifacts provides a SQLite-backed artifact registry so generated
// document references survive process restarts.
package artifacts

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// SQLiteRegistry implements collab.ArtifactRegistry using SQLite.
type SQLiteRegistry struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteRegistry opens or creates the registry database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteRegistry(dbPath string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	r := &SQLiteRegistry{db: db}
	if err := r.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return r, nil
}

func (r *SQLiteRegistry) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		doc_type TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		destination_path TEXT,
		link TEXT,
		class_code TEXT,
		requester TEXT,
		created_at INTEGER NOT NULL,
		modified_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_doc_type ON artifacts(doc_type);
	CREATE INDEX IF NOT EXISTS idx_artifacts_class_code ON artifacts(class_code);
	CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status);
	`
	_, err := r.db.Exec(schema)
	return err
}

// FindByID returns the stored record, or (nil, nil) when no record exists.
func (r *SQLiteRegistry) FindByID(ctx context.Context, id string) (*collab.ArtifactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx,
		"SELECT id, doc_type, name, status, destination_path, link, class_code, requester, created_at, modified_at FROM artifacts WHERE id = ?",
		id,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError("query artifact").WithCause(err).WithContext("artifact", id).Build()
	}
	return rec, nil
}

// Insert stores a new record. Inserting an id that already exists fails.
func (r *SQLiteRegistry) Insert(ctx context.Context, rec *collab.ArtifactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.ModifiedAt = now

	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM artifacts WHERE id = ?", rec.ID).Scan(&exists)
	if err != nil {
		return errors.StorageError("query artifact").WithCause(err).WithContext("artifact", rec.ID).Build()
	}
	if exists > 0 {
		return errors.NewError(errors.CategoryAlreadyExists, fmt.Sprintf("artifact %s already registered", rec.ID)).
			WithContext("artifact", rec.ID).Build()
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO artifacts (id, doc_type, name, status, destination_path, link, class_code, requester, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Type, rec.Name, rec.Status, rec.DestinationPath, rec.Link, rec.ClassCode, rec.Requester,
		rec.CreatedAt.Unix(), rec.ModifiedAt.Unix(),
	)
	if err != nil {
		return errors.StorageError("insert artifact").WithCause(err).WithContext("artifact", rec.ID).Build()
	}
	return nil
}

// Update replaces an existing record. The original created_at is preserved.
func (r *SQLiteRegistry) Update(ctx context.Context, id string, rec *collab.ArtifactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ModifiedAt = time.Now()
	res, err := r.db.ExecContext(ctx,
		"UPDATE artifacts SET doc_type = ?, name = ?, status = ?, destination_path = ?, link = ?, class_code = ?, requester = ?, modified_at = ? WHERE id = ?",
		rec.Type, rec.Name, rec.Status, rec.DestinationPath, rec.Link, rec.ClassCode, rec.Requester,
		rec.ModifiedAt.Unix(), id,
	)
	if err != nil {
		return errors.StorageError("update artifact").WithCause(err).WithContext("artifact", id).Build()
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.StorageError("update artifact").WithCause(err).WithContext("artifact", id).Build()
	}
	if n == 0 {
		return errors.NotFoundError(fmt.Sprintf("artifact %s not registered", id)).WithContext("artifact", id).Build()
	}
	return nil
}

// ListByClass returns records for a class code, newest first.
func (r *SQLiteRegistry) ListByClass(ctx context.Context, classCode string) ([]collab.ArtifactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, doc_type, name, status, destination_path, link, class_code, requester, created_at, modified_at FROM artifacts WHERE class_code = ? ORDER BY created_at DESC",
		classCode,
	)
	if err != nil {
		return nil, errors.StorageError("query artifacts").WithCause(err).WithContext("class", classCode).Build()
	}
	defer rows.Close()

	var out []collab.ArtifactRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.StorageError("scan artifact").WithCause(err).Build()
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError("iterate artifacts").WithCause(err).Build()
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*collab.ArtifactRecord, error) {
	var rec collab.ArtifactRecord
	var createdUnix, modifiedUnix int64
	err := row.Scan(&rec.ID, &rec.Type, &rec.Name, &rec.Status, &rec.DestinationPath, &rec.Link,
		&rec.ClassCode, &rec.Requester, &createdUnix, &modifiedUnix)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdUnix, 0)
	rec.ModifiedAt = time.Unix(modifiedUnix, 0)
	return &rec, nil
}

// Close closes the database connection.
func (r *SQLiteRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

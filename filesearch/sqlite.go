package filesearch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/docfetch/dbopen"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	store        TEXT NOT NULL REFERENCES stores(name) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	name         TEXT NOT NULL,
	display_name TEXT NOT NULL,
	uri          TEXT NOT NULL,
	mime_type    TEXT NOT NULL,
	size_bytes   INTEGER NOT NULL,
	uploaded_at  INTEGER NOT NULL,
	PRIMARY KEY (store, seq)
);`

// SQLiteRepository keeps the manifest in an SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens (and if needed creates) the database at path.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

// NewSQLiteRepository wraps an open database, creating the tables if needed.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("filesearch: schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, name string, created time.Time) (*Store, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stores (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, created.UnixMilli())
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	st, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return st, ErrStoreExists
	}
	return st, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Store, error) {
	var created int64
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM stores WHERE name = ?`, name).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	files, err := r.files(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Store{Name: name, Created: time.UnixMilli(created).UTC(), Files: files}, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Store, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Store, 0, len(names))
	for _, n := range names {
		st, err := r.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}

func (r *SQLiteRepository) files(ctx context.Context, store string) ([]FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, display_name, uri, mime_type, size_bytes, uploaded_at
		FROM files WHERE store = ? ORDER BY seq`, store)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []FileRecord{}
	for rows.Next() {
		var f FileRecord
		var uploaded int64
		if err := rows.Scan(&f.Name, &f.DisplayName, &f.URI, &f.MIMEType, &f.SizeBytes, &uploaded); err != nil {
			return nil, err
		}
		f.UploadedAt = time.UnixMilli(uploaded).UTC()
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) AddFile(ctx context.Context, store string, f FileRecord) error {
	return dbopen.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM stores WHERE name = ?`, store).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStoreNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO files (store, seq, name, display_name, uri, mime_type, size_bytes, uploaded_at)
			VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM files WHERE store = ?), ?, ?, ?, ?, ?, ?)`,
			store, store, f.Name, f.DisplayName, f.URI, f.MIMEType, f.SizeBytes, f.UploadedAt.UnixMilli())
		return err
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	return dbopen.RunTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrStoreNotFound
		}
		// foreign_keys is per connection; do not rely on the cascade
		_, err = tx.ExecContext(ctx, `DELETE FROM files WHERE store = ?`, name)
		return err
	})
}

func (r *SQLiteRepository) Close() error { return r.db.Close() }

// OpenRepository opens the manifest at path, choosing SQLite for .db and
// .sqlite files and JSON otherwise.
func OpenRepository(path string) (Repository, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLiteRepository(path)
	default:
		return NewJSONRepository(path), nil
	}
}

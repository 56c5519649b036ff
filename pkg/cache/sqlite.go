package cache

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

func buildCreateEntriesTable() string {
	return `CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL);`
}

func buildSelectBlobCommand() string {
	return `SELECT blob FROM cache_entries WHERE key = ?`
}

func buildUpsertCommand() string {
	return `INSERT OR REPLACE INTO cache_entries (key, blob, size, created_at) VALUES (?, ?, ?, ?)`
}

func buildListCommand() (string, func(*sql.Rows) ([]Entry, error)) {
	return `SELECT key, size, created_at FROM cache_entries ORDER BY key`, processListRows
}

func buildDeleteCommand() string {
	return `DELETE FROM cache_entries WHERE key = ?`
}

func processListRows(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var key string
		var size int64
		var created int64
		if err := rows.Scan(&key, &size, &created); err != nil {
			return entries, err
		}
		entries = append(entries, Entry{Key: key, Size: size, Created: time.Unix(0, created)})
	}
	return entries, rows.Err()
}

// SQLiteStore keeps every blob as a row of the cache_entries table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if _, err := db.Exec(buildCreateEntriesTable()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init cache table")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow(buildSelectBlobCommand(), key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return blob, err
}

func (s *SQLiteStore) Put(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(buildUpsertCommand(), key, blob, len(blob), time.Now().UnixNano())
	return err
}

func (s *SQLiteStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, read := buildListCommand()
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	return read(rows)
}

func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(buildDeleteCommand(), key)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Close()
}

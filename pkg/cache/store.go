package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrInvalidKey = errors.New("invalid cache key")
)

// Entry describes a stored blob.
type Entry struct {
	Key     string
	Size    int64
	Created time.Time
}

// Store keeps opaque session blobs by key.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, blob []byte) error
	List() ([]Entry, error)
	Delete(key string) error
	Close() error
}

// Open creates the cache directory if needed and opens the store of backend.
func Open(backend, dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "cache.db"))
	case BackendBolt:
		return NewBoltStore(filepath.Join(dir, "cache.bolt"))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// FileStore writes one file per key.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(fs.dir, key), nil
}

func (fs *FileStore) Get(key string) ([]byte, error) {
	p, err := fs.path(key)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return blob, err
}

func (fs *FileStore) Put(key string, blob []byte) error {
	p, err := fs.path(key)
	if err != nil {
		return err
	}
	return os.WriteFile(p, blob, 0o644)
}

func (fs *FileStore) List() ([]Entry, error) {
	files, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !isKey(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: f.Name(), Size: info.Size(), Created: info.ModTime()})
	}
	sortEntries(entries)
	return entries, nil
}

func (fs *FileStore) Delete(key string) error {
	p, err := fs.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (fs *FileStore) Close() error {
	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
}

package commitinfo

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Store persists the resolved entries of one working tree
type Store interface {
	// Load returns the entries saved for commitID. A missing file yields
	// an empty map; a file for another commit yields ErrCommitMismatch.
	Load(commitID string) (map[string]Info, error)

	// Save replaces the stored entries
	Save(commitID string, entries map[string]Info) error
}

// StoreFactory opens the store for a tree root
type StoreFactory func(root string) (Store, error)

// FileName returns the cache file name for a tree root
func FileName(root string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(filepath.Clean(root)))
	return fmt.Sprintf("%016x.data", h.Sum64())
}

// FileStore keeps one binary cache file per tree. Access is serialized
// within the process by a mutex and across processes by a lock file.
type FileStore struct {
	mu    sync.Mutex
	flock *flock.Flock
	path  string
}

// NewFileStore creates the store for root under dir
func NewFileStore(dir, root string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(dir, FileName(root))
	return &FileStore{
		path:  path,
		flock: flock.New(path + ".lock"),
	}, nil
}

// FileStoreFactory returns a factory placing every tree's file under dir
func FileStoreFactory(dir string) StoreFactory {
	return func(root string) (Store, error) {
		return NewFileStore(dir, root)
	}
}

// Path returns the cache file location
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store
func (s *FileStore) Load(commitID string) (map[string]Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer func() {
		_ = s.flock.Unlock()
	}()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Info{}, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f, commitID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return entries, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(commitID string, entries map[string]Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer func() {
		_ = s.flock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, commitID, entries); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrStoreCorrupted indicates the state file exists but cannot be decoded.
var ErrStoreCorrupted = errors.New("state file corrupted")

// FileStoreVersion is the schema version written to the state file.
const FileStoreVersion = 1

type fileStoreData struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// FileStorage persists every key in one JSON document. Each write replaces
// the file atomically through a temp file and rename.
type FileStorage struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// OpenFileStorage loads path, treating a missing file as empty.
func OpenFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, errors.New("file storage: empty path")
	}
	s := &FileStorage{path: path, entries: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	var stored fileStoreData
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreCorrupted, err)
	}
	if stored.Version != FileStoreVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)",
			ErrStoreCorrupted, stored.Version, FileStoreVersion)
	}
	if stored.Entries != nil {
		s.entries = stored.Entries
	}
	return s, nil
}

func (s *FileStorage) Path() string { return s.path }

func (s *FileStorage) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *FileStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.entries[key]
	s.entries[key] = string(value)
	if err := s.save(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.entries[key]
	if !had {
		return nil
	}
	delete(s.entries, key)
	if err := s.save(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

// Keys lists the stored keys in no particular order.
func (s *FileStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}

// save runs with mu held.
func (s *FileStorage) save() error {
	data, err := json.MarshalIndent(fileStoreData{Version: FileStoreVersion, Entries: s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing state temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming state temp file: %w", err)
	}
	return nil
}

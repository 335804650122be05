package db

import (
	"fmt"
	"io"
)

// Storage drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Backend is what Open returns: a key-value store that may hold resources.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	io.Closer
}

type nopCloser struct{ store }

type store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

func (nopCloser) Close() error { return nil }

// Open returns the storage backend for driver. path is the state file or
// database path; it is ignored by the memory driver.
func Open(driver, path, migrationsDir string) (Backend, error) {
	switch driver {
	case DriverMemory, "":
		return nopCloser{NewMemoryStorage()}, nil
	case DriverFile:
		s, err := OpenFileStorage(path)
		if err != nil {
			return nil, err
		}
		return nopCloser{s}, nil
	case DriverSQLite:
		return OpenSQLite(path, migrationsDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

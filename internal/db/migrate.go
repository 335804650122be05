package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

// RunMigrations executes migrations from the given directory, falling back to embedded files.
// Applied names are recorded in schema_migrations and skipped on later runs.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	files, err := loadMigrations(migrationsDir)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, mf := range files {
		if len(mf.data) == 0 {
			continue
		}
		var seen int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, mf.name).Scan(&seen); err != nil {
			return fmt.Errorf("check migration %s: %w", mf.name, err)
		}
		if seen > 0 {
			continue
		}
		if _, err := db.Exec(string(mf.data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", mf.name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, mf.name); err != nil {
			return fmt.Errorf("record migration %s: %w", mf.name, err)
		}
	}
	return nil
}

func loadMigrations(dir string) ([]migrationFile, error) {
	var files []migrationFile
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
					continue
				}
				content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
				}
				files = append(files, migrationFile{name: entry.Name(), data: content})
			}
			sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
			return files, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}

	entries, err := embeddedMigrations.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		// embed.FS paths always use forward slashes.
		content, err := embeddedMigrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// KV is the read/write surface CopyKeys needs from a backend.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// CopyKeys copies each present key from src to dst and returns how many
// were copied. Absent keys are skipped.
func CopyKeys(src, dst KV, keys []string) (int, error) {
	n := 0
	for _, k := range keys {
		v, ok, err := src.Get(k)
		if err != nil {
			return n, fmt.Errorf("read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if err := dst.Set(k, v); err != nil {
			return n, fmt.Errorf("write %s: %w", k, err)
		}
		n++
	}
	return n, nil
}

// MigrateFileToSQLite performs the one-time copy of keys from the JSON state
// file into a new SQLite database. It does nothing when the SQLite file
// already exists or the JSON file is missing. It reports whether a copy ran.
func MigrateFileToSQLite(filePath, sqlitePath, migrationsDir string, keys []string, logger zerolog.Logger) (bool, error) {
	if sqlitePath == "" {
		return false, errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("check sqlite file: %w", err)
	}
	if filePath == "" {
		return false, nil
	}
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	src, err := OpenFileStorage(filePath)
	if err != nil {
		return false, fmt.Errorf("load state file: %w", err)
	}
	logger.Info().Str("from", filePath).Str("to", sqlitePath).Msg("first run detected, migrating state file")

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return false, fmt.Errorf("create sqlite dir: %w", err)
	}
	dst, err := OpenSQLite(sqlitePath, migrationsDir)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close sqlite db")
		}
	}()

	n, err := CopyKeys(src, dst, keys)
	if err != nil {
		return false, fmt.Errorf("copy data: %w", err)
	}
	logger.Info().Int("keys", n).Msg("state migration completed")
	return true, nil
}

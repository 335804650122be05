package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Backend) {
	t.Helper()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("ecoImpactUser", []byte(`{"id":"user123"}`)))
	v, ok, err := s.Get("ecoImpactUser")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"user123"}`, string(v))

	require.NoError(t, s.Set("ecoImpactUser", []byte(`{"id":"user456"}`)))
	v, _, err = s.Get("ecoImpactUser")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user456"}`, string(v))

	require.NoError(t, s.Remove("ecoImpactUser"))
	_, ok, err = s.Get("ecoImpactUser")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Remove("ecoImpactUser"), "removing an absent key is fine")
}

func TestMemoryStorage(t *testing.T) {
	s, err := Open(DriverMemory, "", "")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestMemoryStorage_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStorage()
	require.NoError(t, s.Set("k", []byte("abc")))
	v, _, _ := s.Get("k")
	v[0] = 'z'
	again, _, _ := s.Get("k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, []string{"k"}, s.Keys())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := Open(DriverFile, path, "")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStorage_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := OpenFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("ecoImpactFootprintHistory", []byte(`[{"total":7.7}]`)))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file cleaned up")

	reopened, err := OpenFileStorage(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get("ecoImpactFootprintHistory")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"total":7.7}]`, string(v))
}

func TestFileStorage_Corrupted(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{oops"), 0o600))
	_, err := OpenFileStorage(bad)
	assert.ErrorIs(t, err, ErrStoreCorrupted)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version":9,"entries":{}}`), 0o600))
	_, err = OpenFileStorage(future)
	assert.ErrorIs(t, err, ErrStoreCorrupted)
}

func TestFileStorage_EmptyPath(t *testing.T) {
	_, err := OpenFileStorage("")
	assert.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "eco.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStorage_UpdatedAtAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eco.db")
	s, err := OpenSQLite(path, "")
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v1")))
	at, ok, err := s.UpdatedAt("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, at.IsZero())
	require.NoError(t, s.Close())

	again, err := OpenSQLite(path, "")
	require.NoError(t, err, "migrations are idempotent")
	t.Cleanup(func() { _ = again.Close() })
	v, ok, err := again.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(v))

	var applied int
	require.NoError(t, again.DB().QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", "", "")
	assert.Error(t, err)
}

func TestCopyKeys(t *testing.T) {
	src := NewMemoryStorage()
	dst := NewMemoryStorage()
	require.NoError(t, src.Set("a", []byte("1")))
	require.NoError(t, src.Set("c", []byte("3")))

	n, err := CopyKeys(src, dst, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	v, ok, _ := dst.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", string(v))
}

func TestMigrateFileToSQLite(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "state.json")
	sqlitePath := filepath.Join(dir, "data", "eco.db")
	keys := []string{"ecoImpactUser", "ecoImpactFootprintHistory"}

	ran, err := MigrateFileToSQLite(filePath, sqlitePath, "", keys, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, ran, "no state file yet")

	fs, err := OpenFileStorage(filePath)
	require.NoError(t, err)
	require.NoError(t, fs.Set("ecoImpactUser", []byte(`{"id":"user123"}`)))

	ran, err = MigrateFileToSQLite(filePath, sqlitePath, "", keys, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = MigrateFileToSQLite(filePath, sqlitePath, "", keys, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, ran, "sqlite file exists")

	s, err := OpenSQLite(sqlitePath, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, ok, err := s.Get("ecoImpactUser")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"user123"}`, string(v))
	_, ok, err = s.Get("ecoImpactFootprintHistory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrateFileToSQLite_RequiresPath(t *testing.T) {
	_, err := MigrateFileToSQLite("x.json", "", "", nil, zerolog.Nop())
	assert.Error(t, err)
}

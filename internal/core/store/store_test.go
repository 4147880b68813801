package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/config"
)

func TestBuildDSNLocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cache.db")

	dsn, err := buildDSN(config.StoreConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, "file:"+path, dsn)
	require.DirExists(t, filepath.Dir(path))
}

func TestBuildDSNMemoryAndRemote(t *testing.T) {
	dsn, err := buildDSN(config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.Equal(t, ":memory:", dsn)

	dsn, err = buildDSN(config.StoreConfig{Path: "libsql://db.example.turso.io"})
	require.NoError(t, err)
	require.Equal(t, "libsql://db.example.turso.io", dsn)

	_, err = buildDSN(config.StoreConfig{})
	require.Error(t, err)
}

func TestBuildDSNAppendsAuthToken(t *testing.T) {
	dsn, err := buildDSN(config.StoreConfig{
		URL:       "libsql://db.example.turso.io",
		AuthToken: "secret",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "authToken=secret")

	// An explicit token in the URL wins.
	dsn, err = buildDSN(config.StoreConfig{
		URL:       "libsql://db.example.turso.io?authToken=existing",
		AuthToken: "secret",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "authToken=existing")
	require.NotContains(t, dsn, "secret")
}

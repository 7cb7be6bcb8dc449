package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		ArchiveRoot: "/data/maser",
		CatalogFile: "/data/6ghz_list.txt",
		LogDir:      "/home/user/.local/share/mcat/log",
		Database:    DatabaseConfig{Type: "sqlite", Path: "/data/sources.db"},
		Ingest:      IngestConfig{SkipCodes: []string{"g32p74", "w51"}},
		Snapshot: SnapshotConfig{
			Type:      "s3",
			S3Bucket:  "maser-snapshots",
			S3Prefix:  "catalog",
			S3Region:  "eu-central-1",
			Recipient: "age1qyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqs3290gq",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	require.NoError(t, m.Write(&buf, original))

	got, err := m.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestManager_Read_DefaultSkipCodes(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("archive_root = \"/a\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"g32p74"}, got.Ingest.SkipCodes)

	got, err = m.Read(strings.NewReader("[ingest]\nskip_codes = []\n"))
	require.NoError(t, err)
	assert.Empty(t, got.Ingest.SkipCodes, "explicit empty skip_codes")
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/mcat")

	assert.Equal(t, "/data/mcat/archive", cfg.ArchiveRoot)
	assert.Equal(t, "/data/mcat/log", cfg.LogDir)
	assert.Equal(t, DatabaseConfig{Type: "sqlite", Path: "/data/mcat/sources.db"}, cfg.Database)
	assert.Equal(t, "none", cfg.Snapshot.Type)
	assert.Equal(t, []string{"g32p74"}, cfg.Ingest.SkipCodes)
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mcat.toml")

		require.NoError(t, Init(path, NewConfig(dir)))
		assert.FileExists(t, path)
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mcat.toml")
		cfg := NewConfig(dir)

		require.NoError(t, Init(path, cfg))
		assert.Error(t, Init(path, cfg))
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mcat.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}
		require.NoError(t, Init(path, cfg))

		got, err := ReadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "memory", got.Database.Type)
		assert.Equal(t, filepath.Join(dir, "archive"), got.ArchiveRoot)
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/mcat.toml")
		assert.Error(t, err)
	})
}

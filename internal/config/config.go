package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultSkipCodes lists short codes whose files are never ingested
// automatically.
var DefaultSkipCodes = []string{"g32p74"}

// Config represents the main configuration for mcat.
type Config struct {
	ArchiveRoot string         `toml:"archive_root"`
	CatalogFile string         `toml:"catalog_file"`
	LogDir      string         `toml:"log_dir"`
	Database    DatabaseConfig `toml:"database"`
	Ingest      IngestConfig   `toml:"ingest"`
	Snapshot    SnapshotConfig `toml:"snapshot"`
}

// DatabaseConfig represents configuration for the source catalog database.
type DatabaseConfig struct {
	Type string `toml:"type"`           // "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
}

// IngestConfig controls how new observation files are routed.
type IngestConfig struct {
	SkipCodes []string `toml:"skip_codes"`
}

// SnapshotConfig describes where catalog snapshots go after a mutating command.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SnapshotConfig struct {
	Type string `toml:"type"` // "none", "filesystem", "s3" or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`

	// Recipient is an age public key. Snapshots are stored in plain form when empty.
	Recipient string `toml:"recipient,omitempty"`
}

// NewConfig creates a new Config with every path placed under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ArchiveRoot: filepath.Join(baseDir, "archive"),
		CatalogFile: filepath.Join(baseDir, "6ghz_list.txt"),
		LogDir:      filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: filepath.Join(baseDir, "sources.db"),
		},
		Ingest: IngestConfig{
			SkipCodes: append([]string(nil), DefaultSkipCodes...),
		},
		Snapshot: SnapshotConfig{Type: "none"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Ingest.SkipCodes == nil {
		cfg.Ingest.SkipCodes = append([]string(nil), DefaultSkipCodes...)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

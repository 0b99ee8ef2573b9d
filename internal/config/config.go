package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults for the sync section.
const (
	DefaultLookupBatchSize    = 500
	DefaultMaxWorkingSetBytes = 100 * 1024
)

// Config is the olaaf configuration file.
type Config struct {
	BaseDir     string           `toml:"base_dir"`
	LogDir      string           `toml:"log_dir"`
	LogLevel    string           `toml:"log_level,omitempty"` // debug, info (default), warn, error
	LibraryRoot string           `toml:"library_root,omitempty"`
	Database    DatabaseConfig   `toml:"database"`
	Sync        SyncConfig       `toml:"sync"`
	Search      SearchConfig     `toml:"search"`
	Vaults      []VaultConfig    `toml:"vaults"`
	Encryption  EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig selects the history index store.
// Type decides which other fields apply.
type DatabaseConfig struct {
	Type string `toml:"type"`           // "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
}

// SyncConfig bounds the work done per commit.
type SyncConfig struct {
	// LookupBatchSize caps the keys sent in one lookup query.
	LookupBatchSize int `toml:"lookup_batch_size"`
	// MaxWorkingSetBytes is the staged-change size that triggers a flush.
	MaxWorkingSetBytes int `toml:"max_working_set_bytes"`
	// Ignore holds glob patterns for repository paths that are never indexed.
	Ignore []string `toml:"ignore"`
}

// SearchConfig selects the path search index.
type SearchConfig struct {
	Type     string `toml:"type"`                // "bleve", "memory" or "none"
	IndexDir string `toml:"index_dir,omitempty"` // only used for type=bleve
}

// VaultConfig is a snapshot destination. Type decides which other fields apply.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3 fields (Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem fields (Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
	FSVaultKeep int    `toml:"fs_vault_keep,omitempty"` // retained versions, default 5
}

// EncryptionConfig holds the age key pair used to seal snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age", "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig returns a config rooted at baseDir with every section defaulted.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: filepath.Join(baseDir, "olaaf.db"),
		},
		Sync: SyncConfig{
			LookupBatchSize:    DefaultLookupBatchSize,
			MaxWorkingSetBytes: DefaultMaxWorkingSetBytes,
		},
		Search: SearchConfig{
			Type:     "bleve",
			IndexDir: filepath.Join(baseDir, "search.bleve"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "olaaf.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "olaaf.key"),
		},
	}
}

// ApplyDefaults fills zero values left by an older or hand-written file.
func (c *Config) ApplyDefaults() {
	if c.Sync.LookupBatchSize <= 0 {
		c.Sync.LookupBatchSize = DefaultLookupBatchSize
	}
	if c.Sync.MaxWorkingSetBytes <= 0 {
		c.Sync.MaxWorkingSetBytes = DefaultMaxWorkingSetBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Search.Type == "" {
		c.Search.Type = "none"
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config and applies defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path.
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

// Init writes cfg to path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite(t *testing.T) {
	original := &Config{
		BaseDir:     "/var/lib/olaaf",
		LogDir:      "/var/lib/olaaf/log",
		LogLevel:    "debug",
		LibraryRoot: "/srv/library",
		Database:    DatabaseConfig{Type: "sqlite", Path: "/var/lib/olaaf/olaaf.db"},
		Sync: SyncConfig{
			LookupBatchSize:    250,
			MaxWorkingSetBytes: 4096,
			Ignore:             []string{"drafts/*", "*.tmp.html"},
		},
		Search: SearchConfig{Type: "bleve", IndexDir: "/var/lib/olaaf/search.bleve"},
		Vaults: []VaultConfig{
			{Type: "s3", Name: "offsite", S3Bucket: "snapshots", S3Prefix: "olaaf/", S3Region: "us-east-1"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/var/lib/olaaf/keys/olaaf.pub",
			PrivateKeyPath: "/var/lib/olaaf/keys/olaaf.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}
	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LibraryRoot != original.LibraryRoot {
		t.Errorf("LibraryRoot = %q, want %q", got.LibraryRoot, original.LibraryRoot)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Sync.LookupBatchSize != 250 || got.Sync.MaxWorkingSetBytes != 4096 {
		t.Errorf("Sync = %+v", got.Sync)
	}
	if len(got.Sync.Ignore) != 2 {
		t.Errorf("len(Sync.Ignore) = %d, want 2", len(got.Sync.Ignore))
	}
	if len(got.Vaults) != 1 || got.Vaults[0] != original.Vaults[0] {
		t.Errorf("Vaults = %+v", got.Vaults)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
}

func TestManager_ReadAppliesDefaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader(`
base_dir = "/tmp/olaaf"

[database]
type = "memory"
`))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Sync.LookupBatchSize != DefaultLookupBatchSize {
		t.Errorf("LookupBatchSize = %d, want %d", got.Sync.LookupBatchSize, DefaultLookupBatchSize)
	}
	if got.Sync.MaxWorkingSetBytes != DefaultMaxWorkingSetBytes {
		t.Errorf("MaxWorkingSetBytes = %d, want %d", got.Sync.MaxWorkingSetBytes, DefaultMaxWorkingSetBytes)
	}
	if got.Search.Type != "none" {
		t.Errorf("Search.Type = %q, want none", got.Search.Type)
	}
	if got.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", got.Encryption.Type)
	}
	if got.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", got.LogLevel)
	}
}

func TestManager_ReadInvalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("base_dir = ")); err == nil {
		t.Error("Read() expected error for malformed toml")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/olaaf")

	checks := map[string][2]string{
		"BaseDir":       {cfg.BaseDir, "/data/olaaf"},
		"LogDir":        {cfg.LogDir, "/data/olaaf/log"},
		"Database.Path": {cfg.Database.Path, "/data/olaaf/olaaf.db"},
		"Search.Index":  {cfg.Search.IndexDir, "/data/olaaf/search.bleve"},
		"PublicKey":     {cfg.Encryption.PublicKeyPath, "/data/olaaf/keys/olaaf.pub"},
		"PrivateKey":    {cfg.Encryption.PrivateKeyPath, "/data/olaaf/keys/olaaf.key"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if cfg.Sync.LookupBatchSize != DefaultLookupBatchSize {
		t.Errorf("LookupBatchSize = %d", cfg.Sync.LookupBatchSize)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "olaaf.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "olaaf.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "olaaf.toml")
		cfg := NewConfig(dir)
		cfg.LibraryRoot = "/srv/library"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.LibraryRoot != "/srv/library" {
			t.Errorf("LibraryRoot = %q, want /srv/library", got.LibraryRoot)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/olaaf.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"olaaf-go/internal/config"
	"olaaf-go/internal/database"
	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/encryption"
	"olaaf-go/internal/fs"
	"olaaf-go/internal/gitsource"
	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/search"
	"olaaf-go/internal/vault"
)

// ErrSearchDisabled reports a search request while search.type is "none".
var ErrSearchDisabled = errors.New("search index disabled")

// App is the application layer between the CLI and olaaf.Service.
// It constructs all dependencies from config, exposes the high-level
// operations and publishes an index snapshot on Close after a mutating run.
type App struct {
	cfg       *config.Config
	db        olaaf.Database
	vault     olaaf.Vault
	encryptor olaaf.Encryptor
	index     *search.Index
	library   olaaf.RevisionStore
	service   *olaaf.Service
	op        *Operation
	logFile   *os.File
}

// overrides replaces config-built dependencies. Zero fields use the config.
type overrides struct {
	library olaaf.RevisionStore
	vault   olaaf.Vault
	clock   olaaf.Clock
	stderr  io.Writer
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Sync", "Check").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	return newApp(cfg, operation, overrides{})
}

func newApp(cfg *config.Config, operation string, o overrides) (a *App, err error) {
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	if o.clock == nil {
		o.clock = olaaf.RealClock{}
	}

	v := o.vault
	if v == nil && len(cfg.Vaults) > 0 {
		if v, err = vault.NewVaultFromConfig(cfg.Vaults[0]); err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if err := db.CheckMigrations(); err != nil {
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	if v != nil {
		if err := checkSnapshotVersion(db, v); err != nil {
			return nil, err
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	library := o.library
	if library == nil && cfg.LibraryRoot != "" {
		library = gitsource.NewLibrary(cfg.LibraryRoot)
	}
	patterns := append([]string{}, cfg.Sync.Ignore...)
	if cfg.LibraryRoot != "" {
		extra, err := fs.ParseIgnoreFile(filepath.Join(cfg.LibraryRoot, fs.IgnoreFileName))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, extra...)
	}
	filter := fs.NewDocumentFilter(patterns)

	index, err := openSearchIndex(cfg.Search)
	if err != nil {
		return nil, err
	}

	op := NewOperation(operation, "")
	logger, logFile, err := newLogger(cfg.LogDir, op.RunID, cfg.LogLevel, o.stderr)
	if err != nil {
		if index != nil {
			index.Close()
		}
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	var indexer olaaf.PathIndexer
	if index != nil {
		indexer = index
	}
	logger.Debug("document filter ready", "patterns", filter.Patterns())
	svc := olaaf.NewService(db, olaaf.NewHTMLRendererFactory(), indexer, &slogAdapter{l: logger}, o.clock, olaaf.Options{
		LookupBatchSize:    cfg.Sync.LookupBatchSize,
		MaxWorkingSetBytes: cfg.Sync.MaxWorkingSetBytes,
		Filter:             filter,
	})

	return &App{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		index:     index,
		library:   library,
		service:   svc,
		op:        op,
		logFile:   logFile,
	}, nil
}

// checkSnapshotVersion refuses to run against an index older than the one
// last published to the vault.
func checkSnapshotVersion(db olaaf.Database, v olaaf.Vault) error {
	remoteVersion, err := v.GetSnapshotVersion(olaaf.SnapshotName)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version: %w", err)
	}
	localMax, err := db.MaxSyncOperationID()
	if err != nil {
		return fmt.Errorf("checking local index version: %w", err)
	}
	if remoteVersion > localMax {
		return fmt.Errorf("local index is behind vault (local=%d, remote=%d): run snapshot restore", localMax, remoteVersion)
	}
	return nil
}

func openSearchIndex(cfg config.SearchConfig) (*search.Index, error) {
	switch cfg.Type {
	case "bleve":
		if cfg.IndexDir == "" {
			return nil, fmt.Errorf("index_dir required for bleve search")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.IndexDir), 0755); err != nil {
			return nil, fmt.Errorf("creating search directory: %w", err)
		}
		return search.Open(cfg.IndexDir)
	case "memory":
		return search.NewMemory()
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown search type: %s", cfg.Type)
	}
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. Only index-mutating commands call it.
func (a *App) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateSyncOperation(a.op.RunID, a.op.Name, parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

func (a *App) revisionStore() (olaaf.RevisionStore, error) {
	if a.library == nil {
		return nil, fmt.Errorf("%w: library_root is not configured", olaaf.ErrInvalidInput)
	}
	return a.library, nil
}

// Sync applies an explicit sync description to the index.
func (a *App) Sync(input *olaaf.SyncInput) (*olaaf.SyncStats, error) {
	store, err := a.revisionStore()
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(strings.Join(input.RepositoryNames(), ",")); err != nil {
		return nil, err
	}
	stats, err := a.service.Sync(store, input)
	return stats, a.op.Fail(err)
}

// SyncDiscover builds the sync description from the publication branches of
// the named repositories and applies it.
func (a *App) SyncDiscover(repositories []string) (*olaaf.SyncStats, error) {
	store, err := a.revisionStore()
	if err != nil {
		return nil, err
	}
	input, err := a.service.DiscoverInput(store, repositories)
	if err != nil {
		return nil, err
	}
	return a.Sync(input)
}

// Check answers an authenticity query.
func (a *App) Check(req olaaf.CheckRequest) (*olaaf.AuthenticityResult, error) {
	return a.service.Check(req)
}

// CheckValue answers an authenticity query for a fingerprint computed elsewhere.
func (a *App) CheckValue(repository, publication, date, url string, kind olaaf.HashKind, value string) (*olaaf.AuthenticityResult, error) {
	return a.service.CheckValue(repository, publication, date, url, kind, value)
}

// PathHistory returns the interval history of one document.
func (a *App) PathHistory(repository, publication, url string) (*olaaf.PathHistory, error) {
	return a.service.GetPathHistory(repository, publication, url)
}

// Publications lists the publication lines of a repository.
func (a *App) Publications(repository string) ([]*olaaf.PublicationInfo, error) {
	return a.service.ListPublications(repository)
}

// Runs returns the most recent sync runs.
func (a *App) Runs(limit int) ([]*sqlc.SyncOperation, error) {
	return a.service.GetHistory(limit)
}

// Search queries the path index.
func (a *App) Search(query, repository, publication string, limit int) ([]*search.Result, error) {
	if a.index == nil {
		return nil, ErrSearchDisabled
	}
	return a.index.Search(query, repository, publication, limit)
}

// ReindexSearch rebuilds the path index from the history index.
func (a *App) ReindexSearch() (int, error) {
	if a.index == nil {
		return 0, ErrSearchDisabled
	}
	return a.index.Rebuild(a.db)
}

// Close finalizes the operation and closes all resources.
// For persisted operations it finishes the run record and, when a vault is
// configured, publishes a snapshot versioned by the run ID.
func (a *App) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.op.Persisted() {
		if err := a.db.FinishSyncOperation(a.op.ID, a.op.Status); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}
		if a.vault != nil && firstErr == nil {
			if err := olaaf.PublishSnapshot(a.db, a.vault, a.encryptor, a.op.ID); err != nil {
				keep(fmt.Errorf("publishing snapshot: %w", err))
			}
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			keep(fmt.Errorf("closing search index: %w", err))
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// RestoreSnapshot replaces the local index with the latest vault snapshot and
// rebuilds the search index from it. It returns the restored version.
func RestoreSnapshot(cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("%w: snapshot restore needs a sqlite database", olaaf.ErrInvalidInput)
	}
	if len(cfg.Vaults) == 0 {
		return 0, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	return restoreSnapshot(cfg, v, enc, passphrase)
}

func restoreSnapshot(cfg *config.Config, v olaaf.Vault, enc olaaf.Encryptor, passphrase string) (int64, error) {
	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return 0, fmt.Errorf("creating database directory: %w", err)
	}
	version, err := olaaf.RestoreSnapshot(v, dec, cfg.Database.Path)
	if err != nil {
		return 0, err
	}

	if cfg.Search.Type != "bleve" {
		return version, nil
	}
	// The old search index describes the replaced database.
	if err := os.RemoveAll(cfg.Search.IndexDir); err != nil {
		return version, fmt.Errorf("removing stale search index: %w", err)
	}
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return version, fmt.Errorf("opening restored database: %w", err)
	}
	defer db.Close()
	index, err := openSearchIndex(cfg.Search)
	if err != nil {
		return version, err
	}
	defer index.Close()
	if _, err := index.Rebuild(db); err != nil {
		return version, fmt.Errorf("rebuilding search index: %w", err)
	}
	return version, nil
}

// GenerateKeys creates the snapshot key pair, sealing the private key with
// passphrase. Existing keys are never replaced.
func GenerateKeys(cfg *config.Config, passphrase string) error {
	if cfg.Encryption.Type != "age" {
		return fmt.Errorf("%w: encryption type %q has no keys", olaaf.ErrInvalidInput, cfg.Encryption.Type)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"olaaf-go/internal/database/migrations"
	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/olaaf"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements olaaf.Database on SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteDatabase opens a database at path, or in memory for ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps a connection opened with OpenConnection.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
	}
}

// OpenConnection opens a configured SQLite connection.
//
// Foreign keys are enabled through the DSN so every pooled connection gets
// them. The pool is capped at one connection: the index has a single writer,
// and an in-memory database only exists on the connection that created it.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Repository operations

func (s *SQLiteDatabase) FindRepositoryByName(name string) (*sqlc.Repository, error) {
	repo, err := s.queries.GetRepositoryByName(context.Background(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding repository: %w", err)
	}
	return &repo, nil
}

func (s *SQLiteDatabase) FindOrCreateRepository(name string) (*sqlc.Repository, error) {
	repo, err := s.FindRepositoryByName(name)
	if err != nil || repo != nil {
		return repo, err
	}
	created, err := s.queries.InsertRepository(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("creating repository: %w", err)
	}
	return &created, nil
}

func (s *SQLiteDatabase) ListRepositories() ([]*sqlc.Repository, error) {
	repos, err := s.queries.ListRepositories(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	return pointers(repos), nil
}

// Publication operations

func (s *SQLiteDatabase) FindPublication(repositoryID int64, name string) (*sqlc.Publication, error) {
	pub, err := s.queries.GetPublicationByName(context.Background(), sqlc.GetPublicationByNameParams{
		RepositoryID: repositoryID,
		Name:         name,
	})
	return optional(&pub, err, "finding publication")
}

func (s *SQLiteDatabase) FindActivePublication(repositoryID int64, name string) (*sqlc.Publication, error) {
	pub, err := s.queries.GetActivePublicationByName(context.Background(), sqlc.GetActivePublicationByNameParams{
		RepositoryID: repositoryID,
		Name:         name,
	})
	return optional(&pub, err, "finding active publication")
}

func (s *SQLiteDatabase) FindLatestPublication(repositoryID int64) (*sqlc.Publication, error) {
	pub, err := s.queries.GetLatestPublication(context.Background(), repositoryID)
	return optional(&pub, err, "finding latest publication")
}

func (s *SQLiteDatabase) FindActivePublicationsByDate(repositoryID int64, date string) ([]*sqlc.Publication, error) {
	pubs, err := s.queries.GetActivePublicationsByDate(context.Background(), sqlc.GetActivePublicationsByDateParams{
		RepositoryID: repositoryID,
		Date:         date,
	})
	if err != nil {
		return nil, fmt.Errorf("finding publications by date: %w", err)
	}
	return pointers(pubs), nil
}

func (s *SQLiteDatabase) ListPublications(repositoryID int64) ([]*sqlc.Publication, error) {
	pubs, err := s.queries.GetPublicationsByRepository(context.Background(), repositoryID)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	return pointers(pubs), nil
}

func (s *SQLiteDatabase) CreatePublication(repositoryID int64, name, date, coreVersion string) (*sqlc.Publication, error) {
	pub, err := s.queries.InsertPublication(context.Background(), sqlc.InsertPublicationParams{
		RepositoryID: repositoryID,
		Name:         name,
		Date:         date,
		CoreVersion:  nullString(coreVersion),
	})
	if err != nil {
		return nil, fmt.Errorf("creating publication: %w", err)
	}
	return &pub, nil
}

func (s *SQLiteDatabase) RevokePublications(ids []int64) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	for _, id := range ids {
		if err := qtx.UpdatePublicationRevoked(ctx, sqlc.UpdatePublicationRevokedParams{Revoked: true, ID: id}); err != nil {
			return fmt.Errorf("revoking publication %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Commit operations

func (s *SQLiteDatabase) FindCommitsByPublication(publicationID int64) ([]*sqlc.Commit, error) {
	commits, err := s.queries.GetCommitsByPublication(context.Background(), publicationID)
	if err != nil {
		return nil, fmt.Errorf("finding commits: %w", err)
	}
	return pointers(commits), nil
}

func (s *SQLiteDatabase) CreateCommit(publicationID int64, sha, date string) (*sqlc.Commit, error) {
	commit, err := s.queries.InsertCommit(context.Background(), sqlc.InsertCommitParams{
		PublicationID: publicationID,
		SHA:           sha,
		Date:          date,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating commit: %w", err)
	}
	return &commit, nil
}

// DeleteCommit removes a commit and every trace of it in one transaction.
// Hash rows it started go away; rows it closed become open again.
func (s *SQLiteDatabase) DeleteCommit(commit *sqlc.Commit) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	// Started rows first, so reopening cannot collide with an open row of
	// the same path and kind.
	if err := qtx.DeleteHashesByStartCommit(ctx, commit.ID); err != nil {
		return fmt.Errorf("deleting hashes started by commit: %w", err)
	}
	if err := qtx.ReopenHashesByEndCommit(ctx, sql.NullInt64{Int64: commit.ID, Valid: true}); err != nil {
		return fmt.Errorf("reopening hashes closed by commit: %w", err)
	}
	if err := qtx.DeleteCommitByID(ctx, commit.ID); err != nil {
		return fmt.Errorf("deleting commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// BeginChanges starts the transaction applying commit's changes to publication.
func (s *SQLiteDatabase) BeginChanges(publication *sqlc.Publication, commit *sqlc.Commit) (olaaf.ChangeWriter, error) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &changeWriter{
		ctx:           ctx,
		tx:            tx,
		qtx:           s.queries.WithTx(tx),
		publicationID: publication.ID,
		commitID:      commit.ID,
	}, nil
}

// Path and hash queries

func (s *SQLiteDatabase) HasPathWithURL(publicationID int64, url string) (bool, error) {
	found, err := s.queries.PathExistsByURL(context.Background(), sqlc.PathExistsByURLParams{
		PublicationID: publicationID,
		URL:           url,
	})
	if err != nil {
		return false, fmt.Errorf("checking path by url: %w", err)
	}
	return found != 0, nil
}

func (s *SQLiteDatabase) FindPathsByURL(publicationID int64, url string) ([]*sqlc.Path, error) {
	paths, err := s.queries.GetPathsByURL(context.Background(), sqlc.GetPathsByURLParams{
		PublicationID: publicationID,
		URL:           url,
	})
	if err != nil {
		return nil, fmt.Errorf("finding paths by url: %w", err)
	}
	return pointers(paths), nil
}

func (s *SQLiteDatabase) FindPathByFilesystem(publicationID int64, filesystem string) (*sqlc.Path, error) {
	p, err := s.queries.GetPathByFilesystem(context.Background(), sqlc.GetPathByFilesystemParams{
		PublicationID: publicationID,
		Filesystem:    filesystem,
	})
	return optional(&p, err, "finding path by filesystem")
}

func (s *SQLiteDatabase) FindPathsByPublication(publicationID int64) ([]*sqlc.Path, error) {
	paths, err := s.queries.GetPathsByPublication(context.Background(), publicationID)
	if err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}
	return pointers(paths), nil
}

func (s *SQLiteDatabase) FindHashIntervals(publicationID int64, url string, kind olaaf.HashKind, value string) ([]*sqlc.FindHashIntervalsRow, error) {
	rows, err := s.queries.FindHashIntervals(context.Background(), sqlc.FindHashIntervalsParams{
		PublicationID: publicationID,
		URL:           url,
		Kind:          string(kind),
		Value:         value,
	})
	if err != nil {
		return nil, fmt.Errorf("finding hash intervals: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteDatabase) FindHashHistory(publicationID int64, url string) ([]*sqlc.ListHashesByURLRow, error) {
	rows, err := s.queries.ListHashesByURL(context.Background(), sqlc.ListHashesByURLParams{
		PublicationID: publicationID,
		URL:           url,
	})
	if err != nil {
		return nil, fmt.Errorf("finding hash history: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteDatabase) FindHashesByPublication(publicationID int64) ([]*sqlc.Hash, error) {
	hashes, err := s.queries.ListHashesByPublication(context.Background(), publicationID)
	if err != nil {
		return nil, fmt.Errorf("finding hashes: %w", err)
	}
	return pointers(hashes), nil
}

// Sync operation tracking

func (s *SQLiteDatabase) CreateSyncOperation(runID, operation, parameters string) (*sqlc.SyncOperation, error) {
	op, err := s.queries.InsertSyncOperation(context.Background(), sqlc.InsertSyncOperationParams{
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating sync operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishSyncOperation(id int64, status string) error {
	err := s.queries.UpdateSyncOperationFinished(context.Background(), sqlc.UpdateSyncOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing sync operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListSyncOperations(limit int) ([]*sqlc.SyncOperation, error) {
	ops, err := s.queries.GetSyncOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing sync operations: %w", err)
	}
	return pointers(ops), nil
}

func (s *SQLiteDatabase) MaxSyncOperationID() (int64, error) {
	id, err := s.queries.GetMaxSyncOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max sync operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a consistent copy of the database using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// optional maps sql.ErrNoRows to a nil result.
func optional[T any](v *T, err error, doing string) (*T, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", doing, err)
	}
	return v, nil
}

func pointers[T any](items []T) []*T {
	result := make([]*T, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ olaaf.Database = (*SQLiteDatabase)(nil)

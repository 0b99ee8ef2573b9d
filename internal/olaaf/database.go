package olaaf

import "olaaf-go/internal/database/sqlc"

// Database provides the persistent hash history.
// Lookups return nil, nil when nothing matches.
type Database interface {
	// Repository operations

	// FindRepositoryByName returns the repository with the given name.
	FindRepositoryByName(name string) (*sqlc.Repository, error)

	// FindOrCreateRepository returns the named repository, creating it if needed.
	FindOrCreateRepository(name string) (*sqlc.Repository, error)

	// ListRepositories returns every recorded repository ordered by name.
	ListRepositories() ([]*sqlc.Repository, error)

	// Publication operations

	// FindPublication returns a publication by name, revoked or not.
	FindPublication(repositoryID int64, name string) (*sqlc.Publication, error)

	// FindActivePublication returns a non-revoked publication by name.
	FindActivePublication(repositoryID int64, name string) (*sqlc.Publication, error)

	// FindLatestPublication returns the non-revoked publication with the greatest name.
	FindLatestPublication(repositoryID int64) (*sqlc.Publication, error)

	// FindActivePublicationsByDate returns non-revoked publications sharing a
	// date, greatest name first.
	FindActivePublicationsByDate(repositoryID int64, date string) ([]*sqlc.Publication, error)

	// ListPublications returns every publication of a repository ordered by name.
	ListPublications(repositoryID int64) ([]*sqlc.Publication, error)

	// CreatePublication records a new publication line.
	CreatePublication(repositoryID int64, name, date, coreVersion string) (*sqlc.Publication, error)

	// RevokePublications marks the given publications revoked in one transaction.
	RevokePublications(ids []int64) error

	// Commit operations

	// FindCommitsByPublication returns the synced commits of a publication in sync order.
	FindCommitsByPublication(publicationID int64) ([]*sqlc.Commit, error)

	// CreateCommit records a commit about to be applied.
	CreateCommit(publicationID int64, sha, date string) (*sqlc.Commit, error)

	// DeleteCommit undoes a commit: hashes it started are removed and the
	// intervals it closed are reopened.
	DeleteCommit(commit *sqlc.Commit) error

	// BeginChanges opens the transaction that applies one commit's diff.
	BeginChanges(publication *sqlc.Publication, commit *sqlc.Commit) (ChangeWriter, error)

	// Path and hash queries

	// HasPathWithURL reports whether any path of a publication serves url.
	HasPathWithURL(publicationID int64, url string) (bool, error)

	// FindPathsByURL returns every path of a publication serving url, oldest
	// first. A document that moved keeps one path per filesystem location.
	FindPathsByURL(publicationID int64, url string) ([]*sqlc.Path, error)

	// FindPathByFilesystem returns the path of a publication stored at filesystem.
	FindPathByFilesystem(publicationID int64, filesystem string) (*sqlc.Path, error)

	// FindPathsByPublication returns every path of a publication.
	FindPathsByPublication(publicationID int64) ([]*sqlc.Path, error)

	// FindHashIntervals returns the validity intervals of a fingerprint across
	// every path of publicationID serving url, ordered by start date.
	FindHashIntervals(publicationID int64, url string, kind HashKind, value string) ([]*sqlc.FindHashIntervalsRow, error)

	// FindHashHistory returns every interval recorded under url.
	FindHashHistory(publicationID int64, url string) ([]*sqlc.ListHashesByURLRow, error)

	// FindHashesByPublication returns every hash row of a publication's paths.
	FindHashesByPublication(publicationID int64) ([]*sqlc.Hash, error)

	// Sync operation tracking

	// CreateSyncOperation records the start of a mutating run.
	CreateSyncOperation(runID, operation, parameters string) (*sqlc.SyncOperation, error)

	// FinishSyncOperation stamps the end of a run with its status.
	FinishSyncOperation(id int64, status string) error

	// ListSyncOperations returns the most recent runs, newest first.
	ListSyncOperations(limit int) ([]*sqlc.SyncOperation, error)

	// MaxSyncOperationID returns the highest run ID, or 0.
	MaxSyncOperationID() (int64, error)

	// CheckMigrations verifies the schema is current.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}

// NewPath describes a path to create for an added document.
type NewPath struct {
	Filesystem string
	URL        string
	SearchPath string
	Citation   string
}

// ChangeWriter applies one commit's changes inside a single transaction.
// Lookups take one batch of keys; callers split large key sets with Batched.
// Nothing is visible to readers until Commit.
type ChangeWriter interface {
	// FindPaths returns the paths of the publication stored at the given locations.
	FindPaths(filesystems []string) ([]*sqlc.Path, error)

	// FindOpenHashes returns the open hash rows of the given paths.
	FindOpenHashes(pathIDs []int64) ([]*sqlc.Hash, error)

	// CreatePath inserts a path for the publication.
	CreatePath(p NewPath) (*sqlc.Path, error)

	// CloseHash ends an interval at the current commit.
	CloseHash(hashID int64) error

	// OpenHash starts an interval at the current commit.
	OpenHash(pathID int64, kind HashKind, value string) (*sqlc.Hash, error)

	// Commit makes the changes durable.
	Commit() error

	// Rollback discards the changes. It is a no-op after Commit.
	Rollback() error
}

package olaaf

import (
	"time"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/fs"
)

// PathIndexer receives the paths created by a sync run so they can be found
// by URL, filesystem path or search-path hint.
type PathIndexer interface {
	IndexPaths(repository, publication string, paths []*sqlc.Path) error
}

// NopPathIndexer indexes nothing.
type NopPathIndexer struct{}

func (NopPathIndexer) IndexPaths(string, string, []*sqlc.Path) error { return nil }

// Options tunes how much work one commit stages before it is written.
type Options struct {
	// LookupBatchSize caps the keys sent in one lookup query.
	LookupBatchSize int
	// MaxWorkingSetBytes is the staged size that triggers an intermediate flush.
	MaxWorkingSetBytes int
	// Filter excludes repository paths. The default excludes hidden directories.
	Filter PathFilter
}

const (
	defaultLookupBatchSize    = 500
	defaultMaxWorkingSetBytes = 100 * 1024
)

// Service is the orchestration layer between the revision history, the
// renderer and the hash history index. It drives synchronization and answers
// authenticity queries.
type Service struct {
	database  Database
	renderers RendererFactory
	index     PathIndexer
	logger    Logger
	clock     Clock
	opts      Options
}

// NewService creates a Service. A nil index disables path indexing; zero
// options fall back to the defaults.
func NewService(database Database, renderers RendererFactory, index PathIndexer, logger Logger, clock Clock, opts Options) *Service {
	if index == nil {
		index = NopPathIndexer{}
	}
	if opts.LookupBatchSize <= 0 {
		opts.LookupBatchSize = defaultLookupBatchSize
	}
	if opts.MaxWorkingSetBytes <= 0 {
		opts.MaxWorkingSetBytes = defaultMaxWorkingSetBytes
	}
	if opts.Filter == nil {
		opts.Filter = fs.NewDocumentFilter(nil)
	}
	return &Service{
		database:  database,
		renderers: renderers,
		index:     index,
		logger:    logger,
		clock:     clock,
		opts:      opts,
	}
}

// SyncStats summarizes one Sync call.
type SyncStats struct {
	Repositories        int
	SkippedRepos        int
	Publications        int
	CommitsSynced       int
	CommitsSkipped      int
	PathsCreated        int
	HashesOpened        int
	HashesClosed        int
	DocumentsRendered   int
	Revoked             int
	ConsistencyWarnings int
	StartedAt           time.Time
	FinishedAt          time.Time
}

// Elapsed is the wall time of the run.
func (s *SyncStats) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

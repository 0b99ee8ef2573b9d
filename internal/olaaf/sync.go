package olaaf

import (
	"errors"
	"fmt"

	"olaaf-go/internal/database/sqlc"
)

// Sync brings the hash history index up to date with input.
//
// Repositories are opened through store; one that cannot be opened is
// skipped with a warning. Publications and commits are processed strictly in
// input order. Each commit is applied atomically. When a commit fails, its
// row is deleted and Sync returns the error: commits applied earlier in the
// run stay, later ones are left for the next run.
func (s *Service) Sync(store RevisionStore, input *SyncInput) (*SyncStats, error) {
	stats := &SyncStats{StartedAt: s.clock.Now()}
	defer func() { stats.FinishedAt = s.clock.Now() }()

	renderer, err := s.renderers()
	if err != nil {
		return stats, fmt.Errorf("starting renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			s.logger.Warn("closing renderer failed", "error", err)
		}
	}()

	for _, repo := range input.Repositories {
		source, err := store.Open(repo.Name)
		if errors.Is(err, ErrRepositoryUnavailable) {
			s.logger.Warn("skipping repository", "repository", repo.Name, "error", err)
			stats.SkippedRepos++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("opening repository %s: %w", repo.Name, err)
		}

		repository, err := s.database.FindOrCreateRepository(repo.Name)
		if err != nil {
			return stats, fmt.Errorf("recording repository %s: %w", repo.Name, err)
		}
		stats.Repositories++
		s.logger.Info("syncing repository", "repository", repo.Name, "publications", len(repo.Publications))

		w := &walker{
			Service:    s,
			repository: repository,
			source:     source,
			renderer:   renderer,
			stats:      stats,
		}
		for _, pub := range repo.Publications {
			if err := w.syncPublication(pub); err != nil {
				return stats, fmt.Errorf("syncing %s %s: %w", repo.Name, pub.Name(), err)
			}
		}
	}

	stats.DocumentsRendered = renderer.Rendered()
	s.logger.Info("sync finished",
		"repositories", stats.Repositories,
		"commits", stats.CommitsSynced,
		"skipped", stats.CommitsSkipped,
		"paths", stats.PathsCreated,
		"opened", stats.HashesOpened,
		"closed", stats.HashesClosed,
		"rendered", stats.DocumentsRendered)
	return stats, nil
}

// walker syncs the publication lines of one repository.
type walker struct {
	*Service
	repository *sqlc.Repository
	source     RevisionSource
	renderer   Renderer
	stats      *SyncStats
}

func (w *walker) syncPublication(spec PublicationSpec) error {
	if len(spec.Commits) == 0 {
		return fmt.Errorf("%w: publication %s has no commits", ErrInvalidInput, spec.Name())
	}

	publication, err := w.findOrCreatePublication(spec)
	if err != nil {
		return err
	}
	w.stats.Publications++

	synced, err := w.database.FindCommitsByPublication(publication.ID)
	if err != nil {
		return fmt.Errorf("loading synced commits: %w", err)
	}

	var created []*sqlc.Path
	if len(synced) == len(spec.Commits) {
		w.logger.Debug("publication already synced", "publication", publication.Name, "commits", len(synced))
		w.stats.CommitsSkipped += len(synced)
	} else {
		created, err = w.syncCommits(publication, synced, spec.Commits)
		if err != nil {
			return err
		}
	}

	revoked, err := w.RevokeSuperseded(publication)
	if err != nil {
		return fmt.Errorf("revoking superseded publications: %w", err)
	}
	w.stats.Revoked += len(revoked)

	if len(created) > 0 {
		if err := w.index.IndexPaths(w.repository.Name, publication.Name, created); err != nil {
			w.logger.Warn("indexing paths failed", "publication", publication.Name, "error", err)
		}
	}
	return nil
}

func (w *walker) findOrCreatePublication(spec PublicationSpec) (*sqlc.Publication, error) {
	name := spec.Name()
	publication, err := w.database.FindPublication(w.repository.ID, name)
	if err != nil {
		return nil, fmt.Errorf("finding publication: %w", err)
	}
	if publication != nil {
		return publication, nil
	}

	first := spec.Commits[0]
	date := spec.Date
	if date == "" {
		date = first.BuildDate
	}
	if date == "" {
		if d, ok := publicationDate(spec.Branch); ok {
			date = d
		} else {
			date = first.Date()
		}
	}

	publication, err = w.database.CreatePublication(w.repository.ID, name, date, first.CoreVersion)
	if err != nil {
		return nil, fmt.Errorf("creating publication: %w", err)
	}
	w.logger.Info("publication created", "publication", name, "date", date)
	return publication, nil
}

// syncCommits applies every commit not yet recorded, in order, and returns
// the paths created along the way.
func (w *walker) syncCommits(publication *sqlc.Publication, synced []*sqlc.Commit, commits []CommitSpec) ([]*sqlc.Path, error) {
	seen := make(map[string]bool, len(synced))
	prevSHA := EmptyTreeSHA
	for _, c := range synced {
		seen[c.SHA] = true
		prevSHA = c.SHA
	}

	var created []*sqlc.Path
	for _, spec := range commits {
		if seen[spec.SHA] {
			w.stats.CommitsSkipped++
			continue
		}

		commit, err := w.database.CreateCommit(publication.ID, spec.SHA, spec.Date())
		if err != nil {
			return nil, fmt.Errorf("recording commit %s: %w", spec.SHA, err)
		}

		result, err := w.applyCommit(publication, prevSHA, commit)
		if err != nil {
			w.logger.Error("applying commit failed", "publication", publication.Name, "commit", spec.SHA, "error", err)
			if delErr := w.database.DeleteCommit(commit); delErr != nil {
				return nil, fmt.Errorf("applying commit %s: %w (removing commit: %v)", spec.SHA, err, delErr)
			}
			return nil, fmt.Errorf("applying commit %s: %w", spec.SHA, err)
		}

		w.stats.CommitsSynced++
		w.stats.PathsCreated += len(result.paths)
		w.stats.HashesOpened += result.opened
		w.stats.HashesClosed += result.closed
		w.stats.ConsistencyWarnings += result.warnings
		created = append(created, result.paths...)

		w.logger.Info("commit synced",
			"publication", publication.Name,
			"commit", spec.SHA,
			"date", spec.Date(),
			"paths", len(result.paths),
			"opened", result.opened,
			"closed", result.closed)
		seen[spec.SHA] = true
		prevSHA = spec.SHA
	}
	return created, nil
}

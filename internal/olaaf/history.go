package olaaf

import (
	"fmt"

	"olaaf-go/internal/database/sqlc"
)

// GetHistory returns the most recent sync runs, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*sqlc.SyncOperation, error) {
	ops, err := s.database.ListSyncOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync operations: %w", err)
	}
	return ops, nil
}

// PublicationInfo describes one publication line of a repository.
type PublicationInfo struct {
	Name        string
	Date        string
	Revoked     bool
	Latest      bool
	CoreVersion string
	Commits     int
	LastCommit  string
}

// ListPublications returns every publication of a repository ordered by name,
// revoked ones included.
func (s *Service) ListPublications(repositoryName string) ([]*PublicationInfo, error) {
	repository, err := s.database.FindRepositoryByName(repositoryName)
	if err != nil {
		return nil, fmt.Errorf("finding repository: %w", err)
	}
	if repository == nil {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, repositoryName)
	}

	latest, err := s.database.FindLatestPublication(repository.ID)
	if err != nil {
		return nil, fmt.Errorf("finding latest publication: %w", err)
	}
	publications, err := s.database.ListPublications(repository.ID)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}

	infos := make([]*PublicationInfo, 0, len(publications))
	for _, p := range publications {
		commits, err := s.database.FindCommitsByPublication(p.ID)
		if err != nil {
			return nil, fmt.Errorf("listing commits of %s: %w", p.Name, err)
		}
		info := &PublicationInfo{
			Name:        p.Name,
			Date:        p.Date,
			Revoked:     p.Revoked,
			Latest:      latest != nil && latest.ID == p.ID,
			CoreVersion: p.CoreVersion.String,
			Commits:     len(commits),
		}
		if len(commits) > 0 {
			info.LastCommit = commits[len(commits)-1].SHA
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// HashInterval is one validity interval of a document fingerprint.
type HashInterval struct {
	Filesystem string
	Kind       HashKind
	Value      string
	StartSHA   string
	StartDate  string
	EndSHA     string
	EndDate    string
}

// Open reports whether the interval is still current.
func (h *HashInterval) Open() bool {
	return h.EndSHA == ""
}

// PathHistory is the recorded history of one document. Paths holds every
// filesystem location the document was served from, oldest first.
type PathHistory struct {
	Publication string
	URL         string
	Paths       []*sqlc.Path
	Intervals   []*HashInterval
}

// GetPathHistory returns every interval recorded for the document served at
// url in the selected publication, across all of its filesystem locations.
// It returns nil, nil for an unknown URL.
func (s *Service) GetPathHistory(repositoryName, publicationName, url string) (*PathHistory, error) {
	publication, _, err := s.resolvePublication(repositoryName, publicationName)
	if err != nil {
		return nil, err
	}

	url = NormalizeURL(url)
	paths, err := s.database.FindPathsByURL(publication.ID, url)
	if err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	rows, err := s.database.FindHashHistory(publication.ID, url)
	if err != nil {
		return nil, fmt.Errorf("loading hash history: %w", err)
	}

	history := &PathHistory{Publication: publication.Name, URL: url, Paths: paths}
	for _, row := range rows {
		history.Intervals = append(history.Intervals, &HashInterval{
			Filesystem: row.Filesystem,
			Kind:       HashKind(row.Kind),
			Value:      row.Value,
			StartSHA:   row.StartSHA,
			StartDate:  row.StartDate,
			EndSHA:     row.EndSHA.String,
			EndDate:    row.EndDate.String,
		})
	}
	return history, nil
}

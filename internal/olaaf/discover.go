package olaaf

import (
	"errors"
	"fmt"
	"sort"
)

// DiscoverInput builds a sync description from the repositories themselves:
// every publication branch, with its full history as commits. Committer dates
// stand in for build dates and the branch date becomes the publication date.
//
// Of several branches built on the same day only the one with the highest
// index is kept.
func (s *Service) DiscoverInput(store RevisionStore, repositories []string) (*SyncInput, error) {
	input := &SyncInput{}
	for _, name := range repositories {
		source, err := store.Open(name)
		if errors.Is(err, ErrRepositoryUnavailable) {
			s.logger.Warn("skipping repository", "repository", name, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening repository %s: %w", name, err)
		}

		branches, err := source.ListPublicationBranches()
		if err != nil {
			return nil, fmt.Errorf("listing publication branches of %s: %w", name, err)
		}

		repo := RepositorySpec{Name: name}
		for _, branch := range latestPerDay(branches) {
			revisions, err := source.ListRevisions(branch)
			if err != nil {
				return nil, fmt.Errorf("listing revisions of %s %s: %w", name, branch, err)
			}
			if len(revisions) == 0 {
				continue
			}

			pub := PublicationSpec{Branch: branch}
			pub.Date, _ = publicationDate(branch)
			for _, rev := range revisions {
				pub.Commits = append(pub.Commits, CommitSpec{
					SHA:       rev.SHA,
					BuildDate: rev.CommittedAt.UTC().Format(DateLayout),
				})
			}
			repo.Publications = append(repo.Publications, pub)
		}
		s.logger.Info("discovered publications", "repository", name, "publications", len(repo.Publications))
		input.Repositories = append(input.Repositories, repo)
	}
	return input, nil
}

// latestPerDay sorts publication branches and drops any branch followed by
// another one built on the same day.
func latestPerDay(branches []string) []string {
	var valid []string
	for _, b := range branches {
		if IsPublicationBranch(b) {
			valid = append(valid, b)
		}
	}
	sort.Strings(valid)

	var kept []string
	for i, b := range valid {
		if i+1 < len(valid) && branchDay(valid[i+1]) == branchDay(b) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

func branchDay(branch string) string {
	m := publicationBranch.FindStringSubmatch(branch)
	if m == nil {
		return ""
	}
	return m[1]
}

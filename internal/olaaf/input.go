package olaaf

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// publicationBranch matches publication/<YYYY-MM-DD> or publication/<YYYY-MM>
// with an optional -NN same-day index.
var publicationBranch = regexp.MustCompile(`^publication/(\d{4}-\d{2}(?:-\d{2})?)(-\d{2})?$`)

// IsPublicationBranch reports whether branch names a publication line.
func IsPublicationBranch(branch string) bool {
	m := publicationBranch.FindStringSubmatch(branch)
	if m == nil {
		return false
	}
	if _, err := time.Parse(DateLayout, m[1]); err == nil {
		return true
	}
	_, err := time.Parse("2006-01", m[1])
	return err == nil
}

// PublicationName derives the publication name from a branch name:
// publication/2020-01-01-1 becomes 2020-01-01-1. Other branch names are
// used as-is.
func PublicationName(branch string) string {
	if IsPublicationBranch(branch) {
		return strings.TrimPrefix(branch, "publication/")
	}
	return branch
}

// publicationDate returns the full release date encoded in a publication
// branch. Month-only branches carry no usable date.
func publicationDate(branch string) (string, bool) {
	m := publicationBranch.FindStringSubmatch(branch)
	if m == nil {
		return "", false
	}
	if _, err := time.Parse(DateLayout, m[1]); err != nil {
		return "", false
	}
	return m[1], true
}

// SyncInput describes the history to index, repository by repository.
type SyncInput struct {
	Repositories []RepositorySpec
}

// RepositoryNames returns the repository names in input order.
func (in *SyncInput) RepositoryNames() []string {
	names := make([]string, 0, len(in.Repositories))
	for _, r := range in.Repositories {
		names = append(names, r.Name)
	}
	return names
}

// RepositorySpec lists the publication lines of one repository.
type RepositorySpec struct {
	Name         string
	Publications []PublicationSpec
}

// PublicationSpec is one publication branch and its commits, oldest first.
type PublicationSpec struct {
	Branch string
	// Date overrides the publication date taken from the first commit.
	Date    string
	Commits []CommitSpec
}

// Name is the publication name derived from the branch.
func (p PublicationSpec) Name() string {
	return PublicationName(p.Branch)
}

// CommitSpec is one commit descriptor.
type CommitSpec struct {
	SHA          string
	BuildDate    string
	CodifiedDate string
	CoreVersion  string
}

// Date is the commit's effective date: the codified date when present,
// otherwise the build date.
func (c CommitSpec) Date() string {
	if c.CodifiedDate != "" {
		return c.CodifiedDate
	}
	return c.BuildDate
}

// wireCommit is the JSON shape of a commit descriptor.
type wireCommit struct {
	Commit         string `json:"commit"`
	AdditionalInfo struct {
		BuildDate    string `json:"build-date"`
		CodifiedDate string `json:"codified-date"`
		CoreVersion  string `json:"core-version"`
	} `json:"additional-info"`
}

// ParseSyncInput decodes
//
//	{"<repo>": {"<branch>": [{"commit": "<sha>", "additional-info": {...}}]}}
//
// Repositories and branches are returned sorted by name so that runs are
// deterministic. Commits keep their input order.
func ParseSyncInput(data []byte) (*SyncInput, error) {
	var raw map[string]map[string][]wireCommit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding sync description: %v", ErrInvalidInput, err)
	}

	input := &SyncInput{}
	for _, repoName := range sortedKeys(raw) {
		if strings.TrimSpace(repoName) == "" {
			return nil, fmt.Errorf("%w: empty repository name", ErrInvalidInput)
		}
		repo := RepositorySpec{Name: repoName}
		branches := raw[repoName]
		for _, branch := range sortedKeys(branches) {
			pub := PublicationSpec{Branch: branch}
			for i, wc := range branches[branch] {
				c := CommitSpec{
					SHA:          strings.TrimSpace(wc.Commit),
					BuildDate:    wc.AdditionalInfo.BuildDate,
					CodifiedDate: wc.AdditionalInfo.CodifiedDate,
					CoreVersion:  wc.AdditionalInfo.CoreVersion,
				}
				if err := c.validate(); err != nil {
					return nil, fmt.Errorf("%s %s commit %d: %w", repoName, branch, i, err)
				}
				pub.Commits = append(pub.Commits, c)
			}
			repo.Publications = append(repo.Publications, pub)
		}
		input.Repositories = append(input.Repositories, repo)
	}
	return input, nil
}

// LoadSyncInput reads a sync description from a file, or parses arg itself
// when it is inline JSON.
func LoadSyncInput(arg string) (*SyncInput, error) {
	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") {
		return ParseSyncInput([]byte(trimmed))
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("reading sync description: %w", err)
	}
	return ParseSyncInput(data)
}

func (c CommitSpec) validate() error {
	if c.SHA == "" {
		return fmt.Errorf("%w: missing commit sha", ErrInvalidInput)
	}
	for _, d := range []string{c.BuildDate, c.CodifiedDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("%w: bad date %q", ErrInvalidInput, d)
		}
	}
	if c.Date() == "" {
		return fmt.Errorf("%w: commit %s has no date", ErrInvalidInput, c.SHA)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package gitsource reads publication history from git repositories on disk.
package gitsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"olaaf-go/internal/olaaf"
)

const remotePrefix = "origin/"

// Library opens repositories stored as <root>/<name>.
type Library struct {
	root string
}

var _ olaaf.RevisionStore = (*Library)(nil)

// NewLibrary returns a library rooted at root.
func NewLibrary(root string) *Library {
	return &Library{root: root}
}

// Open opens the named repository. Missing repositories are reported as
// olaaf.ErrRepositoryUnavailable so a sync can skip them.
func (l *Library) Open(name string) (olaaf.RevisionSource, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid repository name %q", olaaf.ErrInvalidInput, name)
	}

	dir := filepath.Join(l.root, name)
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) || errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", olaaf.ErrRepositoryUnavailable, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dir, err)
	}
	return &Repository{name: name, repo: repo}, nil
}

// Repository is one git repository of the library.
type Repository struct {
	name string
	repo *git.Repository
}

var _ olaaf.RevisionSource = (*Repository)(nil)

// Open wraps an already opened go-git repository.
func Open(name string, repo *git.Repository) *Repository {
	return &Repository{name: name, repo: repo}
}

// ListRevisions follows the first-parent chain of ref back to the root
// commit and returns it oldest first. A branch that only exists as
// origin/<ref> is resolved through the remote.
func (r *Repository) ListRevisions(ref string) ([]olaaf.Revision, error) {
	hash, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}

	var revs []olaaf.Revision
	for {
		revs = append(revs, olaaf.Revision{SHA: commit.Hash.String(), CommittedAt: commit.Committer.When})
		if commit.NumParents() == 0 {
			break
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", revs[len(revs)-1].SHA, err)
		}
	}

	for i, j := 0, len(revs)-1; i < j; i, j = i+1, j-1 {
		revs[i], revs[j] = revs[j], revs[i]
	}
	return revs, nil
}

func (r *Repository) resolve(ref string) (plumbing.Hash, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewRemoteReferenceName("origin", strings.TrimPrefix(ref, remotePrefix)),
	}
	for _, name := range candidates {
		reference, err := r.repo.Reference(name, true)
		if err == nil {
			return reference.Hash(), nil
		}
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, fmt.Errorf("resolving %s: %w", name, err)
		}
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving %s in %s: %w", ref, r.name, err)
	}
	return *hash, nil
}

// ListPublicationBranches returns local and origin publication branches,
// deduplicated and sorted.
func (r *Repository) ListPublicationBranches() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	defer refs.Close()

	seen := make(map[string]bool)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		var name string
		switch {
		case ref.Name().IsBranch():
			name = ref.Name().Short()
		case ref.Name().IsRemote():
			name = strings.TrimPrefix(ref.Name().Short(), remotePrefix)
		default:
			return nil
		}
		if olaaf.IsPublicationBranch(name) {
			seen[name] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	branches := make([]string, 0, len(seen))
	for name := range seen {
		branches = append(branches, name)
	}
	sort.Strings(branches)
	return branches, nil
}

// Diff compares the trees of two commits without rename detection.
func (r *Repository) Diff(fromSHA, toSHA string) ([]olaaf.DiffEntry, error) {
	var from *object.Tree
	if fromSHA != olaaf.EmptyTreeSHA {
		t, err := r.tree(fromSHA)
		if err != nil {
			return nil, err
		}
		from = t
	}
	to, err := r.tree(toSHA)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diffing %s..%s: %w", fromSHA, toSHA, err)
	}

	entries := make([]olaaf.DiffEntry, 0, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, fmt.Errorf("classifying change: %w", err)
		}
		switch action {
		case merkletrie.Insert:
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffAdded, Path: change.To.Name})
		case merkletrie.Delete:
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffDeleted, Path: change.From.Name})
		case merkletrie.Modify:
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffModified, Path: change.To.Name})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (r *Repository) tree(sha string) (*object.Tree, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", sha, err)
	}
	return tree, nil
}

// ReadBlob returns the content of filesystem as of commit sha.
func (r *Repository) ReadBlob(sha, filesystem string) ([]byte, error) {
	tree, err := r.tree(sha)
	if err != nil {
		return nil, err
	}
	file, err := tree.File(filesystem)
	if err != nil {
		return nil, fmt.Errorf("finding %s at %s: %w", filesystem, sha, err)
	}
	rd, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening %s at %s: %w", filesystem, sha, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", filesystem, sha, err)
	}
	return data, nil
}

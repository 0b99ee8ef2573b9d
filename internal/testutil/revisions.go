package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"olaaf-go/internal/olaaf"
)

// Tree is the content of a revision: repository path to file bytes.
type Tree map[string][]byte

// With returns a copy of t with path set to content.
func (t Tree) With(path string, content []byte) Tree {
	c := t.clone()
	c[path] = content
	return c
}

// Without returns a copy of t with path removed.
func (t Tree) Without(path string) Tree {
	c := t.clone()
	delete(c, path)
	return c
}

func (t Tree) clone() Tree {
	c := make(Tree, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// FakeLibrary is an in-memory olaaf.RevisionStore.
type FakeLibrary struct {
	mu    sync.Mutex
	repos map[string]*FakeRepository
}

func NewFakeLibrary() *FakeLibrary {
	return &FakeLibrary{repos: make(map[string]*FakeRepository)}
}

// Add creates an empty repository named name.
func (l *FakeLibrary) Add(name string) *FakeRepository {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := NewFakeRepository()
	l.repos[name] = r
	return r
}

func (l *FakeLibrary) Open(name string) (olaaf.RevisionSource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.repos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", olaaf.ErrRepositoryUnavailable, name)
	}
	return r, nil
}

var _ olaaf.RevisionStore = (*FakeLibrary)(nil)

// FakeRepository is an in-memory olaaf.RevisionSource. Commits hold whole
// trees and diffs are computed by comparing them.
type FakeRepository struct {
	mu       sync.Mutex
	trees    map[string]Tree
	times    map[string]time.Time
	branches map[string][]string
	failures map[string]error
	reads    int
	seq      int
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		trees:    make(map[string]Tree),
		times:    make(map[string]time.Time),
		branches: make(map[string][]string),
		failures: make(map[string]error),
	}
}

// Commit appends a revision with the given tree to branch and returns its SHA.
func (r *FakeRepository) Commit(branch string, tree Tree) string {
	return r.CommitAt(branch, tree, time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
}

// CommitAt is Commit with an explicit commit time.
func (r *FakeRepository) CommitAt(branch string, tree Tree, when time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	sha := fmt.Sprintf("%040x", r.seq)
	r.trees[sha] = tree.clone()
	r.times[sha] = when
	r.branches[branch] = append(r.branches[branch], sha)
	return sha
}

// FailReads makes every ReadBlob of path return err.
func (r *FakeRepository) FailReads(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[path] = err
}

// Reads returns how many blobs have been read.
func (r *FakeRepository) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *FakeRepository) ListRevisions(ref string) ([]olaaf.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shas, ok := r.branches[ref]
	if !ok {
		return nil, fmt.Errorf("unknown ref %q", ref)
	}
	revs := make([]olaaf.Revision, len(shas))
	for i, sha := range shas {
		revs[i] = olaaf.Revision{SHA: sha, CommittedAt: r.times[sha]}
	}
	return revs, nil
}

func (r *FakeRepository) ListPublicationBranches() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.branches {
		if olaaf.IsPublicationBranch(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *FakeRepository) Diff(fromSHA, toSHA string) ([]olaaf.DiffEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := Tree{}
	if fromSHA != olaaf.EmptyTreeSHA {
		t, ok := r.trees[fromSHA]
		if !ok {
			return nil, fmt.Errorf("unknown revision %s", fromSHA)
		}
		from = t
	}
	to, ok := r.trees[toSHA]
	if !ok {
		return nil, fmt.Errorf("unknown revision %s", toSHA)
	}

	var entries []olaaf.DiffEntry
	for path, content := range to {
		old, existed := from[path]
		switch {
		case !existed:
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffAdded, Path: path})
		case !bytes.Equal(old, content):
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffModified, Path: path})
		}
	}
	for path := range from {
		if _, ok := to[path]; !ok {
			entries = append(entries, olaaf.DiffEntry{Action: olaaf.DiffDeleted, Path: path})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (r *FakeRepository) ReadBlob(sha, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if err := r.failures[path]; err != nil {
		return nil, err
	}
	tree, ok := r.trees[sha]
	if !ok {
		return nil, fmt.Errorf("unknown revision %s", sha)
	}
	content, ok := tree[path]
	if !ok {
		return nil, fmt.Errorf("%s not found at %s", path, sha)
	}
	return content, nil
}

var _ olaaf.RevisionSource = (*FakeRepository)(nil)

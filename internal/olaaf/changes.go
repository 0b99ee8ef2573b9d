package olaaf

import (
	"fmt"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/fingerprint"
	"olaaf-go/internal/render"
)

// commitResult counts what applying one commit changed.
type commitResult struct {
	paths    []*sqlc.Path
	opened   int
	closed   int
	warnings int
}

// applyCommit diffs prevSHA against commit and records the changes in one
// transaction. Nothing is written unless every staged change succeeds.
func (w *walker) applyCommit(publication *sqlc.Publication, prevSHA string, commit *sqlc.Commit) (*commitResult, error) {
	entries, err := w.source.Diff(prevSHA, commit.SHA)
	if err != nil {
		return nil, fmt.Errorf("diffing %s..%s: %w", prevSHA, commit.SHA, err)
	}

	writer, err := w.database.BeginChanges(publication, commit)
	if err != nil {
		return nil, fmt.Errorf("beginning changes: %w", err)
	}
	defer writer.Rollback()

	cs := &changeSet{
		writer:    writer,
		batchSize: w.opts.LookupBatchSize,
		logger:    w.logger,
		result:    &commitResult{},
	}

	for _, entry := range entries {
		kind := KindForFile(entry.Path)
		if kind == DocumentUnsupported {
			continue
		}
		if w.opts.Filter.ShouldIgnore(entry.Path) {
			w.logger.Debug("ignoring path", "path", entry.Path)
			continue
		}

		doc, err := w.stage(commit, entry, kind)
		if err != nil {
			return nil, err
		}
		cs.add(doc)

		if cs.size >= w.opts.MaxWorkingSetBytes {
			if err := cs.flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := cs.flush(); err != nil {
		return nil, err
	}
	if err := writer.Commit(); err != nil {
		return nil, fmt.Errorf("committing changes: %w", err)
	}
	return cs.result, nil
}

// stage reads and fingerprints one changed document. Render failures leave
// only the bitstream fingerprint.
func (w *walker) stage(commit *sqlc.Commit, entry DiffEntry, kind DocumentKind) (*stagedDocument, error) {
	doc := &stagedDocument{
		action:     entry.Action,
		filesystem: entry.Path,
		values:     make(map[HashKind]string, len(HashKinds)),
	}
	if entry.Action == DiffDeleted {
		return doc, nil
	}

	content, err := w.source.ReadBlob(commit.SHA, entry.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", entry.Path, commit.SHA, err)
	}
	doc.values[HashBitstream] = fingerprint.Bitstream(content)

	var rendered *render.Document
	if kind == DocumentHTML {
		rendered, err = w.renderer.Render(content)
		if err != nil {
			w.logger.Warn("rendering failed, keeping bitstream only", "path", entry.Path, "error", err)
			rendered = nil
		}
		if value, ok := fingerprint.Rendered(rendered); ok {
			doc.values[HashRendered] = value
		}
	}

	if entry.Action == DiffAdded {
		doc.path = &NewPath{
			Filesystem: entry.Path,
			URL:        ResolveURL(entry.Path, kind, rendered),
		}
		if rendered != nil {
			if hint, ok := rendered.SearchPath(); ok {
				doc.path.SearchPath = hint
			} else {
				w.logger.Debug("document has no search path", "path", entry.Path, "title", rendered.Title())
			}
			doc.path.Citation, _ = rendered.Citation()
		}
	}
	return doc, nil
}

// stagedDocument is one changed document waiting to be written.
type stagedDocument struct {
	action     DiffAction
	filesystem string
	path       *NewPath
	values     map[HashKind]string
}

// size approximates the memory a staged document holds.
func (d *stagedDocument) size() int {
	n := len(d.filesystem) + len(d.values)*(fingerprint.Size+8)
	if d.path != nil {
		n += len(d.path.URL) + len(d.path.SearchPath) + len(d.path.Citation)
	}
	return n
}

type hashKey struct {
	pathID int64
	kind   HashKind
}

// changeSet accumulates staged documents and resolves them against the open
// intervals of the index.
type changeSet struct {
	writer    ChangeWriter
	batchSize int
	logger    Logger
	result    *commitResult

	staged []*stagedDocument
	size   int
}

func (c *changeSet) add(doc *stagedDocument) {
	c.staged = append(c.staged, doc)
	c.size += doc.size()
}

type pendingHash struct {
	pathID int64
	kind   HashKind
	value  string
}

// flush writes the staged documents through the open transaction.
//
// For each (path, kind): an open row whose value equals the new one stays
// open; any other open row is closed at the current commit; a new value
// without an equal open row starts a new interval. Closes are issued before
// inserts so at most one interval per (path, kind) is ever open.
func (c *changeSet) flush() error {
	if len(c.staged) == 0 {
		return nil
	}
	defer func() {
		c.staged = nil
		c.size = 0
	}()

	filesystems := make([]string, len(c.staged))
	for i, doc := range c.staged {
		filesystems[i] = doc.filesystem
	}
	existing, err := Batched(filesystems, c.batchSize, c.writer.FindPaths)
	if err != nil {
		return fmt.Errorf("looking up paths: %w", err)
	}
	paths := make(map[string]*sqlc.Path, len(existing))
	for _, p := range existing {
		paths[p.Filesystem] = p
	}

	var pathIDs []int64
	for _, doc := range c.staged {
		p := paths[doc.filesystem]
		if p == nil {
			if doc.action != DiffAdded {
				c.logger.Warn("no path recorded for changed document", "path", doc.filesystem, "action", doc.action)
				c.result.warnings++
				continue
			}
			p, err = c.writer.CreatePath(*doc.path)
			if err != nil {
				return fmt.Errorf("creating path %s: %w", doc.filesystem, err)
			}
			paths[doc.filesystem] = p
			c.result.paths = append(c.result.paths, p)
		}
		pathIDs = append(pathIDs, p.ID)
	}

	open, err := Batched(pathIDs, c.batchSize, c.writer.FindOpenHashes)
	if err != nil {
		return fmt.Errorf("looking up open hashes: %w", err)
	}
	openByKey := make(map[hashKey]*sqlc.Hash, len(open))
	openByPath := make(map[int64]int, len(open))
	for _, h := range open {
		openByKey[hashKey{h.PathID, HashKind(h.Kind)}] = h
		openByPath[h.PathID]++
	}

	var closes []int64
	var inserts []pendingHash
	for _, doc := range c.staged {
		p := paths[doc.filesystem]
		if p == nil {
			continue
		}
		if doc.action == DiffDeleted && openByPath[p.ID] == 0 {
			c.logger.Warn("no open hash for deleted document", "path", doc.filesystem)
			c.result.warnings++
			continue
		}
		for _, kind := range HashKinds {
			current := openByKey[hashKey{p.ID, kind}]
			value, ok := doc.values[kind]
			if current != nil && ok && current.Value == value {
				continue
			}
			if current != nil {
				closes = append(closes, current.ID)
			}
			if ok {
				inserts = append(inserts, pendingHash{pathID: p.ID, kind: kind, value: value})
			}
		}
	}

	for _, id := range closes {
		if err := c.writer.CloseHash(id); err != nil {
			return fmt.Errorf("closing hash %d: %w", id, err)
		}
	}
	for _, h := range inserts {
		if _, err := c.writer.OpenHash(h.pathID, h.kind, h.value); err != nil {
			return fmt.Errorf("opening %s hash for path %d: %w", h.kind, h.pathID, err)
		}
	}

	c.result.closed += len(closes)
	c.result.opened += len(inserts)
	c.logger.Debug("flushed changes", "documents", len(c.staged), "closed", len(closes), "opened", len(inserts))
	return nil
}

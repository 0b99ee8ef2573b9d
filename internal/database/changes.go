package database

import (
	"context"
	"database/sql"
	"fmt"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/olaaf"
)

// changeWriter applies one commit inside a single transaction. It holds the
// only pooled connection until Commit or Rollback.
type changeWriter struct {
	ctx           context.Context
	tx            *sql.Tx
	qtx           *sqlc.Queries
	publicationID int64
	commitID      int64
	done          bool
}

func (w *changeWriter) FindPaths(filesystems []string) ([]*sqlc.Path, error) {
	if len(filesystems) == 0 {
		return nil, nil
	}
	paths, err := w.qtx.GetPathsByFilesystems(w.ctx, sqlc.GetPathsByFilesystemsParams{
		PublicationID: w.publicationID,
		Filesystems:   filesystems,
	})
	if err != nil {
		return nil, fmt.Errorf("finding paths: %w", err)
	}
	return pointers(paths), nil
}

func (w *changeWriter) FindOpenHashes(pathIDs []int64) ([]*sqlc.Hash, error) {
	if len(pathIDs) == 0 {
		return nil, nil
	}
	hashes, err := w.qtx.GetOpenHashesByPathIDs(w.ctx, pathIDs)
	if err != nil {
		return nil, fmt.Errorf("finding open hashes: %w", err)
	}
	return pointers(hashes), nil
}

func (w *changeWriter) CreatePath(p olaaf.NewPath) (*sqlc.Path, error) {
	created, err := w.qtx.InsertPath(w.ctx, sqlc.InsertPathParams{
		PublicationID: w.publicationID,
		Filesystem:    p.Filesystem,
		URL:           p.URL,
		SearchPath:    nullString(p.SearchPath),
		Citation:      nullString(p.Citation),
	})
	if err != nil {
		return nil, fmt.Errorf("creating path %s: %w", p.Filesystem, err)
	}
	return &created, nil
}

func (w *changeWriter) CloseHash(hashID int64) error {
	n, err := w.qtx.CloseHash(w.ctx, sqlc.CloseHashParams{
		EndCommitID: sql.NullInt64{Int64: w.commitID, Valid: true},
		ID:          hashID,
	})
	if err != nil {
		return fmt.Errorf("closing hash %d: %w", hashID, err)
	}
	if n != 1 {
		return fmt.Errorf("closing hash %d: no open row", hashID)
	}
	return nil
}

func (w *changeWriter) OpenHash(pathID int64, kind olaaf.HashKind, value string) (*sqlc.Hash, error) {
	h, err := w.qtx.InsertHash(w.ctx, sqlc.InsertHashParams{
		PathID:        pathID,
		Value:         value,
		Kind:          string(kind),
		StartCommitID: w.commitID,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s hash for path %d: %w", kind, pathID, err)
	}
	return &h, nil
}

func (w *changeWriter) Commit() error {
	if w.done {
		return fmt.Errorf("change writer already finished")
	}
	w.done = true
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}
	return nil
}

func (w *changeWriter) Rollback() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back changes: %w", err)
	}
	return nil
}

var _ olaaf.ChangeWriter = (*changeWriter)(nil)

package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"olaaf-go/internal/olaaf"
)

// DefaultKeep is the number of snapshot versions a FileSystemVault retains.
const DefaultKeep = 5

const snapshotExt = ".snap"

// FileSystemVault stores every published version of a snapshot as its own
// file and prunes the oldest beyond keep:
//
//	<root>/
//	  <name>/
//	    000000000007.snap
//	    000000000012.snap
//
// The newest file is the current snapshot, so a reader never sees a version
// without its data.
type FileSystemVault struct {
	name string
	root string
	keep int
}

// NewFileSystemVault creates a filesystem vault rooted at root. keep <= 0
// means DefaultKeep.
func NewFileSystemVault(name, root string, keep int) (*FileSystemVault, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating vault root: %w", err)
	}
	return &FileSystemVault{name: name, root: root, keep: keep}, nil
}

// PutSnapshot stores version as a new file. A version older than the
// current one is refused; the same version replaces its file.
func (v *FileSystemVault) PutSnapshot(name string, r io.Reader, size int64, version int64) error {
	if version <= 0 {
		return fmt.Errorf("invalid snapshot version %d", version)
	}
	current, err := v.GetSnapshotVersion(name)
	if err != nil {
		return err
	}
	if version < current {
		return fmt.Errorf("snapshot version %d is older than stored version %d", version, current)
	}

	dir := v.snapshotDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := installFile(filepath.Join(dir, versionFile(version)), r, size); err != nil {
		return err
	}
	return v.prune(name)
}

// GetSnapshot writes the newest version of the named snapshot to w.
func (v *FileSystemVault) GetSnapshot(name string, w io.Writer) error {
	version, err := v.GetSnapshotVersion(name)
	if err != nil {
		return err
	}
	if version == 0 {
		return fmt.Errorf("snapshot %q not found in vault %s", name, v.name)
	}
	return v.GetSnapshotAt(name, version, w)
}

// GetSnapshotAt writes one retained version of the named snapshot to w.
func (v *FileSystemVault) GetSnapshotAt(name string, version int64, w io.Writer) error {
	f, err := os.Open(filepath.Join(v.snapshotDir(name), versionFile(version)))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("snapshot %q version %d not found in vault %s", name, version, v.name)
	}
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns the newest stored version, or 0.
func (v *FileSystemVault) GetSnapshotVersion(name string) (int64, error) {
	versions, err := v.Versions(name)
	if err != nil || len(versions) == 0 {
		return 0, err
	}
	return versions[len(versions)-1], nil
}

// Versions lists the retained versions of name, oldest first. Files that do
// not parse as versions are ignored.
func (v *FileSystemVault) Versions(name string) ([]int64, error) {
	entries, err := os.ReadDir(v.snapshotDir(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var versions []int64
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), snapshotExt)
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.ParseInt(base, 10, 64); err == nil && n > 0 {
			versions = append(versions, n)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

// ValidateSetup checks that the root is a writable directory.
func (v *FileSystemVault) ValidateSetup() error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}
	tmp, err := os.CreateTemp(v.root, ".writable-*")
	if err != nil {
		return fmt.Errorf("vault root not writable: %w", err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

func (v *FileSystemVault) prune(name string) error {
	versions, err := v.Versions(name)
	if err != nil {
		return err
	}
	for len(versions) > v.keep {
		if err := os.Remove(filepath.Join(v.snapshotDir(name), versionFile(versions[0]))); err != nil {
			return fmt.Errorf("pruning snapshot %d: %w", versions[0], err)
		}
		versions = versions[1:]
	}
	return nil
}

func (v *FileSystemVault) snapshotDir(name string) string {
	return filepath.Join(v.root, filepath.Base(name))
}

// versionFile zero-pads so directory listings sort by version.
func versionFile(version int64) string {
	return fmt.Sprintf("%012d%s", version, snapshotExt)
}

// installFile copies exactly size bytes from r into a temp file beside dest
// and renames it over dest.
func installFile(dest string, r io.Reader, size int64) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, n)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("installing snapshot: %w", err)
	}
	return nil
}

var _ olaaf.Vault = (*FileSystemVault)(nil)

package olaaf

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"olaaf-go/internal/render"
)

// EmptyTreeSHA identifies the empty tree. Diffing from it reports every file
// of the target revision as added.
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// DateLayout is the calendar date format used for publications and commits.
const DateLayout = "2006-01-02"

// LatestPublication selects the most recent non-revoked publication.
const LatestPublication = "latest"

var (
	// ErrInvalidInput reports a malformed sync description or query.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRepositoryUnavailable reports a repository directory that cannot be opened.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	// ErrRepositoryNotFound reports a repository with no indexed history.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrPublicationNotFound reports an unknown or revoked publication.
	ErrPublicationNotFound = errors.New("publication not found")
)

// HashKind distinguishes the two fingerprint flavours.
type HashKind string

const (
	HashBitstream HashKind = "B"
	HashRendered  HashKind = "R"
)

// HashKinds lists every kind in a stable order.
var HashKinds = []HashKind{HashBitstream, HashRendered}

func (k HashKind) String() string {
	switch k {
	case HashBitstream:
		return "bitstream"
	case HashRendered:
		return "rendered"
	default:
		return string(k)
	}
}

// ParseHashKind accepts the stored code or the long name.
func ParseHashKind(s string) (HashKind, error) {
	switch strings.ToLower(s) {
	case "b", "bitstream":
		return HashBitstream, nil
	case "r", "rendered":
		return HashRendered, nil
	}
	return "", fmt.Errorf("%w: unknown hash kind %q", ErrInvalidInput, s)
}

// DocumentKind is the closed set of document types the index tracks.
type DocumentKind int

const (
	DocumentUnsupported DocumentKind = iota
	DocumentHTML
	DocumentPDF
)

func (k DocumentKind) String() string {
	switch k {
	case DocumentHTML:
		return "html"
	case DocumentPDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// KindForFile classifies a repository file by its extension.
func KindForFile(filesystem string) DocumentKind {
	switch strings.ToLower(path.Ext(filesystem)) {
	case ".html", ".htm":
		return DocumentHTML
	case ".pdf":
		return DocumentPDF
	default:
		return DocumentUnsupported
	}
}

// KindForRequest classifies a query. An explicit content type wins; otherwise
// the logical URL decides, where extensionless URLs are HTML pages.
func KindForRequest(contentType, url string) DocumentKind {
	if contentType != "" {
		mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
		switch strings.TrimSpace(mediaType) {
		case "text/html", "application/xhtml+xml", "html":
			return DocumentHTML
		case "application/pdf", "pdf":
			return DocumentPDF
		default:
			return DocumentUnsupported
		}
	}
	if path.Ext(url) == "" {
		return DocumentHTML
	}
	return KindForFile(url)
}

// DiffAction is the kind of change a diff entry reports.
type DiffAction int

const (
	DiffAdded DiffAction = iota
	DiffModified
	DiffDeleted
)

func (a DiffAction) String() string {
	switch a {
	case DiffAdded:
		return "added"
	case DiffModified:
		return "modified"
	case DiffDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DiffEntry is one changed file between two revisions.
// Renames are reported as a delete plus an add.
type DiffEntry struct {
	Action DiffAction
	Path   string
}

// Revision is a commit on a publication line.
type Revision struct {
	SHA         string
	CommittedAt time.Time
}

// RevisionSource reads history from one document repository.
type RevisionSource interface {
	// ListRevisions returns the commits reachable from ref, oldest first.
	ListRevisions(ref string) ([]Revision, error)

	// ListPublicationBranches returns the names of publication branches.
	ListPublicationBranches() ([]string, error)

	// Diff lists changed files between two commits. fromSHA may be EmptyTreeSHA.
	Diff(fromSHA, toSHA string) ([]DiffEntry, error)

	// ReadBlob returns the content of a file as of commit sha.
	ReadBlob(sha, filesystem string) ([]byte, error)
}

// RevisionStore opens repositories by name.
type RevisionStore interface {
	// Open returns ErrRepositoryUnavailable (wrapped) if the repository
	// does not exist.
	Open(name string) (RevisionSource, error)
}

// Renderer canonicalizes HTML. Renderers are scoped handles and must be closed.
type Renderer interface {
	Render(content []byte) (*render.Document, error)
	// Rendered counts the documents produced since the renderer was created.
	Rendered() int
	Close() error
}

// RendererFactory creates a renderer for the duration of one run.
type RendererFactory func() (Renderer, error)

// NewHTMLRendererFactory returns a factory producing render.HTMLRenderer values.
func NewHTMLRendererFactory() RendererFactory {
	return func() (Renderer, error) {
		return render.NewHTMLRenderer(), nil
	}
}

// PathFilter decides whether a repository path is excluded from indexing.
type PathFilter interface {
	ShouldIgnore(filesystem string) bool
}

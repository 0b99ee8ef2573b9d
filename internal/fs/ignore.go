package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreFileName is the per-library file listing extra ignore patterns.
const IgnoreFileName = ".olaafignore"

// ignorePattern is a parsed pattern. Patterns containing '/' match the whole
// repository path; others match the final path element.
type ignorePattern struct {
	pattern   string
	matchPath bool
}

// DocumentFilter excludes repository paths from indexing.
//
// Paths under any directory whose name starts with '_' or '.' are always
// excluded: those hold build templates, site assets and VCS metadata, never
// published documents. Configured glob patterns exclude further paths.
type DocumentFilter struct {
	patterns []ignorePattern
}

// NewDocumentFilter creates a filter from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewDocumentFilter(rawPatterns []string) *DocumentFilter {
	f := &DocumentFilter{}
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		f.patterns = append(f.patterns, ignorePattern{
			pattern:   strings.TrimPrefix(raw, "/"),
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return f
}

// ShouldIgnore reports whether a slash-separated repository path is excluded.
func (f *DocumentFilter) ShouldIgnore(filesystem string) bool {
	clean := strings.TrimPrefix(path.Clean("/"+filesystem), "/")
	dirs := strings.Split(clean, "/")
	for _, elem := range dirs[:len(dirs)-1] {
		if strings.HasPrefix(elem, "_") || strings.HasPrefix(elem, ".") {
			return true
		}
	}

	base := path.Base(clean)
	for _, p := range f.patterns {
		subject := base
		if p.matchPath {
			subject = clean
		}
		matched, err := path.Match(p.pattern, subject)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Patterns returns the number of configured patterns.
func (f *DocumentFilter) Patterns() int {
	return len(f.patterns)
}

// ParseIgnoreFile reads one pattern per line. A missing file yields no patterns.
func ParseIgnoreFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}

package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SHA256Hex returns the SHA-256 checksum of data as a lowercase hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Page builds an HTML document with the markers the index looks for.
type Page struct {
	Title        string
	CanonicalURL string
	SearchPath   string
	Citation     string
	// Auth is the body of the authenticatable fragment. The fragment is
	// omitted when NoAuth is set.
	Auth    string
	NoAuth  bool
	Outside string
}

// Bytes renders the page with a trailing newline, as checked-out files have.
func (p Page) Bytes() []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", p.Title)
	if p.CanonicalURL != "" {
		fmt.Fprintf(&b, "<meta property=\"og:url\" content=\"%s\">\n", p.CanonicalURL)
	}
	if p.Citation != "" {
		fmt.Fprintf(&b, "<meta name=\"citation\" content=\"%s\">\n", p.Citation)
	}
	b.WriteString("</head>\n<body>\n")
	if p.SearchPath != "" {
		fmt.Fprintf(&b, "<nav data-search-path=\"%s\"></nav>\n", p.SearchPath)
	}
	if p.Outside != "" {
		fmt.Fprintf(&b, "<aside>%s</aside>\n", p.Outside)
	}
	if !p.NoAuth {
		fmt.Fprintf(&b, "<div class=\"content tuf-authenticate\">%s</div>\n", p.Auth)
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// PDF returns bytes that look enough like a PDF for the index.
func PDF(body string) []byte {
	return []byte("%PDF-1.4\n" + body + "\n%%EOF\n")
}

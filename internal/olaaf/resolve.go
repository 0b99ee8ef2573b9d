package olaaf

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"olaaf-go/internal/render"
)

// ResolveURL derives the logical URL of a document stored at filesystem.
//
// Non-HTML documents are served at their repository path. HTML documents use
// the path of their og:url hint when present; otherwise index.html maps to
// its directory and any other page drops its extension.
func ResolveURL(filesystem string, kind DocumentKind, doc *render.Document) string {
	clean := "/" + strings.TrimPrefix(path.Clean("/"+filesystem), "/")
	if kind != DocumentHTML {
		return clean
	}

	if doc != nil {
		if canonical, ok := doc.CanonicalURL(); ok {
			if u, err := url.Parse(canonical); err == nil {
				if u.Path == "" {
					return "/"
				}
				return u.Path
			}
		}
	}

	dir, file := path.Split(clean)
	if file == "index.html" || file == "index.htm" {
		if dir == "/" {
			return "/"
		}
		return strings.TrimSuffix(dir, "/")
	}
	return strings.TrimSuffix(clean, path.Ext(clean))
}

// NormalizeURL prepares a query URL for lookup: scheme, host, query and
// fragment are dropped and the path gets a leading slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && (u.Scheme != "" || u.Host != "") {
		raw = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" || raw == "/" {
		return "/"
	}
	return "/" + strings.Trim(raw, "/")
}

// LocalURLPrefix is the prefix the dated-edition viewer adds to local links:
// /_date/<date>, or /_date/<date>/_doc/<document> when a document is named.
func LocalURLPrefix(date, document string) string {
	if document == "" {
		return "/_date/" + date
	}
	return "/_date/" + date + "/_doc/" + document
}

// ResetLocalURLs undoes the link rewriting of a page fetched from a dated
// view of publication, so it fingerprints like the checked-in file. The
// publication-qualified form is stripped before the bare prefix.
func ResetLocalURLs(content []byte, publication, date, document string) []byte {
	if date == "" {
		return content
	}
	prefix := LocalURLPrefix(date, document)
	if publication != "" {
		content = bytes.ReplaceAll(content, []byte("/_publication/"+publication+prefix), nil)
	}
	return bytes.ReplaceAll(content, []byte(prefix), nil)
}

// Package fingerprint computes the content hashes stored in the history index.
//
// Two fingerprints exist for a document. The bitstream fingerprint covers the
// raw bytes after Normalize. The rendered fingerprint covers the canonical
// serialization of an HTML document's authenticatable fragment and is only
// defined when that fragment is present.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"olaaf-go/internal/render"
)

// Size is the length of a hex-encoded fingerprint.
const Size = sha256.Size * 2

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Normalize strips a single trailing line terminator ("\n" or "\r\n").
// Indexing and querying both go through Normalize, so a document checked out
// with or without a final newline fingerprints the same.
func Normalize(content []byte) []byte {
	if bytes.HasSuffix(content, []byte("\r\n")) {
		return content[:len(content)-2]
	}
	if bytes.HasSuffix(content, []byte("\n")) {
		return content[:len(content)-1]
	}
	return content
}

// Bitstream fingerprints the normalized raw bytes.
func Bitstream(content []byte) string {
	return Sum(Normalize(content))
}

// Rendered fingerprints the authenticatable fragment of doc.
// The second return value is false when doc has no such fragment.
func Rendered(doc *render.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	fragment := doc.AuthFragment()
	if fragment == nil {
		return "", false
	}
	data, err := render.RenderNode(fragment)
	if err != nil {
		return "", false
	}
	return Sum(data), true
}

// Valid reports whether s looks like a fingerprint produced by Sum.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

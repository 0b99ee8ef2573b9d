package render

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AuthClass marks the element whose subtree is the authenticatable fragment.
const AuthClass = "tuf-authenticate"

// ErrClosed is returned by a renderer used after Close.
var ErrClosed = errors.New("renderer is closed")

// preserved lists elements whose text content is kept byte-for-byte.
var preserved = map[atom.Atom]bool{
	atom.Pre:      true,
	atom.Textarea: true,
	atom.Script:   true,
	atom.Style:    true,
}

// HTMLRenderer turns raw HTML into a canonical Document.
// A renderer is a scoped handle: create one per run and Close it when done.
type HTMLRenderer struct {
	closed bool
	count  int
}

// NewHTMLRenderer creates a ready-to-use renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render parses content and canonicalizes the resulting tree.
func (r *HTMLRenderer) Render(content []byte) (*Document, error) {
	if r.closed {
		return nil, ErrClosed
	}
	r.count++
	return Parse(content)
}

// Rendered returns how many documents this renderer has produced.
func (r *HTMLRenderer) Rendered() int {
	return r.count
}

// Close releases the renderer. Further Render calls fail with ErrClosed.
func (r *HTMLRenderer) Close() error {
	r.closed = true
	return nil
}

// Parse builds a canonical Document from raw HTML.
//
// Canonicalization removes comments, collapses runs of ASCII whitespace in
// text nodes (outside pre, textarea, script and style) to a single space and
// orders attributes by name. Entities are decoded by the parser and
// re-encoded uniformly on serialization, so two spellings of the same
// character produce the same tree.
func Parse(content []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	canonicalize(root, false)
	return &Document{root: root}, nil
}

func canonicalize(n *html.Node, keepText bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.CommentNode:
			n.RemoveChild(c)
		case html.TextNode:
			if !keepText {
				c.Data = collapseSpace(c.Data)
				if c.Data == "" {
					n.RemoveChild(c)
				}
			}
		case html.ElementNode:
			sort.SliceStable(c.Attr, func(i, j int) bool {
				if c.Attr[i].Namespace != c.Attr[j].Namespace {
					return c.Attr[i].Namespace < c.Attr[j].Namespace
				}
				return c.Attr[i].Key < c.Attr[j].Key
			})
			canonicalize(c, keepText || preserved[c.DataAtom])
		default:
			canonicalize(c, keepText)
		}
		c = next
	}
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// collapseSpace reduces every run of ASCII whitespace to one space.
// Non-breaking spaces are content and are left alone.
func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	fields := strings.FieldsFunc(s, isHTMLSpace)
	if len(fields) == 0 {
		return " "
	}
	var b strings.Builder
	if isHTMLSpace(rune(s[0])) {
		b.WriteByte(' ')
	}
	b.WriteString(strings.Join(fields, " "))
	if isHTMLSpace(rune(s[len(s)-1])) {
		b.WriteByte(' ')
	}
	return b.String()
}

// Document is a canonicalized HTML tree.
type Document struct {
	root *html.Node
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Bytes serializes the whole canonical document.
func (d *Document) Bytes() ([]byte, error) {
	return RenderNode(d.root)
}

// AuthFragment returns the first element carrying the AuthClass class token,
// or nil if the document has no authenticatable fragment.
func (d *Document) AuthFragment() *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, AuthClass) {
			found = n
			return false
		}
		return true
	})
	return found
}

// CanonicalURL returns the content of the first element whose property
// attribute names og:url.
func (d *Document) CanonicalURL() (string, bool) {
	var url string
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if prop, ok := attr(n, "property"); ok && strings.Contains(prop, "og:url") {
			if content, ok := attr(n, "content"); ok && content != "" {
				url = content
				return false
			}
		}
		return true
	})
	return url, url != ""
}

// SearchPath returns the last data-search-path value in document order.
func (d *Document) SearchPath() (string, bool) {
	var value string
	var seen bool
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := attr(n, "data-search-path"); ok {
				value, seen = v, true
			}
		}
		return true
	})
	return value, seen
}

// Citation returns the content of <meta name="citation">.
func (d *Document) Citation() (string, bool) {
	var citation string
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			if name, _ := attr(n, "name"); name == "citation" {
				citation, _ = attr(n, "content")
				return false
			}
		}
		return true
	})
	return citation, citation != ""
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	var title string
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return false
		}
		return true
	})
	return title
}

// RenderNode serializes n and its subtree.
func RenderNode(n *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, fmt.Errorf("rendering node: %w", err)
	}
	return buf.Bytes(), nil
}

// walk visits nodes in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	classes, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.FieldsFunc(classes, isHTMLSpace) {
		if c == class {
			return true
		}
	}
	return false
}

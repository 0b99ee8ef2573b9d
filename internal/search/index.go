// Package search keeps a full-text index of the documents the history index
// knows about, so a reader can find a document by its title path or citation.
package search

import (
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/olaaf"
)

// Index wraps a Bleve search index
type Index struct {
	index bleve.Index
}

var _ olaaf.PathIndexer = (*Index)(nil)

// PathDocument is the indexed form of a path.
type PathDocument struct {
	Repository  string
	Publication string
	Filesystem  string
	URL         string
	SearchPath  string
	Citation    string
}

// Result is one search hit.
type Result struct {
	PathDocument
	Score     float64
	Fragments map[string][]string
}

// Open opens the index at path, creating it when missing.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// NewMemory returns an index that lives only as long as the process.
func NewMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildIndexMapping analyzes the hints as English text and keeps
// identifiers whole.
func buildIndexMapping() mapping.IndexMapping {
	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "en"

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("Repository", exact)
	doc.AddFieldMappingsAt("Publication", exact)
	doc.AddFieldMappingsAt("Filesystem", exact)
	doc.AddFieldMappingsAt("URL", exact)
	doc.AddFieldMappingsAt("SearchPath", text)
	doc.AddFieldMappingsAt("Citation", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultField = "SearchPath"
	return m
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

func documentID(repository, publication, filesystem string) string {
	return repository + "\x00" + publication + "\x00" + filesystem
}

// IndexPaths adds or replaces the given paths in one batch.
func (i *Index) IndexPaths(repository, publication string, paths []*sqlc.Path) error {
	batch := i.index.NewBatch()
	for _, p := range paths {
		doc := &PathDocument{
			Repository:  repository,
			Publication: publication,
			Filesystem:  p.Filesystem,
			URL:         p.URL,
			SearchPath:  p.SearchPath.String,
			Citation:    p.Citation.String,
		}
		if err := batch.Index(documentID(repository, publication, p.Filesystem), doc); err != nil {
			return fmt.Errorf("batch index %s: %w", p.Filesystem, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Search runs a query-string query. Non-empty repository and publication
// restrict the hits to that publication line.
func (i *Index) Search(queryStr, repository, publication string, limit int) ([]*Result, error) {
	clauses := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	for field, value := range map[string]string{"Repository": repository, "Publication": publication} {
		if value == "" {
			continue
		}
		term := bleve.NewTermQuery(value)
		term.SetField(field)
		clauses = append(clauses, term)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(clauses...), limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Fields = []string{"Repository", "Publication", "Filesystem", "URL", "SearchPath", "Citation"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{Score: hit.Score, Fragments: hit.Fragments}
		r.Repository, _ = hit.Fields["Repository"].(string)
		r.Publication, _ = hit.Fields["Publication"].(string)
		r.Filesystem, _ = hit.Fields["Filesystem"].(string)
		r.URL, _ = hit.Fields["URL"].(string)
		r.SearchPath, _ = hit.Fields["SearchPath"].(string)
		r.Citation, _ = hit.Fields["Citation"].(string)
		results = append(results, r)
	}
	return results, nil
}

// Count returns the number of documents in the index
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Rebuild indexes every path of every publication recorded in db and
// returns how many paths it indexed.
func (i *Index) Rebuild(db olaaf.Database) (int, error) {
	repos, err := db.ListRepositories()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, repo := range repos {
		pubs, err := db.ListPublications(repo.ID)
		if err != nil {
			return total, fmt.Errorf("listing publications of %s: %w", repo.Name, err)
		}
		for _, pub := range pubs {
			paths, err := db.FindPathsByPublication(pub.ID)
			if err != nil {
				return total, fmt.Errorf("listing paths of %s: %w", pub.Name, err)
			}
			if err := i.IndexPaths(repo.Name, pub.Name, paths); err != nil {
				return total, err
			}
			total += len(paths)
		}
	}
	return total, nil
}

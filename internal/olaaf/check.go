package olaaf

import (
	"fmt"
	"time"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/fingerprint"
)

// CheckRequest asks whether content is an authentic version of a document.
type CheckRequest struct {
	Repository string
	// Publication selects a publication by name. Empty or "latest" selects
	// the latest non-revoked publication.
	Publication string
	// Date, when set (YYYY-MM-DD), asks about that day instead of today.
	Date string
	// Document names the /_doc/ segment of a dated view. Requires Date.
	Document string
	// URL is the logical path of the document.
	URL string
	// ContentType overrides the kind derived from the URL.
	ContentType string
	Content     []byte
}

// AuthenticityResult is the outcome of a check. ValidFrom and ValidTo bound
// the matched interval; an empty ValidTo means the interval is still open.
type AuthenticityResult struct {
	URL           string
	Publication   string
	Kind          HashKind
	Value         string
	Authenticable bool
	Authentic     bool
	Current       bool
	ValidFrom     string
	ValidTo       string
	Date          string
}

// Check fingerprints req.Content the same way sync does and looks the result
// up in the index.
//
// An unknown repository or publication is an error. A URL unknown to the
// publication, or content of an unsupported type, yields a result with
// Authenticable false.
func (s *Service) Check(req CheckRequest) (*AuthenticityResult, error) {
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if req.Document != "" && req.Date == "" {
		return nil, fmt.Errorf("%w: document %q given without a date", ErrInvalidInput, req.Document)
	}
	url := NormalizeURL(req.URL)

	publication, latest, err := s.resolvePublication(req.Repository, req.Publication)
	if err != nil {
		return nil, err
	}

	result := &AuthenticityResult{URL: url, Publication: publication.Name, Date: req.Date}
	switch KindForRequest(req.ContentType, url) {
	case DocumentPDF:
		result.Kind, result.Value = HashBitstream, fingerprint.Bitstream(req.Content)
	case DocumentHTML:
		content := ResetLocalURLs(req.Content, publication.Name, req.Date, req.Document)
		result.Kind, result.Value, err = s.fingerprintHTML(content)
		if err != nil {
			return nil, err
		}
	default:
		return result, nil
	}

	return result, s.decide(result, publication, latest)
}

// CheckValue answers the same question for a precomputed fingerprint.
func (s *Service) CheckValue(repository, publication, date, url string, kind HashKind, value string) (*AuthenticityResult, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if !fingerprint.Valid(value) {
		return nil, fmt.Errorf("%w: malformed fingerprint %q", ErrInvalidInput, value)
	}

	pub, latest, err := s.resolvePublication(repository, publication)
	if err != nil {
		return nil, err
	}
	result := &AuthenticityResult{
		URL:         NormalizeURL(url),
		Publication: pub.Name,
		Kind:        kind,
		Value:       value,
		Date:        date,
	}
	return result, s.decide(result, pub, latest)
}

// fingerprintHTML uses the rendered fingerprint when the page carries an
// authenticatable fragment and the bitstream fingerprint otherwise.
func (s *Service) fingerprintHTML(content []byte) (HashKind, string, error) {
	renderer, err := s.renderers()
	if err != nil {
		return "", "", fmt.Errorf("starting renderer: %w", err)
	}
	defer renderer.Close()

	doc, err := renderer.Render(content)
	if err != nil {
		s.logger.Debug("rendering query content failed", "error", err)
		return HashBitstream, fingerprint.Bitstream(content), nil
	}
	if value, ok := fingerprint.Rendered(doc); ok {
		return HashRendered, value, nil
	}
	return HashBitstream, fingerprint.Bitstream(content), nil
}

// decide fills in the authenticity fields of result.
func (s *Service) decide(result *AuthenticityResult, publication, latest *sqlc.Publication) error {
	known, err := s.database.HasPathWithURL(publication.ID, result.URL)
	if err != nil {
		return fmt.Errorf("finding path %s: %w", result.URL, err)
	}
	if !known {
		return nil
	}
	result.Authenticable = true

	intervals, err := s.database.FindHashIntervals(publication.ID, result.URL, result.Kind, result.Value)
	if err != nil {
		return fmt.Errorf("finding hash intervals: %w", err)
	}
	if len(intervals) == 0 {
		return nil
	}

	iv := pickInterval(intervals, result.Date)
	result.ValidFrom = iv.StartDate
	if iv.EndDate.Valid {
		result.ValidTo = iv.EndDate.String
	}

	if result.Date == "" {
		result.Authentic = true
		result.Current = !iv.EndDate.Valid && latest != nil && publication.ID == latest.ID
		return nil
	}
	result.Authentic = covers(iv, result.Date)
	return nil
}

// pickInterval prefers the interval covering date, or the open interval when
// no date is given, and falls back to the first.
func pickInterval(intervals []*sqlc.FindHashIntervalsRow, date string) *sqlc.FindHashIntervalsRow {
	for _, iv := range intervals {
		if date == "" && !iv.EndDate.Valid {
			return iv
		}
		if date != "" && covers(iv, date) {
			return iv
		}
	}
	return intervals[0]
}

// covers compares YYYY-MM-DD strings, whose lexical order is calendar order.
func covers(iv *sqlc.FindHashIntervalsRow, date string) bool {
	if date < iv.StartDate {
		return false
	}
	return !iv.EndDate.Valid || date <= iv.EndDate.String
}

// resolvePublication returns the selected publication and the latest one.
func (s *Service) resolvePublication(repositoryName, name string) (*sqlc.Publication, *sqlc.Publication, error) {
	repository, err := s.database.FindRepositoryByName(repositoryName)
	if err != nil {
		return nil, nil, fmt.Errorf("finding repository: %w", err)
	}
	if repository == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, repositoryName)
	}

	latest, err := s.database.FindLatestPublication(repository.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("finding latest publication: %w", err)
	}

	if name == "" || name == LatestPublication {
		if latest == nil {
			return nil, nil, fmt.Errorf("%w: %s has no active publication", ErrPublicationNotFound, repositoryName)
		}
		return latest, latest, nil
	}

	publication, err := s.database.FindActivePublication(repository.ID, name)
	if err != nil {
		return nil, nil, fmt.Errorf("finding publication: %w", err)
	}
	if publication == nil {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrPublicationNotFound, repositoryName, name)
	}
	return publication, latest, nil
}

func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}
	return nil
}

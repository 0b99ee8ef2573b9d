package olaaf

import (
	"fmt"

	"olaaf-go/internal/database/sqlc"
)

// RevokeSuperseded settles same-date publications: among the non-revoked
// publications of the repository sharing publication's date, the one with
// the greatest name stays active and the others are revoked. Running it again
// changes nothing. It returns the publications it revoked.
func (s *Service) RevokeSuperseded(publication *sqlc.Publication) ([]*sqlc.Publication, error) {
	sameDate, err := s.database.FindActivePublicationsByDate(publication.RepositoryID, publication.Date)
	if err != nil {
		return nil, fmt.Errorf("finding publications dated %s: %w", publication.Date, err)
	}
	if len(sameDate) < 2 {
		return nil, nil
	}

	superseded := sameDate[1:]
	ids := make([]int64, len(superseded))
	for i, p := range superseded {
		ids[i] = p.ID
		s.logger.Info("revoking publication", "publication", p.Name, "superseded_by", sameDate[0].Name)
	}
	if err := s.database.RevokePublications(ids); err != nil {
		return nil, fmt.Errorf("revoking publications: %w", err)
	}
	for _, p := range superseded {
		p.Revoked = true
	}
	return superseded, nil
}

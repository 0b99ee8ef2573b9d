package olaaf_test

import (
	"testing"
	"time"

	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/testutil"
)

func TestDiscoverInput(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")

	tree := testutil.Tree{"a.pdf": testutil.PDF("a")}
	jan := time.Date(2020, 1, 3, 23, 0, 0, 0, time.UTC)
	repo.CommitAt("publication/2020-01-01", tree, jan)
	repo.CommitAt("publication/2020-01-01-01", tree, jan)
	repo.CommitAt("publication/2020-01-01-01", tree.With("a.pdf", testutil.PDF("b")), jan.AddDate(0, 0, 1))
	repo.CommitAt("publication/2020-02-01", tree, jan.AddDate(0, 1, 0))
	repo.Commit("master", tree)

	input, err := svc.DiscoverInput(library, []string{"law", "missing"})
	if err != nil {
		t.Fatalf("DiscoverInput() error = %v", err)
	}
	if len(input.Repositories) != 1 {
		t.Fatalf("len(Repositories) = %d, want 1", len(input.Repositories))
	}

	pubs := input.Repositories[0].Publications
	if len(pubs) != 2 {
		t.Fatalf("len(Publications) = %d, want 2", len(pubs))
	}
	if pubs[0].Branch != "publication/2020-01-01-01" || pubs[1].Branch != "publication/2020-02-01" {
		t.Errorf("branches = %s, %s", pubs[0].Branch, pubs[1].Branch)
	}
	if pubs[0].Date != "2020-01-01" {
		t.Errorf("Date = %q, want 2020-01-01", pubs[0].Date)
	}
	if len(pubs[0].Commits) != 2 {
		t.Fatalf("len(Commits) = %d, want 2", len(pubs[0].Commits))
	}
	if got := pubs[0].Commits[1].BuildDate; got != "2020-01-04" {
		t.Errorf("BuildDate = %q, want 2020-01-04", got)
	}

	t.Run("discovered input syncs", func(t *testing.T) {
		stats, err := svc.Sync(library, input)
		if err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if stats.Publications != 2 || stats.CommitsSynced != 3 {
			t.Errorf("publications/commits = %d/%d, want 2/3", stats.Publications, stats.CommitsSynced)
		}
		if got := mustPublication(t, db, "2020-01-01-01").Date; got != "2020-01-01" {
			t.Errorf("publication date = %q, want 2020-01-01", got)
		}
	})
}

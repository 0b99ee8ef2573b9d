package olaaf_test

import (
	"errors"
	"testing"

	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/testutil"
)

func TestRevokeSuperseded(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")

	tree := testutil.Tree{"a.html": testutil.Page{Auth: "first"}.Bytes()}
	plain := repo.Commit("publication/2020-05-05", tree)
	indexed := repo.Commit("publication/2020-05-05-01", tree.With("a.html", testutil.Page{Auth: "second"}.Bytes()))
	later := repo.Commit("publication/2020-06-01", tree.With("a.html", testutil.Page{Auth: "third"}.Bytes()))

	input := &olaaf.SyncInput{Repositories: []olaaf.RepositorySpec{{
		Name: "law",
		Publications: []olaaf.PublicationSpec{
			{Branch: "publication/2020-05-05", Commits: []olaaf.CommitSpec{{SHA: plain, BuildDate: "2020-05-05"}}},
			{Branch: "publication/2020-05-05-01", Commits: []olaaf.CommitSpec{{SHA: indexed, BuildDate: "2020-05-05"}}},
			{Branch: "publication/2020-06-01", Commits: []olaaf.CommitSpec{{SHA: later, BuildDate: "2020-06-01"}}},
		},
	}}}

	stats, err := svc.Sync(library, input)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if stats.Revoked != 1 {
		t.Errorf("Revoked = %d, want 1", stats.Revoked)
	}

	assertRevoked := func(t *testing.T) {
		t.Helper()
		want := map[string]bool{"2020-05-05": true, "2020-05-05-01": false, "2020-06-01": false}
		for name, revoked := range want {
			if got := mustPublication(t, db, name).Revoked; got != revoked {
				t.Errorf("%s revoked = %v, want %v", name, got, revoked)
			}
		}
	}
	assertRevoked(t)

	t.Run("idempotent", func(t *testing.T) {
		stats, err := svc.Sync(library, input)
		if err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if stats.Revoked != 0 {
			t.Errorf("Revoked = %d, want 0", stats.Revoked)
		}
		assertRevoked(t)

		revoked, err := svc.RevokeSuperseded(mustPublication(t, db, "2020-05-05-01"))
		if err != nil {
			t.Fatalf("RevokeSuperseded() error = %v", err)
		}
		if len(revoked) != 0 {
			t.Errorf("RevokeSuperseded() revoked %d publications", len(revoked))
		}
	})

	t.Run("revoked publication cannot be checked", func(t *testing.T) {
		_, err := svc.Check(olaaf.CheckRequest{
			Repository:  "law",
			Publication: "2020-05-05",
			URL:         "/a",
			Content:     testutil.Page{Auth: "first"}.Bytes(),
		})
		if !errors.Is(err, olaaf.ErrPublicationNotFound) {
			t.Errorf("Check() error = %v, want ErrPublicationNotFound", err)
		}
	})

	t.Run("older active publication is never current", func(t *testing.T) {
		got, err := svc.Check(olaaf.CheckRequest{
			Repository:  "law",
			Publication: "2020-05-05-01",
			URL:         "/a",
			Content:     testutil.Page{Auth: "second"}.Bytes(),
		})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !got.Authentic || got.Current {
			t.Errorf("authentic/current = %v/%v, want true/false", got.Authentic, got.Current)
		}
	})

	t.Run("latest publication by default", func(t *testing.T) {
		got, err := svc.Check(olaaf.CheckRequest{
			Repository: "law",
			URL:        "/a",
			Content:    testutil.Page{Auth: "third"}.Bytes(),
		})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got.Publication != "2020-06-01" || !got.Current {
			t.Errorf("publication/current = %s/%v, want 2020-06-01/true", got.Publication, got.Current)
		}
	})
}

func TestRevokeSuperseded_LowerIndexSyncedLater(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")
	tree := testutil.Tree{"a.pdf": testutil.PDF("a")}

	for _, b := range []string{"publication/2020-05-05-02", "publication/2020-05-05-01"} {
		sha := repo.Commit(b, tree)
		if _, err := svc.Sync(library, lineInput(b, []string{sha}, []string{"2020-05-05"})); err != nil {
			t.Fatalf("Sync(%s) error = %v", b, err)
		}
	}

	if !mustPublication(t, db, "2020-05-05-01").Revoked {
		t.Error("2020-05-05-01 should be revoked")
	}
	if mustPublication(t, db, "2020-05-05-02").Revoked {
		t.Error("2020-05-05-02 should stay active")
	}
}

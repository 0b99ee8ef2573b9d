package olaaf_test

import (
	"errors"
	"testing"

	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/testutil"
)

func TestGetPathHistory(t *testing.T) {
	svc, s := syncedScenario(t)

	t.Run("known url", func(t *testing.T) {
		history, err := svc.GetPathHistory("law", "", "/a")
		if err != nil {
			t.Fatalf("GetPathHistory() error = %v", err)
		}
		if history == nil {
			t.Fatal("GetPathHistory() = nil")
		}
		if len(history.Paths) != 1 || history.Paths[0].Filesystem != "a/index.html" {
			t.Errorf("Paths = %v, want a/index.html", history.Paths)
		}

		var bitstream, rendered, open int
		for _, iv := range history.Intervals {
			switch iv.Kind {
			case olaaf.HashBitstream:
				bitstream++
			case olaaf.HashRendered:
				rendered++
			}
			if iv.Open() {
				open++
			}
		}
		// Bitstream changed in c2 and c5, the fragment only in c2.
		if bitstream != 3 || rendered != 2 || open != 2 {
			t.Errorf("bitstream/rendered/open = %d/%d/%d, want 3/2/2", bitstream, rendered, open)
		}

		first := history.Intervals[0]
		if first.StartSHA != s.shas[0] || first.EndSHA != s.shas[1] {
			t.Errorf("first interval = %s..%s, want %s..%s", first.StartSHA, first.EndSHA, s.shas[0], s.shas[1])
		}
	})

	t.Run("unknown url", func(t *testing.T) {
		history, err := svc.GetPathHistory("law", "", "/missing")
		if err != nil {
			t.Fatalf("GetPathHistory() error = %v", err)
		}
		if history != nil {
			t.Errorf("GetPathHistory() = %+v, want nil", history)
		}
	})

	t.Run("unknown repository", func(t *testing.T) {
		_, err := svc.GetPathHistory("nope", "", "/a")
		if !errors.Is(err, olaaf.ErrRepositoryNotFound) {
			t.Errorf("GetPathHistory() error = %v, want ErrRepositoryNotFound", err)
		}
	})
}

func TestListPublications(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")

	tree := testutil.Tree{"a.pdf": testutil.PDF("a")}
	a := repo.Commit("publication/2020-05-05", tree)
	b := repo.Commit("publication/2020-05-05-01", tree)
	input := &olaaf.SyncInput{Repositories: []olaaf.RepositorySpec{{
		Name: "law",
		Publications: []olaaf.PublicationSpec{
			{Branch: "publication/2020-05-05", Commits: []olaaf.CommitSpec{{SHA: a, BuildDate: "2020-05-05", CoreVersion: "1.2.0"}}},
			{Branch: "publication/2020-05-05-01", Commits: []olaaf.CommitSpec{{SHA: b, BuildDate: "2020-05-05"}}},
		},
	}}}
	if _, err := svc.Sync(library, input); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	infos, err := svc.ListPublications("law")
	if err != nil {
		t.Fatalf("ListPublications() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d, want 2", len(infos))
	}

	if infos[0].Name != "2020-05-05" || !infos[0].Revoked || infos[0].Latest {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[0].CoreVersion != "1.2.0" || infos[0].Commits != 1 || infos[0].LastCommit != a {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Name != "2020-05-05-01" || infos[1].Revoked || !infos[1].Latest {
		t.Errorf("infos[1] = %+v", infos[1])
	}

	if _, err := svc.ListPublications("nope"); !errors.Is(err, olaaf.ErrRepositoryNotFound) {
		t.Errorf("ListPublications() error = %v, want ErrRepositoryNotFound", err)
	}
}

func TestGetHistory(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})

	for _, op := range []string{"sync", "sync", "restore"} {
		rec, err := db.CreateSyncOperation("run", op, "")
		if err != nil {
			t.Fatalf("CreateSyncOperation() error = %v", err)
		}
		if err := db.FinishSyncOperation(rec.ID, "success"); err != nil {
			t.Fatalf("FinishSyncOperation() error = %v", err)
		}
	}

	ops, err := svc.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(ops))
	}
	if ops[0].Operation != "restore" {
		t.Errorf("newest operation = %s, want restore", ops[0].Operation)
	}
}

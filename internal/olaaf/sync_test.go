package olaaf_test

import (
	"errors"
	"testing"

	"olaaf-go/internal/database/sqlc"
	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/testutil"
)

func newService(t *testing.T, db olaaf.Database, index olaaf.PathIndexer, opts olaaf.Options) *olaaf.Service {
	t.Helper()
	return olaaf.NewService(db, olaaf.NewHTMLRendererFactory(), index, olaaf.NewNopLogger(), testutil.FixedClock(), opts)
}

// lineInput describes a single publication line of repository "law".
func lineInput(branch string, shas []string, dates []string) *olaaf.SyncInput {
	pub := olaaf.PublicationSpec{Branch: branch}
	for i, sha := range shas {
		pub.Commits = append(pub.Commits, olaaf.CommitSpec{SHA: sha, BuildDate: dates[i]})
	}
	return &olaaf.SyncInput{Repositories: []olaaf.RepositorySpec{
		{Name: "law", Publications: []olaaf.PublicationSpec{pub}},
	}}
}

func mustPublication(t *testing.T, db olaaf.Database, name string) *sqlc.Publication {
	t.Helper()
	repo, err := db.FindRepositoryByName("law")
	if err != nil || repo == nil {
		t.Fatalf("FindRepositoryByName() = %v, %v", repo, err)
	}
	pub, err := db.FindPublication(repo.ID, name)
	if err != nil || pub == nil {
		t.Fatalf("FindPublication(%s) = %v, %v", name, pub, err)
	}
	return pub
}

// countHashes returns the total and open hash rows of a publication.
func countHashes(t *testing.T, db olaaf.Database, pub *sqlc.Publication) (total, open int) {
	t.Helper()
	hashes, err := db.FindHashesByPublication(pub.ID)
	if err != nil {
		t.Fatalf("FindHashesByPublication() error = %v", err)
	}
	for _, h := range hashes {
		if !h.EndCommitID.Valid {
			open++
		}
	}
	return len(hashes), open
}

// assertSingleOpen fails the test if any (path, kind) has more than one open row.
func assertSingleOpen(t *testing.T, db olaaf.Database, pub *sqlc.Publication) {
	t.Helper()
	hashes, err := db.FindHashesByPublication(pub.ID)
	if err != nil {
		t.Fatalf("FindHashesByPublication() error = %v", err)
	}
	seen := map[[2]any]bool{}
	for _, h := range hashes {
		if h.EndCommitID.Valid {
			continue
		}
		key := [2]any{h.PathID, h.Kind}
		if seen[key] {
			t.Fatalf("path %d has two open %s hashes", h.PathID, h.Kind)
		}
		seen[key] = true
	}
}

// scenario is a five-commit publication line:
//
//	c1 adds two HTML pages and two PDFs (plus files that are never indexed)
//	c2 changes the authenticatable fragment of a/index.html
//	c3 changes the bytes of docs/one.pdf
//	c4 deletes b.html
//	c5 changes a/index.html outside its fragment
type scenario struct {
	library *testutil.FakeLibrary
	repo    *testutil.FakeRepository
	shas    []string
	dates   []string
	pages   map[string][]byte
}

const branch = "publication/2020-01-01"

func newScenario() *scenario {
	s := &scenario{
		library: testutil.NewFakeLibrary(),
		dates:   []string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01", "2020-05-01"},
		pages: map[string][]byte{
			"a1": testutil.Page{Title: "A", SearchPath: "Title 1", Citation: "D.C. Code § 1", Auth: "<p>alpha</p>"}.Bytes(),
			"a2": testutil.Page{Title: "A", SearchPath: "Title 1", Auth: "<p>alpha, amended</p>"}.Bytes(),
			"a3": testutil.Page{Title: "A", SearchPath: "Title 1", Auth: "<p>alpha, amended</p>", Outside: "sidebar"}.Bytes(),
			"b":  testutil.Page{Title: "B", CanonicalURL: "https://code.example.gov/us/b-section", Auth: "<p>beta</p>"}.Bytes(),
		},
	}
	s.repo = s.library.Add("law")

	c1 := testutil.Tree{
		"a/index.html":      s.pages["a1"],
		"b.html":            s.pages["b"],
		"docs/one.pdf":      testutil.PDF("one"),
		"docs/two.pdf":      testutil.PDF("two"),
		"_templates/x.html": testutil.Page{Auth: "template"}.Bytes(),
		".github/y.html":    testutil.Page{Auth: "ci"}.Bytes(),
		"style.css":         []byte("body {}"),
	}
	c2 := c1.With("a/index.html", s.pages["a2"])
	c3 := c2.With("docs/one.pdf", testutil.PDF("one, second edition"))
	c4 := c3.Without("b.html")
	c5 := c4.With("a/index.html", s.pages["a3"])

	for _, tree := range []testutil.Tree{c1, c2, c3, c4, c5} {
		s.shas = append(s.shas, s.repo.Commit(branch, tree))
	}
	return s
}

func (s *scenario) input(n int) *olaaf.SyncInput {
	return lineInput(branch, s.shas[:n], s.dates[:n])
}

func TestSync_Scenario(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	s := newScenario()

	steps := []struct {
		name        string
		total, open int
		opened      int
		closed      int
		rendered    int
	}{
		{"c1 adds four documents", 6, 6, 6, 0, 2},
		{"c2 changes a fragment", 8, 6, 2, 2, 1},
		{"c3 changes a pdf", 9, 6, 1, 1, 0},
		{"c4 deletes a page", 9, 4, 0, 2, 0},
		{"c5 changes outside the fragment", 10, 4, 1, 1, 1},
	}

	for i, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			stats, err := svc.Sync(s.library, s.input(i+1))
			if err != nil {
				t.Fatalf("Sync() error = %v", err)
			}
			if stats.CommitsSynced != 1 {
				t.Errorf("CommitsSynced = %d, want 1", stats.CommitsSynced)
			}
			if stats.CommitsSkipped != i {
				t.Errorf("CommitsSkipped = %d, want %d", stats.CommitsSkipped, i)
			}
			if stats.HashesOpened != step.opened || stats.HashesClosed != step.closed {
				t.Errorf("opened/closed = %d/%d, want %d/%d", stats.HashesOpened, stats.HashesClosed, step.opened, step.closed)
			}
			if stats.DocumentsRendered != step.rendered {
				t.Errorf("DocumentsRendered = %d, want %d", stats.DocumentsRendered, step.rendered)
			}

			pub := mustPublication(t, db, "2020-01-01")
			total, open := countHashes(t, db, pub)
			if total != step.total || open != step.open {
				t.Errorf("hashes total/open = %d/%d, want %d/%d", total, open, step.total, step.open)
			}
			assertSingleOpen(t, db, pub)
		})
	}

	pub := mustPublication(t, db, "2020-01-01")

	t.Run("paths", func(t *testing.T) {
		paths, err := db.FindPathsByPublication(pub.ID)
		if err != nil {
			t.Fatalf("FindPathsByPublication() error = %v", err)
		}
		if len(paths) != 4 {
			t.Fatalf("len(paths) = %d, want 4", len(paths))
		}

		want := map[string]string{
			"a/index.html": "/a",
			"b.html":       "/us/b-section",
			"docs/one.pdf": "/docs/one.pdf",
			"docs/two.pdf": "/docs/two.pdf",
		}
		for _, p := range paths {
			if want[p.Filesystem] != p.URL {
				t.Errorf("URL of %s = %q, want %q", p.Filesystem, p.URL, want[p.Filesystem])
			}
		}
	})

	t.Run("hints stored", func(t *testing.T) {
		paths, err := db.FindPathsByURL(pub.ID, "/a")
		if err != nil || len(paths) != 1 {
			t.Fatalf("FindPathsByURL() = %v, %v", paths, err)
		}
		p := paths[0]
		if p.SearchPath.String != "Title 1" {
			t.Errorf("SearchPath = %q, want Title 1", p.SearchPath.String)
		}
		if p.Citation.String != "D.C. Code § 1" {
			t.Errorf("Citation = %q", p.Citation.String)
		}
	})

	t.Run("hidden and unsupported files skipped", func(t *testing.T) {
		for _, fs := range []string{"_templates/x.html", ".github/y.html", "style.css"} {
			p, err := db.FindPathByFilesystem(pub.ID, fs)
			if err != nil {
				t.Fatalf("FindPathByFilesystem() error = %v", err)
			}
			if p != nil {
				t.Errorf("%s was indexed", fs)
			}
		}
	})

	t.Run("commit dates", func(t *testing.T) {
		commits, err := db.FindCommitsByPublication(pub.ID)
		if err != nil {
			t.Fatalf("FindCommitsByPublication() error = %v", err)
		}
		for i, c := range commits {
			if c.SHA != s.shas[i] || c.Date != s.dates[i] {
				t.Errorf("commit %d = %s@%s, want %s@%s", i, c.SHA, c.Date, s.shas[i], s.dates[i])
			}
		}
	})
}

func TestSync_Idempotent(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	s := newScenario()

	if _, err := svc.Sync(s.library, s.input(5)); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	pub := mustPublication(t, db, "2020-01-01")
	total, open := countHashes(t, db, pub)
	reads := s.repo.Reads()

	stats, err := svc.Sync(s.library, s.input(5))
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if stats.CommitsSynced != 0 || stats.CommitsSkipped != 5 {
		t.Errorf("synced/skipped = %d/%d, want 0/5", stats.CommitsSynced, stats.CommitsSkipped)
	}
	if stats.DocumentsRendered != 0 {
		t.Errorf("second Sync() rendered %d documents", stats.DocumentsRendered)
	}
	if s.repo.Reads() != reads {
		t.Errorf("second Sync() read %d blobs", s.repo.Reads()-reads)
	}

	total2, open2 := countHashes(t, db, pub)
	if total2 != total || open2 != open {
		t.Errorf("hashes changed: %d/%d -> %d/%d", total, open, total2, open2)
	}
	commits, _ := db.FindCommitsByPublication(pub.ID)
	if len(commits) != 5 {
		t.Errorf("len(commits) = %d, want 5", len(commits))
	}
}

func TestSync_FailedCommitRollsBack(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	// Flush after every document so the failure happens after writes.
	svc := newService(t, db, nil, olaaf.Options{MaxWorkingSetBytes: 1})

	library := testutil.NewFakeLibrary()
	repo := library.Add("law")
	c1 := testutil.Tree{
		"a.html":  testutil.Page{Auth: "a"}.Bytes(),
		"b.pdf":   testutil.PDF("b"),
		"c.html":  testutil.Page{Auth: "c"}.Bytes(),
		"d/e.pdf": testutil.PDF("e"),
	}
	c2 := c1.With("a.html", testutil.Page{Auth: "a2"}.Bytes()).With("d/e.pdf", testutil.PDF("e2"))
	c3 := c2.Without("c.html")
	shas := []string{repo.Commit(branch, c1), repo.Commit(branch, c2), repo.Commit(branch, c3)}
	dates := []string{"2020-01-01", "2020-01-02", "2020-01-03"}

	if _, err := svc.Sync(library, lineInput(branch, shas[:1], dates[:1])); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	pub := mustPublication(t, db, "2020-01-01")
	total, open := countHashes(t, db, pub)

	errBoom := errors.New("disk on fire")
	repo.FailReads("d/e.pdf", errBoom)

	_, err := svc.Sync(library, lineInput(branch, shas, dates))
	if !errors.Is(err, errBoom) {
		t.Fatalf("Sync() error = %v, want %v", err, errBoom)
	}

	commits, err := db.FindCommitsByPublication(pub.ID)
	if err != nil {
		t.Fatalf("FindCommitsByPublication() error = %v", err)
	}
	if len(commits) != 1 {
		t.Errorf("len(commits) = %d, want 1", len(commits))
	}
	total2, open2 := countHashes(t, db, pub)
	if total2 != total || open2 != open {
		t.Errorf("hashes after failure = %d/%d, want %d/%d", total2, open2, total, open)
	}

	t.Run("next run resumes", func(t *testing.T) {
		repo.FailReads("d/e.pdf", nil)
		stats, err := svc.Sync(library, lineInput(branch, shas, dates))
		if err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if stats.CommitsSynced != 2 {
			t.Errorf("CommitsSynced = %d, want 2", stats.CommitsSynced)
		}
		total, open := countHashes(t, db, pub)
		// c1: 2 HTML x 2 + 2 PDF = 6; c2: +2 (a.html) +1 (e.pdf); c3 closes c.html.
		if total != 9 || open != 4 {
			t.Errorf("hashes total/open = %d/%d, want 9/4", total, open)
		}
		assertSingleOpen(t, db, pub)
	})
}

// countingDatabase records the size of every path lookup.
type countingDatabase struct {
	olaaf.Database
	lookups []int
}

func (d *countingDatabase) BeginChanges(p *sqlc.Publication, c *sqlc.Commit) (olaaf.ChangeWriter, error) {
	w, err := d.Database.BeginChanges(p, c)
	if err != nil {
		return nil, err
	}
	return &countingWriter{ChangeWriter: w, db: d}, nil
}

type countingWriter struct {
	olaaf.ChangeWriter
	db *countingDatabase
}

func (w *countingWriter) FindPaths(filesystems []string) ([]*sqlc.Path, error) {
	w.db.lookups = append(w.db.lookups, len(filesystems))
	return w.ChangeWriter.FindPaths(filesystems)
}

func TestSync_BatchedLookups(t *testing.T) {
	db := &countingDatabase{Database: testutil.NewTestDatabase(t)}
	svc := newService(t, db, nil, olaaf.Options{LookupBatchSize: 2})

	library := testutil.NewFakeLibrary()
	repo := library.Add("law")
	c1 := testutil.Tree{}
	for _, name := range []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf"} {
		c1 = c1.With(name, testutil.PDF(name))
	}
	c2 := testutil.Tree{}
	for name := range c1 {
		c2 = c2.With(name, testutil.PDF(name+" revised"))
	}
	shas := []string{repo.Commit(branch, c1), repo.Commit(branch, c2)}

	stats, err := svc.Sync(library, lineInput(branch, shas, []string{"2020-01-01", "2020-01-02"}))
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	want := []int{2, 2, 1, 2, 2, 1}
	if len(db.lookups) != len(want) {
		t.Fatalf("lookups = %v, want %v", db.lookups, want)
	}
	for i := range want {
		if db.lookups[i] != want[i] {
			t.Errorf("lookups = %v, want %v", db.lookups, want)
			break
		}
	}
	if stats.HashesOpened != 10 || stats.HashesClosed != 5 {
		t.Errorf("opened/closed = %d/%d, want 10/5", stats.HashesOpened, stats.HashesClosed)
	}
}

func TestSync_WorkingSetFlushMatchesSingleFlush(t *testing.T) {
	results := map[string][2]int{}
	for name, opts := range map[string]olaaf.Options{
		"single flush":   {},
		"flush per file": {MaxWorkingSetBytes: 1},
	} {
		db := testutil.NewTestDatabase(t)
		svc := newService(t, db, nil, opts)
		s := newScenario()
		if _, err := svc.Sync(s.library, s.input(5)); err != nil {
			t.Fatalf("%s: Sync() error = %v", name, err)
		}
		total, open := countHashes(t, db, mustPublication(t, db, "2020-01-01"))
		results[name] = [2]int{total, open}
	}
	if results["single flush"] != results["flush per file"] {
		t.Errorf("results differ: %v", results)
	}
}

type recordingIndexer struct {
	paths map[string][]*sqlc.Path
}

func (r *recordingIndexer) IndexPaths(repository, publication string, paths []*sqlc.Path) error {
	if r.paths == nil {
		r.paths = map[string][]*sqlc.Path{}
	}
	key := repository + "/" + publication
	r.paths[key] = append(r.paths[key], paths...)
	return nil
}

func TestSync_IndexesCreatedPaths(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	index := &recordingIndexer{}
	svc := newService(t, db, index, olaaf.Options{})
	s := newScenario()

	if _, err := svc.Sync(s.library, s.input(5)); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if got := len(index.paths["law/2020-01-01"]); got != 4 {
		t.Errorf("indexed %d paths, want 4", got)
	}

	if _, err := svc.Sync(s.library, s.input(5)); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if got := len(index.paths["law/2020-01-01"]); got != 4 {
		t.Errorf("second run indexed more paths: %d", got)
	}
}

func TestSync_Inputs(t *testing.T) {
	t.Run("unavailable repository is skipped", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		svc := newService(t, db, nil, olaaf.Options{})
		input := &olaaf.SyncInput{Repositories: []olaaf.RepositorySpec{{
			Name: "missing",
			Publications: []olaaf.PublicationSpec{{
				Branch:  branch,
				Commits: []olaaf.CommitSpec{{SHA: "abc", BuildDate: "2020-01-01"}},
			}},
		}}}

		stats, err := svc.Sync(testutil.NewFakeLibrary(), input)
		if err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if stats.SkippedRepos != 1 || stats.Repositories != 0 {
			t.Errorf("skipped/synced = %d/%d, want 1/0", stats.SkippedRepos, stats.Repositories)
		}
		if repo, _ := db.FindRepositoryByName("missing"); repo != nil {
			t.Error("skipped repository was recorded")
		}
	})

	t.Run("publication without commits", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		svc := newService(t, db, nil, olaaf.Options{})
		library := testutil.NewFakeLibrary()
		library.Add("law")

		_, err := svc.Sync(library, lineInput(branch, nil, nil))
		if !errors.Is(err, olaaf.ErrInvalidInput) {
			t.Errorf("Sync() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("non publication branch keeps its name", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		svc := newService(t, db, nil, olaaf.Options{})
		library := testutil.NewFakeLibrary()
		repo := library.Add("law")
		sha := repo.Commit("master", testutil.Tree{"x.pdf": testutil.PDF("x")})

		if _, err := svc.Sync(library, lineInput("master", []string{sha}, []string{"2021-03-04"})); err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		pub := mustPublication(t, db, "master")
		if pub.Date != "2021-03-04" {
			t.Errorf("Date = %s, want 2021-03-04", pub.Date)
		}
	})

	t.Run("codified date used for commits", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		svc := newService(t, db, nil, olaaf.Options{})
		library := testutil.NewFakeLibrary()
		repo := library.Add("law")
		sha := repo.Commit(branch, testutil.Tree{"x.pdf": testutil.PDF("x")})

		input := lineInput(branch, []string{sha}, []string{"2020-01-01"})
		input.Repositories[0].Publications[0].Commits[0].CodifiedDate = "2019-12-15"
		if _, err := svc.Sync(library, input); err != nil {
			t.Fatalf("Sync() error = %v", err)
		}

		pub := mustPublication(t, db, "2020-01-01")
		if pub.Date != "2020-01-01" {
			t.Errorf("publication Date = %s, want build date 2020-01-01", pub.Date)
		}
		commits, _ := db.FindCommitsByPublication(pub.ID)
		if len(commits) != 1 || commits[0].Date != "2019-12-15" {
			t.Errorf("commits = %+v, want codified date", commits)
		}
	})
}

func TestSync_ConsistencyWarnings(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")

	c1 := testutil.Tree{
		"draft.html": testutil.Page{Auth: "draft"}.Bytes(),
		"kept.pdf":   testutil.PDF("kept"),
	}
	c2 := c1.With("draft.html", testutil.Page{Auth: "draft 2"}.Bytes())
	shas := []string{repo.Commit(branch, c1), repo.Commit(branch, c2)}
	dates := []string{"2020-01-01", "2020-01-02"}

	ignoring := newService(t, db, nil, olaaf.Options{Filter: ignoreOnly("draft.html")})
	if _, err := ignoring.Sync(library, lineInput(branch, shas[:1], dates[:1])); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	svc := newService(t, db, nil, olaaf.Options{})
	stats, err := svc.Sync(library, lineInput(branch, shas, dates))
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if stats.ConsistencyWarnings != 1 {
		t.Errorf("ConsistencyWarnings = %d, want 1", stats.ConsistencyWarnings)
	}
	if stats.CommitsSynced != 1 {
		t.Errorf("CommitsSynced = %d, want 1", stats.CommitsSynced)
	}
}

type ignoreOnly string

func (f ignoreOnly) ShouldIgnore(p string) bool { return p == string(f) }

func TestSync_ReaddedDocument(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	svc := newService(t, db, nil, olaaf.Options{})
	library := testutil.NewFakeLibrary()
	repo := library.Add("law")

	c1 := testutil.Tree{"x.pdf": testutil.PDF("x")}
	c2 := c1.Without("x.pdf")
	c3 := c1.With("x.pdf", testutil.PDF("x"))
	shas := []string{repo.Commit(branch, c1), repo.Commit(branch, c2), repo.Commit(branch, c3)}

	if _, err := svc.Sync(library, lineInput(branch, shas, []string{"2020-01-01", "2020-02-01", "2020-03-01"})); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	pub := mustPublication(t, db, "2020-01-01")
	paths, _ := db.FindPathsByPublication(pub.ID)
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(paths))
	}
	total, open := countHashes(t, db, pub)
	if total != 2 || open != 1 {
		t.Errorf("hashes total/open = %d/%d, want 2/1", total, open)
	}
}

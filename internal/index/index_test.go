package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/starford/quire/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "quire-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func row(path, title, cs string, tags ...string) NoteRow {
	if tags == nil {
		tags = []string{}
	}
	return NoteRow{Path: path, Title: title, Checksum: cs, Tags: tags, UpdatedAt: time.Now()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertNote(row("/hello.md", "Hello", "abc123", "go", "test"), "a hello note", []string{"/other.md"}); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("/hello.md")
	if err != nil || cs != "abc123" {
		t.Fatalf("GetChecksum = %q, %v", cs, err)
	}
	n, err := db.GetNote("/hello.md")
	if err != nil || n == nil {
		t.Fatalf("GetNote = %v, %v", n, err)
	}
	if n.Title != "Hello" || !reflect.DeepEqual(n.Tags, []string{"go", "test"}) {
		t.Errorf("note = %+v", n)
	}
	if n, _ := db.GetNote("/missing.md"); n != nil {
		t.Errorf("GetNote(missing) = %+v", n)
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("/up.md", "Old", "1"), "old body", []string{"/x.md"})
	_ = db.UpsertNote(row("/up.md", "New", "2", "new"), "new body", []string{"/y.md"})

	if cs, _ := db.GetChecksum("/up.md"); cs != "2" {
		t.Errorf("checksum = %q, want 2", cs)
	}
	if bl, _ := db.Backlinks("/x.md"); len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	if bl, _ := db.Backlinks("/y.md"); len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestBacklinksAndDelete(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("/a.md", "A", "1"), "body", []string{"/b.md"})
	_ = db.UpsertNote(row("/c.md", "C", "2"), "body", []string{"/b.md"})

	bl, err := db.Backlinks("/b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if !reflect.DeepEqual(bl, []string{"/a.md", "/c.md"}) {
		t.Fatalf("backlinks = %v", bl)
	}

	if err := db.DeleteNote("/a.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if cs, _ := db.GetChecksum("/a.md"); cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	if bl, _ := db.Backlinks("/b.md"); !reflect.DeepEqual(bl, []string{"/c.md"}) {
		t.Errorf("backlinks after delete = %v", bl)
	}
}

func TestListNotes(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("/b.md", "alpha", "1", "work"), "", nil)
	_ = db.UpsertNote(row("/a.md", "Charlie", "2"), "", nil)
	_ = db.UpsertNote(row("/c.md", "bravo", "3", "work", "home"), "", nil)

	rows, total, err := db.ListNotes(2, 0, "", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 || len(rows) != 2 || rows[0].Path != "/a.md" || rows[1].Path != "/b.md" {
		t.Errorf("page = %+v total %d", rows, total)
	}

	rows, _, _ = db.ListNotes(10, 0, "", "title")
	var titles []string
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	if !reflect.DeepEqual(titles, []string{"alpha", "bravo", "Charlie"}) {
		t.Errorf("titles = %v", titles)
	}

	rows, total, _ = db.ListNotes(10, 0, "work", "")
	if total != 2 || len(rows) != 2 || rows[0].Path != "/b.md" {
		t.Errorf("tag filter = %+v total %d", rows, total)
	}
	_, total, _ = db.ListNotes(10, 0, "wor", "")
	if total != 0 {
		t.Errorf("partial tag matched %d notes", total)
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("/a.md", "A", "1"), "", []string{"/b.md", "/ghost.md"})
	_ = db.UpsertNote(row("/b.md", "B", "2"), "", []string{"/a.md"})

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %+v", nodes)
	}
	want := []GraphLink{{Source: "/a.md", Target: "/b.md"}, {Source: "/b.md", Target: "/a.md"}}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %+v", links)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(row("/s.md", "Search Me", "1"), "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/s.md" {
		t.Errorf("search results = %+v, want 1 hit for /s.md", results)
	}
}

func TestSync(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)

	_ = store.Write("/a.md", []byte("# Alpha\nsee [b](b.md) :work:\n"))
	_ = store.Write("/sub/b.md", []byte("plain\n"))
	_ = store.Write("/.history/a.md/versions/x.md", []byte("ignored\n"))
	_ = db.UpsertNote(row("/stale.md", "Stale", "s"), "", nil)

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	sums, _ := db.AllChecksums()
	if len(sums) != 2 {
		t.Fatalf("indexed = %v", sums)
	}
	if _, ok := sums["/stale.md"]; ok {
		t.Error("stale note not removed")
	}
	a, _ := db.GetNote("/a.md")
	if a == nil || a.Title != "Alpha" || !reflect.DeepEqual(a.Tags, []string{"work"}) {
		t.Errorf("a = %+v", a)
	}
	if bl, _ := db.Backlinks("/b.md"); !reflect.DeepEqual(bl, []string{"/a.md"}) {
		t.Errorf("backlinks = %v", bl)
	}

	// Unchanged notes keep their stored row.
	before, _ := db.GetNote("/sub/b.md")
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	after, _ := db.GetNote("/sub/b.md")
	if !before.UpdatedAt.Equal(after.UpdatedAt) {
		t.Error("unchanged note re-indexed")
	}
}

func TestNotePathOf(t *testing.T) {
	root := filepath.Join(os.TempDir(), "notes")
	p, ok := notePathOf(root, filepath.Join(root, "sub", "x.md"))
	if !ok || p != "/sub/x.md" {
		t.Errorf("notePathOf = %q, %v", p, ok)
	}
	if _, ok := notePathOf(root, root); ok {
		t.Error("root itself should not map to a note path")
	}
}

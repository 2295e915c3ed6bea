package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/qa"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"law", "internal"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q): unexpected error %v", s, err)
		}
	}
	if _, err := ParseKind("other"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestUploadRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUploadRepo(openTestDB(t))

	law := &Upload{Kind: KindLaw, Filename: "luat.pdf", Path: "/x/luat.pdf", Size: 10, ContentHash: "h1",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	internal := &Upload{Kind: KindInternal, Filename: "quy-che.docx", Path: "/x/quy-che.docx", Size: 20, ContentHash: "h2"}
	for _, u := range []*Upload{law, internal} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if u.ID == "" {
			t.Fatal("expected ID to be assigned")
		}
	}

	got, err := repo.Get(ctx, law.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Filename != "luat.pdf" || got.Kind != KindLaw || got.LearnedAt != nil {
		t.Errorf("unexpected upload %+v", got)
	}
	if !got.CreatedAt.Equal(law.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", law.CreatedAt, got.CreatedAt)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != internal.ID {
		t.Errorf("expected newest first, got %+v", all)
	}
	laws, err := repo.List(ctx, KindLaw)
	if err != nil {
		t.Fatalf("List(law) error = %v", err)
	}
	if len(laws) != 1 || laws[0].ID != law.ID {
		t.Errorf("expected only law upload, got %+v", laws)
	}

	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.MarkLearned(ctx, law.ID, 42, at); err != nil {
		t.Fatalf("MarkLearned() error = %v", err)
	}
	got, _ = repo.Get(ctx, law.ID)
	if got.Chunks != 42 || got.LearnedAt == nil || !got.LearnedAt.Equal(at) {
		t.Errorf("expected learned state, got %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkLearned(ctx, "missing", 1, at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, internal.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, internal.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted upload to be gone, got %v", err)
	}
}

func TestRunRepo(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	uploads := NewUploadRepo(db)
	runs := NewRunRepo(db)

	up := &Upload{Kind: KindInternal, Filename: "a.docx", Path: "p", ContentHash: "h"}
	if err := uploads.Create(ctx, up); err != nil {
		t.Fatal(err)
	}

	run := &Run{
		UploadID:  up.ID,
		StartPage: 1,
		EndPage:   3,
		Terms:     []outline.Term{{Title: "Điều 1. A", SubItems: []outline.SubItem{}}},
		Results: []qa.Result{{
			Question:  "Điều 1. A",
			Path:      []string{"Điều 1. A"},
			Answer:    "Phù hợp",
			Verdict:   qa.VerdictSuitable,
			Documents: []string{"luat.pdf"},
		}},
		ProcessingMs: 1234,
		CreatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := runs.Create(ctx, run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := runs.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.EndPage != 3 || got.ProcessingMs != 1234 {
		t.Errorf("unexpected run %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].Verdict != qa.VerdictSuitable || got.Results[0].Documents[0] != "luat.pdf" {
		t.Errorf("unexpected results %+v", got.Results)
	}
	if len(got.Terms) != 1 || got.Terms[0].Title != "Điều 1. A" {
		t.Errorf("unexpected terms %+v", got.Terms)
	}

	second := &Run{UploadID: up.ID, StartPage: 2, EndPage: 2, CreatedAt: run.CreatedAt.Add(time.Hour)}
	if err := runs.Create(ctx, second); err != nil {
		t.Fatal(err)
	}
	latest, err := runs.Latest(ctx, up.ID)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("expected latest run %s, got %s", second.ID, latest.ID)
	}

	if _, err := runs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := runs.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunRepo_RequiresUpload(t *testing.T) {
	runs := NewRunRepo(openTestDB(t))
	if err := runs.Create(context.Background(), &Run{UploadID: "nope"}); err == nil {
		t.Error("expected foreign key violation")
	}
}

func TestFileStore_Save(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)

	saved, err := fs.Save(KindLaw, "../../etc/luat.pdf", strings.NewReader("nội dung"), 0)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Dir(saved.Path) != filepath.Join(root, "law") {
		t.Errorf("expected file under law dir, got %s", saved.Path)
	}
	if !strings.HasSuffix(saved.Path, "_luat.pdf") {
		t.Errorf("expected original base name kept, got %s", saved.Path)
	}
	if saved.Size != int64(len("nội dung")) || len(saved.ContentHash) != 64 {
		t.Errorf("unexpected saved file %+v", saved)
	}

	f, err := fs.Open(saved.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "nội dung" {
		t.Errorf("expected stored content, got %q", data)
	}

	if err := fs.Remove(saved.Path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := fs.Open(saved.Path); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if err := fs.Remove(saved.Path); err != nil {
		t.Errorf("expected removing a missing file to succeed, got %v", err)
	}
}

func TestFileStore_SaveTooLarge(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)
	_, err := fs.Save(KindInternal, "big.docx", strings.NewReader("0123456789"), 5)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, "internal"))
	if len(entries) != 0 {
		t.Errorf("expected partial file removed, found %d entries", len(entries))
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"luat.pdf":         "luat.pdf",
		`C:\docs\quy.docx`: "quy.docx",
		"a/b/../c.txt":     "c.txt",
		"":                 "upload",
		"/":                "upload",
		"tab\there.pdf":    "tab_here.pdf",
	}
	for in, want := range tests {
		if got := cleanName(in); got != want {
			t.Errorf("cleanName(%q): expected %q, got %q", in, want, got)
		}
	}
}

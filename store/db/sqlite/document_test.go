package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell/internal/profile"
	"github.com/inkwell-app/inkwell/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := NewDB(p)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { driver.Close() })
	if err := driver.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return driver
}

func sampleDocument(uid string) *store.Document {
	now := time.Now().Unix()
	return &store.Document{
		UID:              uid,
		Topic:            "AI in healthcare",
		DocumentType:     "Thesis",
		AcademicLevel:    "Masters",
		ResearchAreas:    "methodology",
		Mode:             "direct",
		Status:           store.DocumentCompleted,
		Content:          "Some generated content.",
		TargetWords:      5000,
		WordsGenerated:   4200,
		SentenceCount:    220,
		ParagraphCount:   35,
		PromptTokens:     300,
		CompletionTokens: 5200,
		DurationMs:       8400,
		CreatedTs:        now,
		UpdatedTs:        now,
	}
}

func TestDocumentCRUD(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	created, err := d.CreateDocument(ctx, sampleDocument("doc-1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a generated id")
	}

	uid := "doc-1"
	got, err := d.GetDocument(ctx, &store.FindDocument{UID: &uid})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a document")
	}
	if got.Topic != "AI in healthcare" || got.Status != store.DocumentCompleted {
		t.Errorf("unexpected document: %+v", got)
	}

	if err := d.DeleteDocument(ctx, &store.DeleteDocument{UID: uid}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err = d.GetDocument(ctx, &store.FindDocument{UID: &uid})
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestDeleteDocument_NotFound(t *testing.T) {
	d := newTestDB(t)
	err := d.DeleteDocument(context.Background(), &store.DeleteDocument{UID: "missing"})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListDocuments_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	for i, uid := range []string{"old", "mid", "new"} {
		doc := sampleDocument(uid)
		doc.CreatedTs = int64(1000 + i)
		doc.UpdatedTs = doc.CreatedTs
		if _, err := d.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("create %s failed: %v", uid, err)
		}
	}

	limit := 2
	list, err := d.ListDocuments(ctx, &store.FindDocument{Limit: &limit})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	if list[0].UID != "new" || list[1].UID != "mid" {
		t.Errorf("expected newest-first order, got %s, %s", list[0].UID, list[1].UID)
	}
}

func TestListDocuments_StatusFilter(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	ok := sampleDocument("ok")
	if _, err := d.CreateDocument(ctx, ok); err != nil {
		t.Fatal(err)
	}
	failed := sampleDocument("failed")
	failed.Status = store.DocumentFailed
	if _, err := d.CreateDocument(ctx, failed); err != nil {
		t.Fatal(err)
	}

	status := store.DocumentFailed
	list, err := d.ListDocuments(ctx, &store.FindDocument{Status: &status})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].UID != "failed" {
		t.Errorf("status filter broken: %+v", list)
	}
}

package artifacts

import (
	"context"
	"testing"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

func newTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	r, err := NewSQLiteRegistry(":memory:")
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	rec := &collab.ArtifactRecord{
		ID:              "doc-1",
		Type:            "REPORT",
		Name:            "Report 1A",
		Status:          collab.ArtifactStatusCreated,
		DestinationPath: "/reports/1A",
		Link:            "memory://dest-1/doc-1",
		ClassCode:       "1A",
		Requester:       "coord@school.example",
	}
	if err := r.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := r.FindByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatal("expected record")
	}
	if found.Name != "Report 1A" || found.ClassCode != "1A" || found.Status != collab.ArtifactStatusCreated {
		t.Fatalf("unexpected record: %+v", found)
	}
	if found.CreatedAt.IsZero() || found.ModifiedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
}

func TestSQLiteRegistryFindMissing(t *testing.T) {
	r := newTestRegistry(t)

	found, err := r.FindByID(context.Background(), "absent")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for missing record, got %+v", found)
	}
}

func TestSQLiteRegistryDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	rec := &collab.ArtifactRecord{ID: "doc-1", Type: "REPORT", Name: "n", Status: collab.ArtifactStatusCreated}
	if err := r.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := r.Insert(ctx, rec)
	if !errors.HasCategory(err, errors.CategoryAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
}

func TestSQLiteRegistryUpdate(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	rec := &collab.ArtifactRecord{ID: "doc-1", Type: "REPORT", Name: "n", Status: collab.ArtifactStatusCreated}
	if err := r.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec.Status = "FINALIZED"
	rec.Name = "renamed"
	if err := r.Update(ctx, "doc-1", rec); err != nil {
		t.Fatalf("update: %v", err)
	}

	found, err := r.FindByID(ctx, "doc-1")
	if err != nil || found == nil {
		t.Fatalf("find: %v %v", found, err)
	}
	if found.Status != "FINALIZED" || found.Name != "renamed" {
		t.Fatalf("unexpected record after update: %+v", found)
	}

	if err := r.Update(ctx, "absent", rec); !errors.HasCategory(err, errors.CategoryNotFound) {
		t.Fatalf("expected not_found on update of missing record, got %v", err)
	}
}

func TestSQLiteRegistryListByClass(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	for _, id := range []string{"a", "b"} {
		rec := &collab.ArtifactRecord{ID: id, Type: "REPORT", Name: id, Status: collab.ArtifactStatusCreated, ClassCode: "1A"}
		if err := r.Insert(ctx, rec); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	other := &collab.ArtifactRecord{ID: "c", Type: "REPORT", Name: "c", Status: collab.ArtifactStatusCreated, ClassCode: "2B"}
	if err := r.Insert(ctx, other); err != nil {
		t.Fatalf("insert other: %v", err)
	}

	recs, err := r.ListByClass(ctx, "1A")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

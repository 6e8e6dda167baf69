package memory

import (
	"context"
	"testing"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

func TestDriveCopyClonesContent(t *testing.T) {
	d := NewDrive()
	d.AddTemplate(collab.Template{ID: "tpl-1", Name: "Report template"}, "Hello {class_name}")
	d.AddDestination(collab.Destination{ID: "dest-1", Name: "Reports", Path: "/reports/1A"})

	artifact, err := d.Copy(context.Background(), "tpl-1", "Report 1A", "dest-1")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if artifact.Name != "Report 1A" {
		t.Fatalf("expected artifact name, got %q", artifact.Name)
	}
	if artifact.ContentType != collab.ContentTypeDocument {
		t.Fatalf("expected document content type, got %q", artifact.ContentType)
	}
	if len(artifact.Parents) != 1 || artifact.Parents[0] != "dest-1" {
		t.Fatalf("expected destination parent, got %v", artifact.Parents)
	}

	body, ok := d.Document(artifact.ID)
	if !ok || body != "Hello {class_name}" {
		t.Fatalf("expected cloned body, got %q ok=%v", body, ok)
	}

	// template body must stay untouched after rewriting the copy
	if _, err := d.RewriteDocument(context.Background(), artifact.ID, func(string) string { return "rewritten" }); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	orig, _ := d.Document("tpl-1")
	if orig != "Hello {class_name}" {
		t.Fatalf("template body mutated: %q", orig)
	}
}

func TestDriveCopyUnknownTemplate(t *testing.T) {
	d := NewDrive()
	_, err := d.Copy(context.Background(), "missing", "x", "dest")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.HasCategory(err, errors.CategoryTemplate) {
		t.Fatalf("expected template category, got %v", err)
	}
}

func TestDriveFailNextCopies(t *testing.T) {
	d := NewDrive()
	d.AddTemplate(collab.Template{ID: "tpl-1"}, "body")
	d.FailNextCopies(1)

	_, err := d.Copy(context.Background(), "tpl-1", "x", "dest")
	if err == nil || !errors.IsTransient(err) {
		t.Fatalf("expected transient failure, got %v", err)
	}
	if _, err := d.Copy(context.Background(), "tpl-1", "x", "dest"); err != nil {
		t.Fatalf("expected recovery on second call, got %v", err)
	}
}

func TestLookupPath(t *testing.T) {
	d := NewDrive()
	d.AddDestination(collab.Destination{ID: "dest-1", Path: "/reports/1A"})

	dest, err := d.LookupPath(context.Background(), "/reports/1A")
	if err != nil || dest.ID != "dest-1" {
		t.Fatalf("expected lookup hit, got %v %v", dest, err)
	}
	if _, err := d.LookupPath(context.Background(), "/nope"); !errors.HasCategory(err, errors.CategoryNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestArtifactRegistryUpsertDiscipline(t *testing.T) {
	ctx := context.Background()
	r := NewArtifactRegistry()

	rec := &collab.ArtifactRecord{ID: "a1", Type: "REPORT", Name: "first", Status: collab.ArtifactStatusCreated}
	if err := r.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := r.Insert(ctx, rec); !errors.HasCategory(err, errors.CategoryAlreadyExists) {
		t.Fatalf("expected already_exists on duplicate insert, got %v", err)
	}

	found, err := r.FindByID(ctx, "a1")
	if err != nil || found == nil || found.Name != "first" {
		t.Fatalf("expected record, got %v %v", found, err)
	}

	rec.Name = "second"
	if err := r.Update(ctx, "a1", rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	found, _ = r.FindByID(ctx, "a1")
	if found.Name != "second" {
		t.Fatalf("expected updated name, got %q", found.Name)
	}
	if r.Len() != 1 {
		t.Fatalf("expected single record, got %d", r.Len())
	}

	missing, err := r.FindByID(ctx, "absent")
	if missing != nil || err != nil {
		t.Fatalf("expected (nil,nil) for missing record, got %v %v", missing, err)
	}
}

func TestPermissionServiceRecordsGrants(t *testing.T) {
	ctx := context.Background()
	p := NewPermissionService()

	if _, err := p.Grant(ctx, "a1", "coord@school.example", collab.GrantWriter, collab.PrincipalUser); err != nil {
		t.Fatalf("grant: %v", err)
	}
	grants := p.Grants()
	if len(grants) != 1 || grants[0].Level != collab.GrantWriter {
		t.Fatalf("expected recorded writer grant, got %v", grants)
	}

	p.FailNextGrants(1)
	if _, err := p.Grant(ctx, "a1", "x@school.example", collab.GrantReader, collab.PrincipalUser); !errors.IsTransient(err) {
		t.Fatalf("expected transient grant failure, got %v", err)
	}
}

func TestClassAndStaffRegistries(t *testing.T) {
	ctx := context.Background()

	classes := NewClassRegistry()
	classes.Add(collab.Class{Code: "1A", Name: "Classe 1A", CoordinatorEmails: []string{"coord@school.example"}})
	c, err := classes.FindByKey(ctx, "1A")
	if err != nil || c.Name != "Classe 1A" {
		t.Fatalf("expected class hit, got %v %v", c, err)
	}
	if _, err := classes.FindByKey(ctx, "9Z"); !errors.HasCategory(err, errors.CategoryNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	staff := NewStaffRegistry()
	staff.Add(collab.Staff{Code: "REF-1A", Email: "referent@school.example"})
	s, err := staff.FindByCode(ctx, "REF-1A")
	if err != nil || s.Email != "referent@school.example" {
		t.Fatalf("expected staff hit, got %v %v", s, err)
	}
}

package notify

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

func TestNewRunCompletedEvent(t *testing.T) {
	rc := &pipeline.Context{
		RunID:   "run-1",
		DocType: "REPORT",
		Class:   &collab.Class{Code: "1A"},
		Error:   &pipeline.Failure{Step: "create_artifact", Message: "copy failed"},
	}
	rc.HaltedBy = "create_artifact"

	evt := newRunCompletedEvent(rc, 1500*time.Millisecond, pipeline.RunOutcomeFailed)
	if evt.RunID != "run-1" || evt.Type != "REPORT" || evt.ClassCode != "1A" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.Outcome != "failed" || evt.HaltedBy != "create_artifact" || evt.Error != "copy failed" {
		t.Fatalf("unexpected failure fields: %+v", evt)
	}
	if evt.DurationMS != 1500 {
		t.Fatalf("expected 1500ms, got %d", evt.DurationMS)
	}
}

func TestNewArtifactCreatedEvent(t *testing.T) {
	rc := &pipeline.Context{RunID: "run-1", DocType: "REPORT", Requester: "x@school.example"}
	if _, ok := newArtifactCreatedEvent(rc); ok {
		t.Fatal("expected no event without an artifact id")
	}

	rc.Publish("create_artifact", "artifact_id", "a1")
	rc.Publish("create_artifact", "artifact_link", "memory://dest/a1")
	rc.Publish("generate_name", "artifact_name", "Report 1A")

	evt, ok := newArtifactCreatedEvent(rc)
	if !ok {
		t.Fatal("expected event")
	}
	if evt.ArtifactID != "a1" || evt.Name != "Report 1A" || evt.Link != "memory://dest/a1" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.Requester != "x@school.example" {
		t.Fatalf("unexpected requester: %q", evt.Requester)
	}
}

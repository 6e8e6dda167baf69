package config

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/retry"
)

const sampleConfig = `
retry:
  mode: exponential
  initial_delay: 500ms
  max_delay: 10s
  max_retries: 3
nats:
  url: nats://localhost:4222
types:
  REPORT:
    name: Class report
    templates:
      DEFAULT: tpl-report
      SHORT: tpl-report-short
    name_pattern: "Report {class_name} {today}"
    destination:
      parent: "/reports"
      sub: "{class_name}"
    permissions:
      coordinator:
        artifact: WRITE
        destination: READ
      self:
        artifact: PROPRIETARIO
fixtures:
  destinations:
    - id: dest-1
      path: /reports/1A
  classes:
    - code: 1A
      name: Classe 1A
      coordinators: [coord@school.example]
`

func TestParseSampleConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	dt, ok := cfg.Type("REPORT")
	if !ok {
		t.Fatal("expected REPORT type")
	}
	if dt.Templates["DEFAULT"] != "tpl-report" {
		t.Fatalf("unexpected default template: %q", dt.Templates["DEFAULT"])
	}
	if dt.Destination.Parent != "/reports" || dt.Destination.Sub != "{class_name}" {
		t.Fatalf("unexpected destination spec: %+v", dt.Destination)
	}
	if dt.Permissions["self"].Artifact != "PROPRIETARIO" {
		t.Fatalf("unexpected self permission: %+v", dt.Permissions["self"])
	}

	p, err := cfg.RetryPolicy()
	if err != nil {
		t.Fatalf("retry policy: %v", err)
	}
	if p.Mode != retry.BackoffExponential || p.Initial != 500*time.Millisecond || p.MaxRetries != 3 {
		t.Fatalf("unexpected policy: %+v", p)
	}

	if cfg.NATS.URL != "nats://localhost:4222" || cfg.NATS.SubjectPrefix != "docgen" {
		t.Fatalf("unexpected nats config: %+v", cfg.NATS)
	}

	if len(cfg.Fixtures.Classes) != 1 || cfg.Fixtures.Classes[0].Code != "1A" {
		t.Fatalf("unexpected fixtures: %+v", cfg.Fixtures)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := cfg.RetryPolicy()
	if err != nil {
		t.Fatalf("retry policy: %v", err)
	}
	if p != retry.DefaultPolicy() {
		t.Fatalf("expected default policy, got %+v", p)
	}
}

func TestValidateRejectsBadRetryMode(t *testing.T) {
	_, err := Parse([]byte("retry:\n  mode: random\n"))
	if !errors.HasCategory(err, errors.CategoryConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestValidateRejectsTypeWithoutTemplates(t *testing.T) {
	_, err := Parse([]byte(`
types:
  REPORT:
    destination:
      parent: /reports
`))
	if !errors.HasCategory(err, errors.CategoryConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestValidateRejectsTypeWithoutDestinationParent(t *testing.T) {
	_, err := Parse([]byte(`
types:
  REPORT:
    templates:
      DEFAULT: tpl-1
`))
	if !errors.HasCategory(err, errors.CategoryConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

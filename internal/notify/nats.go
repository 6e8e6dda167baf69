// Package notify publishes run events to NATS. The publisher is an optional
// pipeline observer: outbound notification only, never part of the run's
// failure handling, and no durable history is kept here.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// RunCompletedEvent is emitted once per pipeline run.
type RunCompletedEvent struct {
	RunID      string `json:"run_id"`
	Type       string `json:"type"`
	ClassCode  string `json:"class_code,omitempty"`
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
	HaltedBy   string `json:"halted_by,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ArtifactCreatedEvent is emitted for each successfully generated artifact.
type ArtifactCreatedEvent struct {
	RunID      string `json:"run_id"`
	ArtifactID string `json:"artifact_id"`
	Name       string `json:"name"`
	Link       string `json:"link,omitempty"`
	Type       string `json:"type"`
	ClassCode  string `json:"class_code,omitempty"`
	Requester  string `json:"requester,omitempty"`
}

// Publisher implements pipeline.RunObserver over a NATS connection.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// Connect dials NATS and returns a run event publisher.
func Connect(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("docgen"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if prefix == "" {
		prefix = "docgen"
	}
	return &Publisher{conn: conn, prefix: prefix, logger: logger}, nil
}

func (p *Publisher) OnStepStart(string) {}

func (p *Publisher) OnStepComplete(string, time.Duration, pipeline.StepResult, int) {}

// OnRunComplete publishes the run completion event, plus an artifact created
// event when the run produced one. Publish failures are logged and dropped.
func (p *Publisher) OnRunComplete(rc *pipeline.Context, d time.Duration, outcome pipeline.RunOutcome) {
	evt := newRunCompletedEvent(rc, d, outcome)
	p.publish(p.prefix+".run.completed", evt)

	if outcome != pipeline.RunOutcomeSuccess {
		return
	}
	if created, ok := newArtifactCreatedEvent(rc); ok {
		p.publish(p.prefix+".artifact.created", created)
	}
}

func newRunCompletedEvent(rc *pipeline.Context, d time.Duration, outcome pipeline.RunOutcome) RunCompletedEvent {
	evt := RunCompletedEvent{
		RunID:      rc.RunID,
		Type:       rc.DocType,
		Outcome:    string(outcome),
		DurationMS: d.Milliseconds(),
		HaltedBy:   rc.HaltedBy,
	}
	if rc.Class != nil {
		evt.ClassCode = rc.Class.Code
	}
	if rc.Error != nil {
		evt.Error = rc.Error.Message
	}
	return evt
}

func newArtifactCreatedEvent(rc *pipeline.Context) (ArtifactCreatedEvent, bool) {
	artifactID := rc.StringValue("artifact_id")
	if artifactID == "" {
		return ArtifactCreatedEvent{}, false
	}
	evt := ArtifactCreatedEvent{
		RunID:      rc.RunID,
		ArtifactID: artifactID,
		Name:       rc.StringValue("artifact_name"),
		Link:       rc.StringValue("artifact_link"),
		Type:       rc.DocType,
		Requester:  rc.Requester,
	}
	if rc.Class != nil {
		evt.ClassCode = rc.Class.Code
	}
	return evt, true
}

func (p *Publisher) publish(subject string, evt any) {
	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.Warn("marshal run event failed", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("publish run event failed", "subject", subject, "error", err)
	}
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	_ = p.conn.Flush()
	p.conn.Close()
}

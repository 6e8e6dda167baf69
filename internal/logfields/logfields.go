package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRun        = "run"
	KeyRunID      = "run_id"
	KeyStep       = "step"
	KeyType       = "doc_type"
	KeyClass      = "class"
	KeyArtifact   = "artifact_id"
	KeyTemplate   = "template_id"
	KeyAttempts   = "attempts"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Run(name string) slog.Attr       { return slog.String(KeyRun, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func DocType(t string) slog.Attr      { return slog.String(KeyType, t) }
func Class(code string) slog.Attr     { return slog.String(KeyClass, code) }
func Artifact(id string) slog.Attr    { return slog.String(KeyArtifact, id) }
func Template(id string) slog.Attr    { return slog.String(KeyTemplate, id) }
func Attempts(n int) slog.Attr        { return slog.Int(KeyAttempts, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

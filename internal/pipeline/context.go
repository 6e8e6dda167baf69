// Package pipeline implements the generation run machinery: the Context
// threaded through a run, the Step template method, the execution guard
// that classifies and retries failures, and the Pipeline that drives steps
// in order until completion or the first unrecoverable failure.
package pipeline

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// LogLevel is the severity of a run log entry.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// LogEntry is one ordered record in the in-memory run log.
type LogEntry struct {
	Time    time.Time
	Step    string
	Level   LogLevel
	Message string
}

// Failure is the structured error slot set at most once per run.
type Failure struct {
	Step     string
	Message  string
	Category errors.ErrorCategory
	Stack    string
}

// Config is a key->value configuration scope. A step's own config takes
// precedence over the pipeline's global scope for the same key.
type Config map[string]any

// Merge returns a copy of c with keys from other added where absent.
func (c Config) Merge(other Config) Config {
	merged := make(Config, len(c)+len(other))
	maps.Copy(merged, other)
	maps.Copy(merged, c)
	return merged
}

// GetString returns a string config value or def when absent or non-string.
func (c Config) GetString(key, def string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// TemplateSelector is the caller-supplied template selection override hook.
type TemplateSelector func(rc *Context) (*collab.Template, error)

// Context is the mutable record threaded through one pipeline run. It is
// exclusively owned by the pipeline during the run: single writer, never
// shared across concurrent runs.
type Context struct {
	// Immutable-at-start fields.
	RunID          string
	RunName        string
	DocType        string
	Params         map[string]any
	Placeholders   map[string]string
	Class          *collab.Class
	Requester      string
	Collabs        *collab.Set
	SelectTemplate TemplateSelector
	GlobalConfig   Config
	Logger         *slog.Logger

	// Accumulation fields.
	RunLog   []LogEntry
	Error    *Failure
	HaltedBy string

	results   map[string]map[string]any
	stepOrder []string
}

// clone returns a shallow copy so the caller's context is never mutated
// directly by a run.
func (rc *Context) clone() *Context {
	cp := *rc
	cp.RunLog = make([]LogEntry, 0, 16)
	cp.results = make(map[string]map[string]any)
	cp.stepOrder = nil
	return &cp
}

// Publish records a step result under the step's own scope. Results are not
// flattened onto the context; read them back through Value, which resolves
// key collisions by execution order (last writer wins) without any silent
// overwrite in storage.
func (rc *Context) Publish(step, key string, value any) {
	if rc.results == nil {
		rc.results = make(map[string]map[string]any)
	}
	if _, ok := rc.results[step]; !ok {
		rc.results[step] = make(map[string]any)
		rc.stepOrder = append(rc.stepOrder, step)
	}
	rc.results[step][key] = value
}

// Value returns the most recently published value for key across all steps,
// scanning in reverse execution order.
func (rc *Context) Value(key string) (any, bool) {
	for i := len(rc.stepOrder) - 1; i >= 0; i-- {
		if v, ok := rc.results[rc.stepOrder[i]][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// StringValue returns a published string value, or "" when absent.
func (rc *Context) StringValue(key string) string {
	if v, ok := rc.Value(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// StepResults returns a copy of the results one step published.
func (rc *Context) StepResults(step string) map[string]any {
	src, ok := rc.results[step]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(src))
	maps.Copy(out, src)
	return out
}

// Lookup reports whether a named field is present on the context: either a
// published result, an intrinsic run field, or one of the collaborator
// handles. Used by precondition checks.
func (rc *Context) Lookup(name string) (any, bool) {
	if v, ok := rc.Value(name); ok {
		return v, true
	}
	switch name {
	case "type":
		if rc.DocType != "" {
			return rc.DocType, true
		}
	case "class":
		if rc.Class != nil {
			return rc.Class, true
		}
	case "requester":
		if rc.Requester != "" {
			return rc.Requester, true
		}
	case "params":
		if rc.Params != nil {
			return rc.Params, true
		}
	case "collaborators":
		if rc.Collabs != nil {
			return rc.Collabs, true
		}
	}
	if rc.Collabs != nil {
		switch name {
		case "templates":
			if rc.Collabs.Templates != nil {
				return rc.Collabs.Templates, true
			}
		case "store":
			if rc.Collabs.Store != nil {
				return rc.Collabs.Store, true
			}
		case "destinations":
			if rc.Collabs.Destinations != nil {
				return rc.Collabs.Destinations, true
			}
		case "resolver":
			if rc.Collabs.Resolver != nil {
				return rc.Collabs.Resolver, true
			}
		case "permissions":
			if rc.Collabs.Permissions != nil {
				return rc.Collabs.Permissions, true
			}
		case "classes":
			if rc.Collabs.Classes != nil {
				return rc.Collabs.Classes, true
			}
		case "staff":
			if rc.Collabs.Staff != nil {
				return rc.Collabs.Staff, true
			}
		case "artifacts":
			if rc.Collabs.Artifacts != nil {
				return rc.Collabs.Artifacts, true
			}
		}
	}
	return nil, false
}

// AppendLog records an entry in the run log and forwards it to the logger.
func (rc *Context) AppendLog(step string, level LogLevel, message string) {
	rc.RunLog = append(rc.RunLog, LogEntry{Time: time.Now(), Step: step, Level: level, Message: message})
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{logfields.Step(step), logfields.RunID(rc.RunID), logfields.DocType(rc.DocType)}
	switch level {
	case LevelDebug:
		logger.Debug(message, attrs...)
	case LevelWarn:
		logger.Warn(message, attrs...)
	case LevelError:
		logger.Error(message, attrs...)
	default:
		logger.Info(message, attrs...)
	}
}

// Logf formats and appends a run log entry.
func (rc *Context) Logf(step string, level LogLevel, format string, args ...any) {
	rc.AppendLog(step, level, fmt.Sprintf(format, args...))
}

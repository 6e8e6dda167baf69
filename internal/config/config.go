// Package config loads and validates the docgen YAML configuration:
// document type metadata, retry policy settings, observability toggles,
// and fixture data for the default in-memory collaborators.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/retry"
)

// Config is the root configuration document.
type Config struct {
	Retry    RetryConfig             `yaml:"retry"`
	Metrics  MetricsConfig           `yaml:"metrics"`
	NATS     NATSConfig              `yaml:"nats"`
	Registry RegistryConfig          `yaml:"registry"`
	Types    map[string]DocumentType `yaml:"types"`
	Fixtures Fixtures                `yaml:"fixtures"`
}

// RetryConfig shapes the execution guard's backoff policy. Delays are
// duration strings ("1s", "500ms").
type RetryConfig struct {
	Mode         string `yaml:"mode"`
	InitialDelay string `yaml:"initial_delay"`
	MaxDelay     string `yaml:"max_delay"`
	MaxRetries   *int   `yaml:"max_retries"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// NATSConfig configures the optional run event publisher.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// RegistryConfig selects the artifact registry backend. An empty path keeps
// the in-memory registry; ":memory:" or a file path selects SQLite.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// DocumentType is the per-type generation metadata.
type DocumentType struct {
	Name        string            `yaml:"name"`
	Templates   map[string]string `yaml:"templates"` // variant key -> template id, DEFAULT fallback
	NamePattern string            `yaml:"name_pattern"`
	Destination DestinationSpec   `yaml:"destination"`
	SheetName   string            `yaml:"sheet_name"`
	ExtraParams map[string]string `yaml:"extra_params"`
	Permissions map[string]RoleGrant `yaml:"permissions"` // role -> levels
}

// DestinationSpec holds the placeholder patterns resolved into a destination
// registry path.
type DestinationSpec struct {
	Parent string `yaml:"parent"`
	Sub    string `yaml:"sub"`
}

// RoleGrant is the pair of permission levels a role receives on the created
// artifact and on its destination container. Levels are READ, COMMENT,
// WRITE, OWNER or NONE; legacy aliases LETTURA, COMMENTO, SCRITTURA and
// PROPRIETARIO are accepted.
type RoleGrant struct {
	Artifact    string `yaml:"artifact"`
	Destination string `yaml:"destination"`
}

// Fixtures seeds the default in-memory collaborators.
type Fixtures struct {
	Destinations []DestinationFixture `yaml:"destinations"`
	Templates    []TemplateFixture    `yaml:"templates"`
	Classes      []ClassFixture       `yaml:"classes"`
	Staff        []StaffFixture       `yaml:"staff"`
}

type DestinationFixture struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type TemplateFixture struct {
	ID     string            `yaml:"id"`
	Name   string            `yaml:"name"`
	Kind   string            `yaml:"kind"` // document (default) or spreadsheet
	Body   string            `yaml:"body"`
	Sheets map[string]string `yaml:"sheets"`
}

type ClassFixture struct {
	Code            string              `yaml:"code"`
	Name            string              `yaml:"name"`
	Coordinators    []string            `yaml:"coordinators"`
	Tutors          []string            `yaml:"tutors"`
	SubjectTeachers map[string][]string `yaml:"subject_teachers"`
}

type StaffFixture struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("read config %s", path)).WithCause(err).Build()
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ConfigError("parse config").WithCause(err).Build()
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with no types and default retry settings.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Retry.Mode == "" {
		c.Retry.Mode = string(retry.BackoffLinear)
	}
	if c.Retry.InitialDelay == "" {
		c.Retry.InitialDelay = "1s"
	}
	if c.Retry.MaxDelay == "" {
		c.Retry.MaxDelay = "30s"
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "docgen"
	}
	if c.Types == nil {
		c.Types = make(map[string]DocumentType)
	}
}

// Validate checks cross-field consistency. Retry delays must parse as
// durations and every type needs at least one template or a name pattern
// a destination can be derived from.
func (c *Config) Validate() error {
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	for key, dt := range c.Types {
		if len(dt.Templates) == 0 {
			return errors.ConfigError(fmt.Sprintf("type %s: no templates configured", key)).Build()
		}
		if dt.Destination.Parent == "" {
			return errors.ConfigError(fmt.Sprintf("type %s: destination parent pattern required", key)).Build()
		}
	}
	return nil
}

// RetryPolicy materializes the configured guard policy.
func (c *Config) RetryPolicy() (retry.Policy, error) {
	mode := retry.BackoffMode(c.Retry.Mode)
	switch mode {
	case retry.BackoffFixed, retry.BackoffLinear, retry.BackoffExponential:
	default:
		return retry.Policy{}, errors.ConfigError(fmt.Sprintf("retry: unknown mode %q", c.Retry.Mode)).Build()
	}
	initial, err := time.ParseDuration(c.Retry.InitialDelay)
	if err != nil {
		return retry.Policy{}, errors.ConfigError(fmt.Sprintf("retry: invalid initial_delay %q", c.Retry.InitialDelay)).WithCause(err).Build()
	}
	max, err := time.ParseDuration(c.Retry.MaxDelay)
	if err != nil {
		return retry.Policy{}, errors.ConfigError(fmt.Sprintf("retry: invalid max_delay %q", c.Retry.MaxDelay)).WithCause(err).Build()
	}
	retries := retry.DefaultPolicy().MaxRetries
	if c.Retry.MaxRetries != nil {
		retries = *c.Retry.MaxRetries
	}
	return retry.NewPolicy(mode, initial, max, retries), nil
}

// Type returns the metadata for a document type key.
func (c *Config) Type(key string) (DocumentType, bool) {
	dt, ok := c.Types[key]
	return dt, ok
}

// TypeKeys returns the configured document type keys.
func (c *Config) TypeKeys() []string {
	keys := make([]string, 0, len(c.Types))
	for k := range c.Types {
		keys = append(keys, k)
	}
	return keys
}

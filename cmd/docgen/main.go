package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docgen/internal/artifacts"
	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/notify"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docgen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Type         string            `short:"t" required:"" help:"Document type key"`
		Class        string            `help:"Target class key (e.g. 1A)"`
		Name         string            `short:"n" help:"Explicit artifact name, overrides the type's pattern"`
		Requester    string            `short:"r" help:"Requester email, receives the 'self' role grants"`
		Param        map[string]string `short:"p" help:"Run parameters (key=value)"`
		Placeholder  map[string]string `short:"P" help:"Placeholder overrides (key=value)"`
		ShowRunLog   bool              `help:"Print the full run log after completion"`
	} `cmd:"" help:"Generate one document"`

	Types struct{} `cmd:"" help:"List configured document types"`
}

func main() {
	// .env overlay for deployment-local settings (DOCGEN_* variables)
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	configPath := CLI.Config
	if env := os.Getenv("DOCGEN_CONFIG"); env != "" {
		configPath = env
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyEnvOverrides(cfg)

	switch ctx.Command() {
	case "generate":
		if err := runGenerate(cfg, logger); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "types":
		runTypes(cfg)
	}
}

// applyEnvOverrides lets .env/environment settings win over the YAML file
// for deployment-specific endpoints.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("DOCGEN_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("DOCGEN_REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}
}

func runGenerate(cfg *config.Config, logger *slog.Logger) error {
	opts := []generator.Option{generator.WithLogger(logger)}

	// SQLite-backed registry when a path is configured; in-memory otherwise
	if cfg.Registry.Path != "" {
		reg, err := artifacts.NewSQLiteRegistry(cfg.Registry.Path)
		if err != nil {
			return fmt.Errorf("open artifact registry: %w", err)
		}
		defer func() {
			if err := reg.Close(); err != nil {
				slog.Warn("Failed to close artifact registry", "error", err)
			}
		}()
		set := generator.MemorySet(cfg.Fixtures)
		set.Artifacts = reg
		opts = append(opts, generator.WithCollaborators(set))
	}

	if cfg.Metrics.Enabled {
		registry := prom.NewRegistry()
		opts = append(opts, generator.WithRecorder(metrics.NewPrometheusRecorder(registry)))
		if cfg.Metrics.Listen != "" {
			go serveMetrics(cfg.Metrics.Listen, registry)
		}
	}

	if cfg.NATS.URL != "" {
		pub, err := notify.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		defer pub.Close()
		opts = append(opts, generator.WithObserver(pub))
	}

	g, err := generator.New(cfg, opts...)
	if err != nil {
		return err
	}

	params := make(map[string]any, len(CLI.Generate.Param))
	for k, v := range CLI.Generate.Param {
		params[k] = v
	}

	rc := g.Generate(context.Background(), generator.Input{
		Type:         CLI.Generate.Type,
		ClassKey:     CLI.Generate.Class,
		Name:         CLI.Generate.Name,
		Requester:    CLI.Generate.Requester,
		Params:       params,
		Placeholders: CLI.Generate.Placeholder,
	})

	printSummary(rc)
	if CLI.Generate.ShowRunLog {
		printRunLog(rc)
	}
	if rc.Error != nil {
		return fmt.Errorf("step %s: %s", rc.Error.Step, rc.Error.Message)
	}
	return nil
}

func printSummary(rc *pipeline.Context) {
	fmt.Printf("run:         %s\n", rc.RunID)
	fmt.Printf("type:        %s\n", rc.DocType)
	if rc.Class != nil {
		fmt.Printf("class:       %s (%s)\n", rc.Class.Name, rc.Class.Code)
	}
	if name := rc.StringValue("artifact_name"); name != "" {
		fmt.Printf("artifact:    %s\n", name)
	}
	if link := rc.StringValue("artifact_link"); link != "" {
		fmt.Printf("link:        %s\n", link)
	}
	if path := rc.StringValue("destination_path"); path != "" {
		fmt.Printf("destination: %s\n", path)
	}
	if rc.Error != nil {
		fmt.Printf("FAILED at %s: %s\n", rc.Error.Step, rc.Error.Message)
	} else {
		fmt.Println("status:      OK")
	}
}

func printRunLog(rc *pipeline.Context) {
	for _, e := range rc.RunLog {
		fmt.Printf("%s [%s] %-24s %s\n", e.Time.Format("15:04:05.000"), e.Level, e.Step, e.Message)
	}
}

func runTypes(cfg *config.Config) {
	keys := cfg.TypeKeys()
	sort.Strings(keys)
	for _, key := range keys {
		dt, _ := cfg.Type(key)
		name := dt.Name
		if name == "" {
			name = key
		}
		fmt.Printf("%-16s %s (templates: %d)\n", key, name, len(dt.Templates))
	}
}

func serveMetrics(listen string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(listen, mux); err != nil {
		slog.Warn("Metrics listener stopped", "error", err)
	}
}

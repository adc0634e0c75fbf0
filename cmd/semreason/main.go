// Package main provides the semreason binary entry point.
// Semreason is an ontology reasoning service: it derives new facts
// from RDF-style triples with forward chaining, explains how facts are
// supported, and explores graph neighborhoods over asserted and
// inferred edges. The serve mode consumes graph entities from NATS
// and republishes derived facts via the semstreams framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semreason/commands"
	"github.com/c360studio/semreason/config"
	"github.com/c360studio/semreason/processor/reasoner"
	"github.com/c360studio/semstreams/component"
	streamcfg "github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/natsclient"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semreason"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	global := &commands.GlobalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology reasoning over RDF-style triples",
		Long: `Semreason derives new facts from RDF-style triples using forward
chaining over RDFS and OWL rules, explains how any fact is supported,
and explores graph neighborhoods across asserted and inferred edges.

Local subcommands (infer, explain, explore, rules, export) operate on
YAML triples files. The serve subcommand runs the reasoner as a
semstreams processor that consumes graph entities from NATS and
republishes derived facts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(global.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&global.ConfigPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&global.RulesPath, "rules", "", "Custom rule file loaded on top of the builtins")
	cmd.PersistentFlags().StringVar(&global.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		commands.NewInferCmd(global),
		commands.NewExplainCmd(global),
		commands.NewExploreCmd(global),
		commands.NewRulesCmd(global),
		commands.NewExportCmd(global),
		serveCmd(global),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func serveCmd(global *commands.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reasoner as a graph processor on NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(global)
		},
	}
}

func serve(global *commands.GlobalFlags) error {
	printBanner()

	logger := slog.Default()

	var cfg *config.Config
	var err error
	if global.ConfigPath != "" {
		cfg, err = config.LoadFromFile(global.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	ctx := context.Background()
	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	// Ensure JetStream streams exist
	if err := ensureStreams(ctx, natsClient, logger); err != nil {
		return err
	}

	reasonerConfig := reasoner.DefaultConfig()
	reasonerConfig.MaxIterations = cfg.Engine.MaxIterations
	reasonerConfig.MaxInferences = cfg.Engine.MaxInferences
	rawConfig, err := json.Marshal(reasonerConfig)
	if err != nil {
		return fmt.Errorf("marshal reasoner config: %w", err)
	}

	deps := component.Dependencies{
		NATSClient: natsClient,
		Logger:     logger,
	}
	discoverable, err := reasoner.NewComponent(rawConfig, deps)
	if err != nil {
		return fmt.Errorf("create reasoner: %w", err)
	}
	comp, ok := discoverable.(*reasoner.Component)
	if !ok {
		return fmt.Errorf("unexpected component type %T", discoverable)
	}

	if err := comp.Initialize(); err != nil {
		return fmt.Errorf("initialize reasoner: %w", err)
	}

	// Setup signal handling
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := comp.Start(signalCtx); err != nil {
		return fmt.Errorf("start reasoner: %w", err)
	}

	slog.Info("Semreason ready", "version", Version)

	// Block until shutdown signal
	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := comp.Stop(30 * time.Second); err != nil {
		slog.Error("Error stopping reasoner", "error", err)
	}

	slog.Info("Semreason shutdown complete")
	return nil
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║            Semreason v" + Version + "                    ║")
	fmt.Println("║      Ontology Reasoning Service               ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}

func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := "nats://localhost:4222"

	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	} else if envURL := os.Getenv("SEMREASON_NATS_URL"); envURL != "" {
		natsURL = envURL
	} else if cfg.NATS.URL != "" {
		natsURL = cfg.NATS.URL
	}

	logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20), // Higher threshold for startup bursts
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func ensureStreams(ctx context.Context, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")

	streamsConfig := &streamcfg.Config{
		Version: "1.0.0",
		Platform: streamcfg.PlatformConfig{
			Org:         "semreason",
			ID:          "semreason-local",
			Environment: "dev",
		},
		Streams: streamcfg.StreamConfigs{
			"GRAPH": streamcfg.StreamConfig{
				Subjects: []string{
					"graph.ingest.entity",
					"graph.export.>",
				},
				MaxAge:   "24h",
				Storage:  "memory",
				Replicas: 1,
			},
		},
	}

	streamsManager := streamcfg.NewStreamsManager(natsClient, logger)
	if err := streamsManager.EnsureStreams(ctx, streamsConfig); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	logger.Debug("JetStream streams ready")
	return nil
}

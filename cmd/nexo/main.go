// NEXO is the MG Tools commercial analysis agent.
//
// It exposes an HTTP API where sales questions in natural language are
// answered by a language model with access to the business database
// (clientes, produtos, pedidos, vendedores). Configuration is loaded from
// a single YAML file discovered automatically (see
// [config.DefaultSearchPaths]).
//
// Usage:
//
//	nexo serve               Start the API server
//	nexo init [dir]          Initialize a working directory with defaults
//	nexo ask <question>      Run a single analysis (for testing)
//	nexo version             Print version and build information
//	nexo -o json version     Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mgtools/nexo/internal/agent"
	"github.com/mgtools/nexo/internal/api"
	"github.com/mgtools/nexo/internal/auth"
	"github.com/mgtools/nexo/internal/buildinfo"
	"github.com/mgtools/nexo/internal/config"
	"github.com/mgtools/nexo/internal/history"
	"github.com/mgtools/nexo/internal/llm"
	"github.com/mgtools/nexo/internal/store"
	"github.com/mgtools/nexo/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run], keeping
// os.Exit and os.Args out of the application logic so the full lifecycle
// can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the nexo command. Arguments are parsed
// by hand; the flag package relies on package-level globals which makes it
// impossible to call run() concurrently from tests, and our argument
// surface is small.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "init":
		dir := "."
		if len(cmdArgs) > 0 {
			dir = cmdArgs[0]
		}
		return runInit(stdout, dir)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: nexo ask <question>")
		}
		return runAsk(ctx, stdout, stderr, configPath, cmdArgs)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "NEXO - MG Tools Commercial Analysis Agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: nexo [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the API server")
	fmt.Fprintln(w, "  init [dir]   Initialize working directory with defaults (default: .)")
	fmt.Fprintln(w, "  ask          Run a single analysis (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/nexo/config.yaml, /etc/nexo/config.yaml")
	return nil
}

// defaultConfigYAML is written by "nexo init". The API key is referenced
// through an environment variable so the file can be committed safely.
const defaultConfigYAML = `# NEXO configuration
listen:
  address: ""
  port: 8080

openai:
  api_key: ${OPENAI_API_KEY}
  # base_url: https://api.openai.com/v1
  model: gpt-4o-mini
  temperature: 0.3
  max_tokens: 2000

agent:
  # system_prompt: |
  #   Custom persona here
  max_iterations: 5
  history_limit: 50

auth:
  session_ttl_minutes: 480

data_dir: ./data
log_level: info
`

// runInit handles "nexo init [dir]": creates the directory layout and a
// starter config file. Existing files are never overwritten.
func runInit(stdout io.Writer, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Fprintf(stdout, "config already exists: %s\n", cfgPath)
		return nil
	}

	if err := os.WriteFile(cfgPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(stdout, "initialized %s\n", dir)
	fmt.Fprintf(stdout, "  config:   %s\n", cfgPath)
	fmt.Fprintf(stdout, "  data dir: %s\n", filepath.Join(dir, "data"))
	fmt.Fprintln(stdout, "set OPENAI_API_KEY and run: nexo serve")
	return nil
}

// runAsk handles "nexo ask <question>": boots the store and the agent,
// runs a single analysis and prints the response. The exchange is not
// persisted to the chat history.
func runAsk(ctx context.Context, stdout io.Writer, stderr io.Writer, configPath string, args []string) error {
	logger := newLogger(stderr, slog.LevelWarn)
	slog.SetDefault(logger)

	question := strings.Join(args, " ")

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, "nexo.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	ag := agent.New(llm.NewOpenAI(cfg.OpenAI), tools.NewAnalysisRegistry(st),
		agent.WithSystemPrompt(cfg.Agent.SystemPrompt),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithLogger(logger),
	)

	result, err := ag.Analyze(ctx, question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, result.Response)
	return nil
}

// runServe handles "nexo serve", the primary operating mode: loads config,
// opens the database, wires the agent and starts the HTTP server, blocking
// until a shutdown signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting NEXO", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known. The level
	// string was already validated during config load.
	if cfg.LogLevel != "" {
		level, _ := config.ParseLogLevel(cfg.LogLevel)
		logger = newLogger(stdout, level)
	}
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"model", cfg.OpenAI.Model,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	// One SQLite file holds both the business tables and the chat history;
	// both stores share the connection pool.
	dbPath := filepath.Join(cfg.DataDir, "nexo.db")
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer st.Close()
	logger.Info("database opened", "path", dbPath)

	hs, err := history.New(st.DB())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}

	ag := agent.New(llm.NewOpenAI(cfg.OpenAI), tools.NewAnalysisRegistry(st),
		agent.WithSystemPrompt(cfg.Agent.SystemPrompt),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithLogger(logger),
	)

	am := auth.NewManager(st, time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute)

	server := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, ag, st, hs, am, cfg.Agent.HistoryLimit, logger)

	// SIGINT/SIGTERM cancellation flows through the same ctx used by all
	// components.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(ctx); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("NEXO stopped")
	return nil
}

// newLogger creates a structured text logger writing to w. All log output
// in NEXO goes through slog.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig locates and parses the YAML configuration file. If explicit
// is non-empty that exact path is used and must exist; otherwise
// [config.FindConfig] searches the default locations.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"yc/internal/action"
	"yc/internal/config"
	"yc/internal/domain"
	"yc/internal/registry"
	"yc/internal/service"
	"yc/internal/tui"
)

const (
	version         = "0.3.0"
	shutdownTimeout = 2 * time.Second
	queryTimeout    = 5 * time.Second
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var debug bool
	var query string
	var limit int
	flag.StringVar(&cfgPath, "config", "", "Path to YAML or TOML config file (optional; uses $YC_CONFIG, ./yc.yaml or ~/.config/yescommander/yc.yaml)")
	flag.BoolVar(&debug, "debug", false, "Show result scores in the preview")
	flag.StringVar(&query, "query", "", "Print the ranked results for a query and exit without starting the UI")
	flag.IntVar(&limit, "limit", 20, "Maximum number of results printed by --query (0 for all)")
	flag.Parse()
	if cfgPath == "" {
		cfgPath = os.Getenv("YC_CONFIG")
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cacheDir, err := config.CacheDir()
	if err != nil {
		log.Fatalf("failed to resolve cache dir: %v", err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Fatalf("failed to create cache dir: %v", err)
	}
	logPath := filepath.Join(cacheDir, "yc.log")

	if query != "" {
		if err := runQuery(cfg, cfgPath, query, limit); err != nil {
			log.Fatal(err)
		}
		return
	}

	logFile, err := tea.LogToFile(logPath, "yc")
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}

	root, err := buildRoot(cfg, cfgPath, logPath)
	if err != nil {
		restoreLog(logFile)
		log.Fatalf("failed to build commanders: %v", err)
	}

	d := service.NewDispatcher(root,
		service.WithBatchSize(cfg.Search.BatchSize),
		service.WithSinkCapacity(cfg.Search.SinkCapacity),
	)
	m := tui.New(d, tui.Options{
		UI:           cfg.UI,
		PollInterval: time.Duration(cfg.Search.PollIntervalMs) * time.Millisecond,
		Debug:        debug,
	})
	final, runErr := tea.NewProgram(m).Run()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := d.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	cancel()
	restoreLog(logFile)
	if runErr != nil {
		log.Fatal(runErr)
	}

	chosen, act := final.(tui.Model).Outcome()
	switch act {
	case tui.ActionExecute:
		if err := chosen.Execute(); err != nil {
			log.Fatalf("%s: %v", chosen, err)
		}
	case tui.ActionCopy:
		if err := action.Copy(chosen.CopyText()); err != nil {
			log.Fatalf("copy failed: %v", err)
		}
		fmt.Println("Copied")
	}
}

func buildRoot(cfg *config.AppConfig, cfgPath, logPath string) (domain.Commander, error) {
	return registry.Build(cfg, registry.Options{DebugInfo: map[string]any{
		"version":  version,
		"go":       runtime.Version(),
		"config":   cfgPath,
		"log":      logPath,
		"mode":     cfg.Search.Mode,
		"viewers":  cfg.FileViewer,
		"children": len(cfg.Commanders),
	}})
}

// runQuery prints one result per line, best first. Logs stay on stderr.
func runQuery(cfg *config.AppConfig, cfgPath, text string, limit int) error {
	root, err := buildRoot(cfg, cfgPath, "stderr")
	if err != nil {
		return fmt.Errorf("failed to build commanders: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	cmds, err := service.Query(ctx, root, text, limit)
	for _, c := range cmds {
		fmt.Println(c.String())
	}
	return err
}

// restoreLog sends log output back to stderr once the terminal is ours again.
func restoreLog(f *os.File) {
	_ = f.Close()
	log.SetOutput(os.Stderr)
	log.SetPrefix("")
}

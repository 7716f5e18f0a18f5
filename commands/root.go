package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lockedin/go-focus-monitor/internal/capture"
	"github.com/lockedin/go-focus-monitor/internal/classifier"
	"github.com/lockedin/go-focus-monitor/internal/core/profile"
	"github.com/lockedin/go-focus-monitor/internal/monitor"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir    string
	configFile string

	// Monitoring related
	profileName string
	interval    time.Duration
	textOnly    bool

	// Ollama related
	ollamaURL   string
	ollamaModel string

	rootCmd = &cobra.Command{
		Use:   "go-focus-monitor [flags]",
		Short: "Screen-based focus monitoring tool",
		Long: `go-focus-monitor watches your screen and nudges you back to work.

It captures a screenshot on a fixed cadence, asks a local Ollama vision
model whether the screen matches your focus profile, and escalates
notifications while you stay distracted.

Examples:
  go-focus-monitor                          # Monitor with the active profile
  go-focus-monitor --profile student        # Monitor with a specific profile
  go-focus-monitor --interval 30s           # Capture every 30 seconds
  go-focus-monitor --text-only              # Classify window titles without screenshots
  go-focus-monitor profile list             # Show available profiles
  go-focus-monitor sessions                 # Show recorded sessions`,
		RunE: runMonitor,
	}
)

const defaultDataDir = "~/.go-focus-monitor"

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Data directory path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	rootCmd.Flags().StringVar(&configFile, "config", "",
		"Config file path (default <dir>/config.yaml)")
	rootCmd.Flags().StringVarP(&profileName, "profile", "p", "",
		"Profile to monitor with (default: last used)")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0,
		"Capture interval (e.g., 15s, 1m)")
	rootCmd.Flags().BoolVar(&textOnly, "text-only", false,
		"Classify from window titles only, without screenshots")
	rootCmd.Flags().StringVar(&ollamaURL, "ollama-url", "",
		"Ollama base URL (default http://localhost:11434)")
	rootCmd.Flags().StringVar(&ollamaModel, "ollama-model", "",
		"Ollama vision model name (default minicpm-v)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	registry, _, watcher, err := openProfiles(cfg)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if profileName != "" {
		if err := registry.SetActive(profileName); err != nil {
			return fmt.Errorf("unknown profile %q, run 'go-focus-monitor profile list'", profileName)
		}
		if err := writeActiveProfile(cfg.DataDir, profileName); err != nil {
			util.LogWarnf("Failed to remember active profile: %v", err)
		}
	}

	client, err := classifier.NewOllamaClient(cfg.Ollama)
	if err != nil {
		return err
	}
	healthCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Healthy(healthCtx); err != nil {
		return fmt.Errorf("ollama is not reachable at %s (is 'ollama serve' running?): %w",
			cfg.Ollama.BaseURL, err)
	}

	recorder, err := monitor.NewRecorder(cfg.SessionsDir)
	if err != nil {
		return err
	}
	cache, err := monitor.NewDistractionCache(
		filepath.Join(cfg.DataDir, "distractions"), registry.ActiveName())
	if err != nil {
		return err
	}

	sampler := capture.NewProcessSampler()
	if running := sampler.Running(registry.Active().Blocklist); len(running) > 0 {
		fmt.Printf("Heads up: blocklisted apps already running: %s\n", strings.Join(running, ", "))
	}
	source, err := capture.NewScreenshotSource(cfg.ScreenshotsDir, sampler)
	if err != nil {
		return err
	}

	scheduler, err := monitor.NewScheduler(cfg, source, client, registry,
		recorder, cache, monitor.ConsoleSink{})
	if err != nil {
		return err
	}

	fmt.Printf("Monitoring with profile %q every %v. Press Ctrl+C to stop.\n",
		registry.ActiveName(), cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Run(ctx); err != nil {
		return err
	}
	if err := recorder.Finish(); err != nil {
		return err
	}

	summary := recorder.Summary()
	fmt.Printf("\nSession finished: %d checks, %d distractions, peak level %d.\n",
		summary.VerdictCount, summary.DistractionCount, summary.PeakLevel)
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// buildConfig assembles the effective configuration: defaults, then the
// config file, then command-line flags, then the environment.
func buildConfig() (*monitor.Config, error) {
	// Optional .env for OLLAMA_* overrides, ignored when absent.
	_ = godotenv.Load()

	cfg := &monitor.Config{DataDir: util.ExpandPath(dataDir)}

	path := configFile
	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if err := cfg.LoadConfigFile(util.ExpandPath(path)); err != nil {
		return nil, err
	}

	if interval != 0 {
		cfg.Interval = interval
	}
	if ollamaURL != "" {
		cfg.Ollama.BaseURL = ollamaURL
	}
	if ollamaModel != "" {
		cfg.Ollama.Model = ollamaModel
	}
	if textOnly {
		cfg.Ollama.TextOnly = true
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" && cfg.Ollama.Model == "" {
		cfg.Ollama.Model = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logFile := filepath.Join(cfg.DataDir, "logs", "app.log")
	if err := util.EnsureDir(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	return cfg, nil
}

// openProfiles loads stored profiles into a registry, restores the last
// active profile, and starts watching the profiles directory.
func openProfiles(cfg *monitor.Config) (*profile.Registry, *profile.Store, *profile.Watcher, error) {
	registry := profile.NewRegistry()

	store, err := profile.NewStore(cfg.ProfilesDir)
	if err != nil {
		return nil, nil, nil, err
	}
	profiles, err := store.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, p := range profiles {
		registry.Upsert(p)
	}

	if name := readActiveProfile(cfg.DataDir); name != "" {
		if err := registry.SetActive(name); err != nil {
			util.LogWarnf("Last active profile %q no longer exists, using %q", name, registry.ActiveName())
		}
	}

	watcher, err := profile.NewWatcher(registry, store)
	if err != nil {
		return nil, nil, nil, err
	}
	return registry, store, watcher, nil
}

// Helper functions

func activeProfilePath(dataDir string) string {
	return filepath.Join(dataDir, "active_profile")
}

func readActiveProfile(dataDir string) string {
	data, err := os.ReadFile(activeProfilePath(dataDir))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func writeActiveProfile(dataDir, name string) error {
	if err := util.EnsureDir(dataDir); err != nil {
		return err
	}
	return os.WriteFile(activeProfilePath(dataDir), []byte(name+"\n"), 0644)
}

// Package cli wires the edcore commands: the long-running watcher
// daemon, a one-shot replay, and configuration helpers.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	journalDir string
	verbose    bool
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edcore",
		Short: "edcore - Elite Dangerous journal core",
		Long: `edcore tails the Elite Dangerous journal directory, folds the event
stream into a live game-state document and broadcasts every change.

Examples:
  edcore run
  edcore run --journal-dir "/srv/ed/journals"
  edcore replay --slice ship
  edcore config show
  edcore config set-journal-dir "/srv/ed/journals"`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml, /etc/edcore)")
	rootCmd.PersistentFlags().StringVar(&journalDir, "journal-dir", "",
		"Journal directory (overrides config and ED_JOURNAL_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewReplayCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the edcore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("edcore %s\n", Version)
		},
	}
}

// loadEffectiveConfig resolves the configuration with CLI flag and user
// preference overrides applied, in priority order: --journal-dir flag,
// environment/config file, user preference, platform default.
func loadEffectiveConfig() (*cfgWithSource, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	source := "config"

	if cfg.Watcher.JournalDir == "" || !dirExists(cfg.Watcher.JournalDir) {
		if userCfg := loadUserConfig(); userCfg != nil && userCfg.DefaultJournalDir != "" {
			cfg.Watcher.JournalDir = userCfg.DefaultJournalDir
			source = "user preference"
		}
	}
	if journalDir != "" {
		cfg.Watcher.JournalDir = journalDir
		source = "flag"
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	}

	return &cfgWithSource{Config: cfg, JournalDirSource: source}, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

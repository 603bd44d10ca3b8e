package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmdrlink/edcore/internal/infrastructure/config"
)

// cfgWithSource pairs the resolved configuration with where the journal
// directory came from, for diagnostics.
type cfgWithSource struct {
	*config.Config
	JournalDirSource string
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadUserConfig reads ~/.edcore/config.json, returning nil when it
// cannot be read. Preferences are advisory only.
func loadUserConfig() *config.UserConfig {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return nil
	}
	userCfg, err := handler.Load()
	if err != nil {
		return nil
	}
	return userCfg
}

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage edcore configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (EDCORE_* prefix, plus ED_JOURNAL_DIR)
2. Config file (config.yaml)
3. Default values

User preferences (journal directory, commander name) are stored in
~/.edcore/config.json

Examples:
  edcore config show
  edcore config set-journal-dir "/srv/ed/journals"
  edcore config set-commander "Jameson"
  edcore config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetJournalDirCommand())
	cmd.AddCommand(newConfigSetCommanderCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				fmt.Printf("Warning: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = &cfgWithSource{Config: config.LoadConfigOrDefault(configPath), JournalDirSource: "default"}
			}

			handler, handlerErr := config.NewUserConfigHandler()
			userCfg := loadUserConfig()

			fmt.Println("edcore Configuration")
			fmt.Println("====================")

			fmt.Println("User Preferences:")
			if handlerErr == nil {
				fmt.Printf("  Config file:      %s\n", handler.GetConfigPath())
			}
			if userCfg != nil && userCfg.DefaultJournalDir != "" {
				fmt.Printf("  Journal Dir:      %s\n", userCfg.DefaultJournalDir)
			} else {
				fmt.Printf("  Journal Dir:      (not set)\n")
			}
			if userCfg != nil && userCfg.DefaultCommander != "" {
				fmt.Printf("  Commander:        %s\n", userCfg.DefaultCommander)
			} else {
				fmt.Printf("  Commander:        (not set)\n")
			}

			fmt.Println("\nWatcher:")
			fmt.Printf("  Journal Dir:      %s (%s)\n", cfg.Watcher.JournalDir, cfg.JournalDirSource)
			fmt.Printf("  New File Delay:   %s\n", cfg.Watcher.NewFileDelay)
			fmt.Printf("  Stability Delay:  %s\n", cfg.Watcher.StabilityDelay)
			fmt.Printf("  Status Debounce:  %s\n", cfg.Watcher.StatusStability)

			fmt.Println("\nBroadcast:")
			fmt.Printf("  Buffer Size:      %d\n", cfg.Broadcast.BufferSize)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Printf("  Endpoint:         http://%s:%d%s\n",
					cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			fmt.Println("\nDaemon:")
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Session Tick:     %s\n", cfg.Daemon.SessionTick)
			fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

// newConfigSetJournalDirCommand creates the config set-journal-dir subcommand
func newConfigSetJournalDirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-journal-dir <dir>",
		Short: "Set the default journal directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if !dirExists(dir) {
				return fmt.Errorf("directory does not exist: %s", dir)
			}

			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultJournalDir(dir); err != nil {
				return fmt.Errorf("failed to set journal directory: %w", err)
			}

			fmt.Println("✓ Default journal directory set")
			fmt.Printf("  %s\n", dir)
			return nil
		},
	}
}

// newConfigSetCommanderCommand creates the config set-commander subcommand
func newConfigSetCommanderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-commander <name>",
		Short: "Set the expected commander name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultCommander(args[0]); err != nil {
				return fmt.Errorf("failed to set commander: %w", err)
			}

			fmt.Printf("✓ Expected commander set to %s\n", args[0])
			return nil
		},
	}
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.ClearDefaults(); err != nil {
				return fmt.Errorf("failed to clear preferences: %w", err)
			}

			fmt.Println("✓ Preferences cleared")
			return nil
		},
	}
}

// prettyPrint formats JSON for display
func prettyPrint(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}

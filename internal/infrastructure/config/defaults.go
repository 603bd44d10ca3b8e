package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Watcher defaults
	if cfg.Watcher.JournalDir == "" {
		cfg.Watcher.JournalDir = defaultJournalDir()
	}
	if cfg.Watcher.NewFileDelay == 0 {
		cfg.Watcher.NewFileDelay = 200 * time.Millisecond
	}
	if cfg.Watcher.StabilityDelay == 0 {
		cfg.Watcher.StabilityDelay = 100 * time.Millisecond
	}
	if cfg.Watcher.SidecarStability == 0 {
		cfg.Watcher.SidecarStability = 100 * time.Millisecond
	}
	if cfg.Watcher.StatusStability == 0 {
		cfg.Watcher.StatusStability = 50 * time.Millisecond
	}

	// Broadcast defaults
	if cfg.Broadcast.BufferSize == 0 {
		cfg.Broadcast.BufferSize = 256
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9180
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/edcore.pid"
	}
	if cfg.Daemon.SessionTick == 0 {
		cfg.Daemon.SessionTick = 1 * time.Second
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// defaultJournalDir returns the platform save-game location the game
// writes to. The directory may not exist; Start reports that.
func defaultJournalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "Saved Games", "Frontier Developments", "Elite Dangerous")
	default:
		// Proton prefix under the default Steam library
		return filepath.Join(home,
			".local", "share", "Steam", "steamapps", "compatdata", "359320",
			"pfx", "drive_c", "users", "steamuser", "Saved Games",
			"Frontier Developments", "Elite Dangerous")
	}
}

package config

import "time"

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Interval between session play-time ticks
	SessionTick time.Duration `mapstructure:"session_tick" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

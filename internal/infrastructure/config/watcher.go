package config

import "time"

// WatcherConfig holds journal directory watching configuration
type WatcherConfig struct {
	// Directory the game writes journals and sidecar files into.
	// When empty, the platform default save-game location is probed.
	JournalDir string `mapstructure:"journal_dir"`

	// Delay before first read of a newly created journal, giving the
	// game time to flush the header burst
	NewFileDelay time.Duration `mapstructure:"new_file_delay"`

	// Write-stability debounce before tailing appended journal bytes
	StabilityDelay time.Duration `mapstructure:"stability_delay"`

	// Write-stability debounce for ordinary sidecar files
	SidecarStability time.Duration `mapstructure:"sidecar_stability"`

	// Tighter debounce for the frequently rewritten Status.json
	StatusStability time.Duration `mapstructure:"status_stability"`
}

// BroadcastConfig holds broadcast fabric configuration
type BroadcastConfig struct {
	// Per-subscriber envelope buffer size; oldest envelopes are dropped
	// when a subscriber falls this far behind
	BufferSize int `mapstructure:"buffer_size" validate:"min=1"`
}

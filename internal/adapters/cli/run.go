package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmdrlink/edcore/internal/application/core"
	"github.com/cmdrlink/edcore/internal/infrastructure/logging"
	"github.com/cmdrlink/edcore/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command: the long-running daemon that
// watches the journal directory until interrupted.
func NewRunCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the journal directory and broadcast state changes",
		Long: `Run the edcore daemon: replay the newest journal, then follow the
journal and sidecar files live, folding every event into the game-state
document and broadcasting each change.

Examples:
  edcore run
  edcore run --journal-dir "/srv/ed/journals"
  edcore run --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}

			// Single-instance lock
			pf := pidfile.New(cfg.Daemon.PIDFile)
			if err := pf.Acquire(); err != nil {
				if !force {
					return fmt.Errorf("%w\nUse --force to take over the PID file", err)
				}
				logger.Warn().Err(err).Msg("taking over stale PID file")
				_ = pf.Release()
				if err := pf.Acquire(); err != nil {
					return err
				}
			}
			defer func() {
				if err := pf.Release(); err != nil {
					logger.Warn().Err(err).Msg("failed to release PID file")
				}
			}()

			c, err := core.New(cfg.Config, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			replayed, err := c.Start(ctx)
			if err != nil {
				return err
			}
			logger.Info().
				Int("replayed", replayed).
				Str("dir", cfg.Watcher.JournalDir).
				Msg("watching journal directory, Ctrl+C to stop")

			<-ctx.Done()
			return c.Stop()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false,
		"Take over the PID file from a dead instance")

	return cmd
}

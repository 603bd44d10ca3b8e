package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cmdrlink/edcore/internal/application/bus"
	"github.com/cmdrlink/edcore/internal/application/projector"
	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

// NewReplayCommand creates the replay command: fold the newest journal
// into a state document once and print it, without watching anything.
func NewReplayCommand() *cobra.Command {
	var slice string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the newest journal and print the resulting state",
		Long: `Replay the newest journal file end-to-end, fold every event into a
fresh game-state document, and print the result as JSON. Nothing is
watched and nothing is broadcast; this is a one-shot inspection tool.

Examples:
  edcore replay
  edcore replay --slice ship
  edcore replay --journal-dir "/srv/ed/journals" --slice session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig()
			if err != nil {
				return err
			}
			dir := cfg.Watcher.JournalDir

			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("failed to read journal directory %s: %w", dir, err)
			}
			var names []string
			for _, entry := range entries {
				if !entry.IsDir() && journal.IsJournalName(entry.Name()) {
					names = append(names, entry.Name())
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("no journal files in %s", dir)
			}

			newest := journal.SortByDate(names)[0]
			content, err := os.ReadFile(filepath.Join(dir, newest))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", newest, err)
			}

			logger := zerolog.Nop()
			b := bus.New(logger)
			p := projector.New(b, nopBroadcaster{}, logger, nil)
			events := journal.ParseFile(content)
			for _, ev := range events {
				p.HandleEvent(ev)
			}

			fmt.Fprintf(os.Stderr, "replayed %d events from %s\n", len(events), newest)

			if slice != "" {
				snapshot := p.SliceSnapshot(state.SliceName(slice))
				if snapshot == nil {
					return fmt.Errorf("unknown or empty slice %q", slice)
				}
				fmt.Println(prettyPrint(snapshot))
				return nil
			}
			fmt.Println(prettyPrint(p.Snapshot()))
			return nil
		},
	}

	cmd.Flags().StringVar(&slice, "slice", "",
		"Print one slice only (commander, ship, location, materials, missions, session, carrier, odyssey)")

	return cmd
}

// nopBroadcaster discards envelopes; replay never broadcasts.
type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastAt(string, any, string) {}

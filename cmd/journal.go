package cmd

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/journal"
	"github.com/spf13/cobra"
)

var flagJournalPath string

var journalCmd = &cobra.Command{
	Use:   "journal [room]",
	Short: "Show recorded actions",
	Long: `Without a room, lists every room in the journal. With a room, prints its
actions in order with the events each one produced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().StringVar(&flagJournalPath, "path", "", "Journal file (default: JOURNAL_PATH)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	path := flagJournalPath
	if path == "" {
		path = config.Load().JournalPath
	}
	if path == "" {
		return fmt.Errorf("no journal: pass --path or set JOURNAL_PATH")
	}
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		rooms, err := j.Rooms(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range rooms {
			fmt.Fprintln(out, r)
		}
		return nil
	}

	entries, err := j.Entries(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%4d %-12s %-18s space=%-2d\n", e.Seq, e.Actor, e.Action.Type, e.Action.Space)
		for _, ev := range e.Events {
			fmt.Fprintf(out, "       %-18s %-10s %s %d\n", ev.Kind, ev.Player, ev.Info, ev.Amount)
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/journal"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	"github.com/DedS3t/monopoly-engine/platform/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagPlayers    int
	flagSeed       int64
	flagPreset     string
	flagMaxActions int
	flagJournal    string
	flagGames      int
	flagRulesPath  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play bot games against the rules engine",
	Long: `Plays whole games between bots that buy, build, mortgage and go bankrupt
like a cautious player would. The same seed always replays the same game.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagPlayers, "players", 4, "Number of bots (2-8)")
	simulateCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	simulateCmd.Flags().StringVar(&flagPreset, "preset", config.DefaultPreset, "Rule preset to play with")
	simulateCmd.Flags().IntVar(&flagMaxActions, "max-actions", 5000, "Stop a game after this many actions")
	simulateCmd.Flags().StringVar(&flagJournal, "journal", "", "SQLite file to record every action in")
	simulateCmd.Flags().IntVar(&flagGames, "games", 1, "Number of games; game i uses seed+i")
	simulateCmd.Flags().StringVar(&flagRulesPath, "rules", "", "Preset file (default: ./configs/rules.yaml or built in)")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	log := logging.New("simulate")
	presets, err := config.LoadPresets(flagRulesPath)
	if err != nil {
		return err
	}
	r, err := presets.Get(flagPreset)
	if err != nil {
		return err
	}
	b, err := board.LoadProperties()
	if err != nil {
		return err
	}
	engine := rules.New(b)

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Players:    flagPlayers,
		Rules:      r,
		MaxActions: flagMaxActions,
		Log:        log,
	}
	if flagJournal != "" {
		j, err := journal.Open(flagJournal)
		if err != nil {
			return err
		}
		defer j.Close()
		opts.Journal = j
	}

	out := cmd.OutOrStdout()
	finished := 0
	for i := 0; i < flagGames; i++ {
		opts.Seed = seed + int64(i)
		opts.Room = fmt.Sprintf("sim-%d", opts.Seed)
		res, err := sim.Run(cmd.Context(), engine, opts)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"room": res.Room, "actions": res.Actions}).Debug("game done")
		if res.Finished {
			finished++
			fmt.Fprintf(out, "%s: %s won after %d turns (%d actions)\n", res.Room, res.Winner, res.Turns, res.Actions)
		} else {
			fmt.Fprintf(out, "%s: no winner after %d turns (%d actions)\n", res.Room, res.Turns, res.Actions)
		}
	}
	if flagGames > 1 {
		fmt.Fprintf(out, "%d of %d games finished\n", finished, flagGames)
	}
	return nil
}

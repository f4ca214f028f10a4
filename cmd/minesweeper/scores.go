package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/scores"
)

var scoresPlayer string

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best times",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		storage, closeStorage, err := openStorage(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStorage()

		ledger := scores.NewLedger(storage, scores.PlayerKey(scoresPlayer), log)
		best, err := ledger.Load(ctx)
		if err != nil {
			return err
		}
		log.WithFields(best.Fields()).Debug("loaded scores")

		out := cmd.OutOrStdout()
		for _, level := range []mines.Level{mines.Easy, mines.Medium, mines.Hard} {
			if s := best.Get(level); s != nil {
				fmt.Fprintf(out, "%-8s %ds\n", level, *s)
			} else {
				fmt.Fprintf(out, "%-8s -\n", level)
			}
		}
		return nil
	},
}

func init() {
	scoresCmd.Flags().StringVarP(&scoresPlayer, "player", "p", "", "player name")
}

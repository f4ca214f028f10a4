package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/protocol"
	"github.com/vancomm/minesweeper-engine/internal/scores"
)

var (
	playLevel  string
	playPlayer string
	playSeed   uint64
)

const playHelp = `commands:
  o <row> <col>   open a cell
  f <row> <col>   toggle a flag
  c <row> <col>   chord an opened number
  k <row> <col>   click: open or chord
  n <level>       new board (easy, medium, hard)
  g               redraw
  q               quit
`

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		level, err := mines.ParseLevel(playLevel)
		if err != nil {
			return err
		}

		storage, closeStorage, err := openStorage(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStorage()

		ledger := scores.NewLedger(storage, scores.PlayerKey(playPlayer), log)
		if _, err := ledger.Load(ctx); err != nil {
			return err
		}

		opts := []mines.Option{
			mines.WithLevels(cfg.Levels),
			mines.WithFlagBeforeFirstOpen(cfg.Game.FlagBeforeFirstOpen),
			mines.WithClampFlags(cfg.Game.ClampFlags),
			mines.WithScoreRecorder(ledger.Recorder(ctx)),
		}
		if playSeed != 0 {
			opts = append(opts, mines.WithRand(rand.New(rand.NewPCG(playSeed, playSeed))))
		}
		e, err := mines.New(level, opts...)
		if err != nil {
			return err
		}

		return play(cmd.InOrStdin(), cmd.OutOrStdout(), e, ledger)
	},
}

func render(out io.Writer, e *mines.Engine) {
	grid := e.Grid()
	fmt.Fprintf(out, "%s %s  flags: %d  left: %d  time: %ds  %s\n",
		e.Level(), e.Params(),
		e.FlagsAvailable().Get(),
		e.RemainingEmptyCells().Get(),
		e.Elapsed().Get(),
		e.Status().Get(),
	)

	var header strings.Builder
	header.WriteString("    ")
	for col := range grid.Horizontal {
		fmt.Fprintf(&header, "%d", col%10)
	}
	fmt.Fprintln(out, header.String())
	for row, line := range strings.Split(grid.String(), "\n") {
		fmt.Fprintf(out, "%3d %s\n", row, line)
	}
}

func play(in io.Reader, out io.Writer, e *mines.Engine, ledger *scores.Ledger) error {
	defer e.Status().Subscribe(func(status mines.Status) {
		switch status {
		case mines.Won:
			fmt.Fprintf(out, "cleared in %d seconds\n", e.Elapsed().Get())
		case mines.Lost:
			fmt.Fprintln(out, "boom")
		}
	})()
	defer ledger.Subscribe(func(best scores.BestScores) {
		if s := best.Get(e.Level()); s != nil && e.Status().Get() == mines.Won {
			fmt.Fprintf(out, "best %s time: %ds\n", e.Level(), *s)
		}
	})()

	fmt.Fprint(out, playHelp)
	render(out, e)

	scanner := bufio.NewScanner(in)
	for fmt.Fprint(out, "> "); scanner.Scan(); fmt.Fprint(out, "> ") {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "h", "help":
			fmt.Fprint(out, playHelp)
			continue
		}

		cmd, err := protocol.Parse(line)
		if err == nil {
			err = protocol.Execute(e, cmd)
		}
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		e.Tick()
		render(out, e)
	}
	return scanner.Err()
}

func init() {
	playCmd.Flags().StringVarP(&playLevel, "level", "l", string(mines.Easy), "easy, medium or hard")
	playCmd.Flags().StringVarP(&playPlayer, "player", "p", "", "player name the best scores are kept for")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "seed for mine placement, random when 0")
}

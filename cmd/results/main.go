package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/results"
	"github.com/stratbench-lab/stratbench/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "results",
		Usage:   "Browse saved backtest runs and their trade logs",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "store",
				Aliases:  []string{"s"},
				Usage:    "Path to the results database",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := results.NewStore(cmd.String("store"), logger.NewNopLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Initialize(); err != nil {
				return err
			}

			p := tea.NewProgram(NewModel(store), tea.WithAltScreen())
			_, err = p.Run()

			return err
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

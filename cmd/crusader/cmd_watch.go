package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"crusadermem/game_phase"
	"crusadermem/stat_block"
	"crusadermem/watch"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// watchCmd samples the game until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sample the phase and stat blocks until interrupted",
	Long: `Sample the game phase every poll_interval and, during a match or on the
statistics screen, read every configured stat block. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, s, cmd.OutOrStdout())
	},
}

func runWatch(ctx context.Context, s *session, w io.Writer) error {
	machine := game_phase.NewMachine(s.reader, s.cfg.PhaseAddresses())
	watcher := watch.New(s.cfg, machine, s.reader)

	ticks := make(chan watch.Tick)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, ticks)
	})
	g.Go(func() error {
		for {
			select {
			case tick := <-ticks:
				printTick(w, tick)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printTick(w io.Writer, tick watch.Tick) {
	stamp := tick.Time.Format("15:04:05")
	if tick.Err != nil {
		fmt.Fprintf(w, "%s %s error: %v\n", stamp, tick.Phase, tick.Err)
		return
	}

	fmt.Fprintf(w, "%s %s\n", stamp, tick.Phase)

	names := make([]string, 0, len(tick.Blocks))
	for name := range tick.Blocks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for i, entity := range groupFields(tick.Blocks[name]) {
			fmt.Fprintf(w, "  %s[%d] %s\n", name, i, entity)
		}
	}
}

// groupFields renders each entity's stats as name=value pairs in request order
func groupFields(fields []stat_block.Field) []string {
	var entities [][]string
	for _, f := range fields {
		for len(entities) <= f.Index {
			entities = append(entities, nil)
		}
		entities[f.Index] = append(entities[f.Index], f.Name+"="+f.Value.String())
	}

	lines := make([]string, len(entities))
	for i, pairs := range entities {
		lines[i] = strings.Join(pairs, " ")
	}
	return lines
}

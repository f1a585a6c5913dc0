package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/spf13/cobra"
)

var (
	renderRows      int
	renderCols      int
	renderSeed      int64
	renderStrategy  string
	renderAnchor    string
	renderMutations int
)

func init() {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Print a generated maze after some mutations",
		Long: `Generate a maze, apply a number of edge swaps, check that it is still a
perfect maze after each one and print it with the route from the top-left to
the bottom-right cell.

Examples:
  vinom-drift render --rows 10 --cols 20
  vinom-drift render -m 500 --strategy cycle --seed 7`,
		RunE: runRender,
	}

	renderCmd.Flags().IntVarP(&renderRows, "rows", "r", 10, "Number of rows")
	renderCmd.Flags().IntVarP(&renderCols, "cols", "c", 10, "Number of columns")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "Random seed, 0 picks one from the clock")
	renderCmd.Flags().StringVarP(&renderStrategy, "strategy", "s", string(maze.StrategyShore), "Mutation strategy: shore or cycle")
	renderCmd.Flags().StringVar(&renderAnchor, "anchor", string(maze.AnchorOrigin), "Shore flood fill anchor: origin or random")
	renderCmd.Flags().IntVarP(&renderMutations, "mutations", "m", 0, "Number of mutations to apply")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	mutator, err := maze.NewMutator(maze.Strategy(renderStrategy), maze.WithAnchor(maze.AnchorMode(renderAnchor)))
	if err != nil {
		return err
	}

	seed := renderSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	m, err := maze.NewGenerated(renderRows, renderCols, rng)
	if err != nil {
		return err
	}

	applied := 0
	for k := 0; k < renderMutations; k++ {
		_, err := mutator.Mutate(m, rng)
		if errors.Is(err, maze.ErrNoSwapAvailable) {
			break
		}
		if err != nil {
			return fmt.Errorf("mutation %d: %w", k+1, err)
		}
		if err := m.CheckTree(); err != nil {
			return fmt.Errorf("after mutation %d: %w", k+1, err)
		}
		applied++
	}

	destination := maze.CellPosition{Row: m.Rows() - 1, Col: m.Cols() - 1}
	path, err := m.FindPath(maze.Origin, destination)
	if err != nil {
		return err
	}

	agent := maze.Origin
	out := cmd.OutOrStdout()
	fmt.Fprint(out, m.Render(path, &agent))
	fmt.Fprintf(out, "seed %d, %s strategy, %d mutations, path length %d\n", seed, mutator.Strategy(), applied, len(path))
	return nil
}

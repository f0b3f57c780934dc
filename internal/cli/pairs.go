package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ponto-app/registro/internal/cache"
	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/summary"
	"github.com/ponto-app/registro/internal/timecalc"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the pairs and workflow state of a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := newCache(ctx)
		if err != nil {
			return err
		}
		d := day()
		if err := c.EnsureDayLoaded(ctx, d); err != nil {
			return err
		}
		pairs := c.Pairs(d)
		meta := c.Meta(d)
		fmt.Printf("%s  [%s, revision %d]\n", d, c.Status(d), meta.Revision)
		for i, p := range pairs {
			fmt.Printf("  %d. %s – %s  (%s)\n", i+1, orDash(p.In), orDash(p.Out),
				timecalc.FormatMinutes(timecalc.PairMinutes(p)))
		}
		fmt.Printf("total: %s", timecalc.FormatMinutes(timecalc.TotalMinutes(pairs)))
		if n := summary.IncompleteCount(pairs); n > 0 {
			fmt.Printf("  incomplete: %d", n)
		}
		if n := summary.InvalidCount(pairs); n > 0 {
			fmt.Printf("  invalid: %d", n)
		}
		fmt.Println()
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "--:--"
	}
	return s
}

var addCmd = &cobra.Command{
	Use:   "add <in> <out>",
	Short: "Add an in/out pair to a day and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := newCache(ctx)
		if err != nil {
			return err
		}
		d := day()
		if err := c.EnsureDayLoaded(ctx, d); err != nil {
			return err
		}
		c.AddPair(d, models.Pair{In: args[0], Out: args[1]})
		return c.Persist(ctx, d)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove the pair at the 1-based index and persist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad index %q", args[0])
		}
		return mutateDay(cmd, func(c *cache.Cache, d string) {
			c.RemovePairAt(d, index-1)
		})
	},
}

var dupCmd = &cobra.Command{
	Use:   "dup <index>",
	Short: "Duplicate the pair at the 1-based index and persist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad index %q", args[0])
		}
		return mutateDay(cmd, func(c *cache.Cache, d string) {
			c.DuplicatePairAt(d, index-1)
		})
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort the pairs of a day by their in time and persist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mutateDay(cmd, func(c *cache.Cache, d string) {
			c.SortPairsAsc(d)
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the pairs of a day and persist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mutateDay(cmd, func(c *cache.Cache, d string) {
			c.ClearDay(d)
		})
	},
}

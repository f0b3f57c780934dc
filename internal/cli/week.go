package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ponto-app/registro/internal/summary"
	"github.com/ponto-app/registro/internal/timecalc"
)

var historyWeeks int

func init() {
	historyCmd.Flags().IntVar(&historyWeeks, "weeks", 4, "number of weeks to show")
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week containing the working day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := newCache(ctx)
		if err != nil {
			return err
		}
		d := day()
		start, err := summary.WeekStart(d)
		if err != nil {
			return err
		}
		end, err := summary.AddDays(start, 6)
		if err != nil {
			return err
		}
		if _, err := c.PreloadRange(ctx, start, end); err != nil {
			return err
		}
		// Preload only seeds days that exist remotely; make sure the
		// focused day is always present.
		if err := c.EnsureDayLoaded(ctx, d); err != nil {
			return err
		}
		w, err := summary.WeekOf(c.Entries(), d)
		if err != nil {
			return err
		}
		printWeek(w)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show weekly totals going back from the working day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := newCache(ctx)
		if err != nil {
			return err
		}
		d := day()
		base, err := summary.WeekStart(d)
		if err != nil {
			return err
		}
		weeks := historyWeeks
		if weeks < 1 {
			weeks = 1
		}
		start, err := summary.AddDays(base, -7*(weeks-1))
		if err != nil {
			return err
		}
		end, err := summary.AddDays(base, 6)
		if err != nil {
			return err
		}
		if _, err := c.PreloadRange(ctx, start, end); err != nil {
			return err
		}
		list, err := summary.History(c.Entries(), d, weeks)
		if err != nil {
			return err
		}
		for _, w := range list {
			fmt.Printf("%s – %s  total %s  days %d  avg %s\n",
				w.Start, w.End,
				timecalc.FormatMinutes(w.Total),
				w.DaysWorked,
				timecalc.FormatMinutes(int(w.AvgPerDay)),
			)
		}
		return nil
	},
}

func printWeek(w summary.Week) {
	for _, d := range w.Days {
		fmt.Printf("%s  %s  (%d pairs)\n", d.Date, timecalc.FormatMinutes(d.Total), d.Pairs)
	}
	fmt.Printf("week %s – %s  total %s  days worked %d\n",
		w.Start, w.End, timecalc.FormatMinutes(w.Total), w.DaysWorked)
}

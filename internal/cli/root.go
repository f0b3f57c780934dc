// Package cli implements the registro client: a cobra command tree over the
// record cache, working against either the remote API or a local store.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/cache"
	"github.com/ponto-app/registro/internal/store"
	"github.com/ponto-app/registro/internal/store/substrate"
	"github.com/ponto-app/registro/internal/transport"
)

var (
	flagAPI   string
	flagStore string
	flagUser  int
	flagDate  string
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "registro",
	Short: "registro manages per-day time records",
	Long: `registro manages per-day time records against a remote API (--api)
or a local store file. Records carry in/out pairs, a computed total and an
approval workflow with an audit history.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "remote API base URL (local store when empty)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "registro.json", "local store path (.db selects SQLite)")
	rootCmd.PersistentFlags().IntVar(&flagUser, "user", 1, "user id")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "day YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(dupCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(retractCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(purgeCmd)
}

// day returns the working day: --date or today.
func day() string {
	if flagDate != "" {
		return flagDate
	}
	return time.Now().Format("2006-01-02")
}

func newLogger() *zap.Logger {
	if !flagDebug {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newCache builds the record cache over the transport the flags select.
func newCache(ctx context.Context) (*cache.Cache, error) {
	log := newLogger()

	if flagAPI != "" {
		remote := transport.NewRemote(flagAPI, &http.Client{Timeout: 15 * time.Second}, log)
		return cache.New(remote, flagUser, log), nil
	}

	var sub substrate.Substrate
	if strings.HasSuffix(flagStore, ".db") {
		sq, err := substrate.OpenSQLite(flagStore, "appdb")
		if err != nil {
			return nil, err
		}
		sub = sq
	} else {
		sub = substrate.NewFile(flagStore)
	}
	st, err := store.New(ctx, sub, nil, log)
	if err != nil {
		return nil, err
	}
	return cache.New(transport.NewLocal(st, log), flagUser, log), nil
}

// mutateDay loads the working day, applies a cache-only mutation and flushes
// it through the write queue.
func mutateDay(cmd *cobra.Command, fn func(c *cache.Cache, d string)) error {
	ctx := cmd.Context()
	c, err := newCache(ctx)
	if err != nil {
		return err
	}
	d := day()
	if err := c.EnsureDayLoaded(ctx, d); err != nil {
		return err
	}
	fn(c, d)
	return c.Persist(ctx, d)
}

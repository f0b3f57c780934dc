package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ponto-app/registro/internal/cache"
)

var (
	flagReviewer int
	flagNote     string
	flagReason   string
)

func init() {
	for _, cmd := range []*cobra.Command{approveCmd, rejectCmd, reopenCmd, closeCmd} {
		cmd.Flags().IntVar(&flagReviewer, "reviewer", 0, "reviewer user id")
	}
	approveCmd.Flags().StringVar(&flagNote, "note", "", "review note")
	rejectCmd.Flags().StringVar(&flagNote, "note", "", "review note")
	reopenCmd.Flags().StringVar(&flagReason, "reason", "", "reopen reason")
}

func workflowRun(action func(ctx context.Context, c *cache.Cache, d string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := newCache(ctx)
		if err != nil {
			return err
		}
		d := day()
		if err := action(ctx, c, d); err != nil {
			return err
		}
		fmt.Printf("%s → %s\n", d, c.Status(d))
		return nil
	}
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Mark the working day as draft",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.MarkDraft(ctx, d)
	}),
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Mark the working day as ready for submission",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.MarkReady(ctx, d)
	}),
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the working day for review",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.SubmitDay(ctx, d, c.UserID())
	}),
}

var retractCmd = &cobra.Command{
	Use:   "retract",
	Short: "Take a submitted day back",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.RetractDay(ctx, d, c.UserID())
	}),
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a submitted day",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.ApproveDay(ctx, d, flagReviewer, flagNote)
	}),
}

var rejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a submitted day",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.RejectDay(ctx, d, flagReviewer, flagNote)
	}),
}

var reopenCmd = &cobra.Command{
	Use:   "reopen",
	Short: "Reopen an approved, rejected or closed day",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.ReopenDay(ctx, d, flagReviewer, flagReason)
	}),
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close an approved day",
	Args:  cobra.NoArgs,
	RunE: workflowRun(func(ctx context.Context, c *cache.Cache, d string) error {
		return c.CloseDay(ctx, d, flagReviewer)
	}),
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every record of the user on the backend and clear the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newCache(cmd.Context())
		if err != nil {
			return err
		}
		return c.ClearAllFromServer(cmd.Context())
	},
}

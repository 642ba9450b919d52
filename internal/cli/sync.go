package cli

import (
	"resumeforge/internal/errors"
	"resumeforge/internal/store"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Save the local resume to the backend",
	Long: `Save the local resume to the backend. Sync is best effort: when the
backend cannot be reached a warning is printed and the local copy stays as
it is.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
			ctx := cmd.Context()
			syncer, flush := newSyncer(ctx, getConfigFromContext(ctx), st, logger)
			defer flush()
			printOutcome(cmd.OutOrStdout(), syncer.Push(ctx))
			return nil
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local resume with the latest one on the backend",
	Long: `Fetch the latest resume from the backend and store it locally. When the
backend cannot be reached, or holds nothing yet, the local resume is kept
and a warning is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
			ctx := cmd.Context()
			syncer, flush := newSyncer(ctx, getConfigFromContext(ctx), st, logger)
			defer flush()
			outcome, err := syncer.Pull(ctx)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), outcome)
			return nil
		})
	},
}

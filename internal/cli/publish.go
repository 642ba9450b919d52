package cli

import (
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/store"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish [resume|portfolio]",
	Short: "Publish the resume or portfolio, or show what is published",
	Long: `Mark the resume or the portfolio as published. Publishing checks that a
name, a valid email and at least one skill are present; publishing the
portfolio also stores a snapshot of the current resume. Use --off to
unpublish. Without an argument the current flags are printed.`,
	ValidArgs: []string{string(store.PublishResume), string(store.PublishPortfolio)},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runPublish,
}

var unpublish bool

func init() {
	publishCmd.Flags().BoolVar(&unpublish, "off", false, "Unpublish instead of publishing")
}

func runPublish(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			for _, kind := range []store.PublishKind{store.PublishResume, store.PublishPortfolio} {
				on, err := st.Published(ctx, kind)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s: %s\n", kind, publishState(on))
			}
			return nil
		}

		kind, err := store.ParsePublishKind(args[0])
		if err != nil {
			return err
		}
		if unpublish {
			err = st.SetPublished(ctx, kind, false)
		} else {
			err = st.Publish(ctx, kind)
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s: %s\n", kind, publishState(!unpublish))
		return nil
	})
}

func publishState(on bool) string {
	if on {
		return "published"
	}
	return "not published"
}

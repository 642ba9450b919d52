package cli

import (
	"fmt"
	"io"
	"strconv"

	"resumeforge/internal/common"
	"resumeforge/internal/editor"
	"resumeforge/internal/errors"
	"resumeforge/internal/remote"
	"resumeforge/internal/resume"
	"resumeforge/internal/store"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty resume in the local store",
	Long: `Create an empty resume with one blank record in every section. An existing
resume is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the stored resume, one field, or a section form",
	Long: `Print the stored resume in the selected format. With a path such as
"basics.name" or "work[0].highlights" only that field is printed, in the same
form the editor accepts. With --form every record of a section is listed as
field rows.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if showConfig.OutputFormat == "" {
			showConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(showConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runShow,
}

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set one field of the resume",
	Long: `Set one field of the resume. Highlights and courses take one entry per
line, keywords take a comma separated list:

  resumeforge set basics.name "Jane Doe"
  resumeforge set work[0].highlights $'Built X\nShipped Y'
  resumeforge set skills[0].keywords "Go, SQL"`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var addCmd = &cobra.Command{
	Use:   "add <section>",
	Short: "Append a blank record to a section",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <section> <index>",
	Short: "Remove one record from a section",
	Long: `Remove one record from a section. Removing the last record leaves a blank
one in its place.`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored resume and publish flags",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored resume with a JSON or YAML document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored resume for schema and required-field problems",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var (
	showConfig  common.CommandConfig
	showForm    string
	forceInit   bool
	pushOnWrite bool
)

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Replace an existing resume")

	showCmd.Flags().StringVarP(&showConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	showCmd.Flags().StringVar(&showConfig.OutputFormat, "format", "", "Output format: json, yaml, text, or markdown")
	showCmd.Flags().StringVar(&showForm, "form", "", "List the records of a section as field rows")
	_ = showCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})

	for _, cmd := range []*cobra.Command{setCmd, addCmd, removeCmd, importCmd} {
		cmd.Flags().BoolVar(&pushOnWrite, "push", false, "Push the resume to the backend after saving")
	}
}

// withStore opens the store for the duration of fn
func withStore(cmd *cobra.Command, fn func(st *store.Store, logger *errors.Logger) error) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	st, release, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()
	return fn(st, logger)
}

// afterWrite pushes the document when --push was given. A failed push is a
// warning, the local save already succeeded.
func afterWrite(cmd *cobra.Command, st *store.Store, logger *errors.Logger) {
	if !pushOnWrite {
		return
	}
	ctx := cmd.Context()
	syncer, flush := newSyncer(ctx, getConfigFromContext(ctx), st, logger)
	defer flush()
	printOutcome(cmd.OutOrStdout(), syncer.Push(ctx))
}

func printOutcome(out io.Writer, outcome remote.Outcome) {
	if outcome.Synced {
		_, _ = fmt.Fprintf(out, "Synced with backend (id %s)\n", outcome.ID)
		return
	}
	_, _ = fmt.Fprintf(out, "Warning: %s\n", outcome.Warning)
}

func runInit(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		doc := st.Get()
		if !forceInit && hasAnyContent(&doc) {
			return errors.NewValidationError(errors.ErrCodeInvalidInput,
				"a resume already exists (use --force to replace it)", nil)
		}
		if err := st.Hydrate(cmd.Context(), resume.New()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Created an empty resume")
		return nil
	})
}

func hasAnyContent(doc *resume.Document) bool {
	if resume.HasContent(doc, resume.SectionBasics) {
		return true
	}
	for _, s := range resume.RepeatableSections() {
		if resume.HasContent(doc, s) {
			return true
		}
	}
	return false
}

func runShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		doc := st.Get()
		cfg := showConfig
		cfg.Out = cmd.OutOrStdout()

		switch {
		case len(args) == 1:
			value, err := editor.Display(&doc, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cfg.Out, value)
			return err
		case showForm != "":
			form, err := editor.Form(&doc, showForm)
			if err != nil {
				return err
			}
			return common.NewOutputHandler(logger).HandleOutput(form, cfg)
		}
		return common.NewOutputHandler(logger).HandleOutput(doc, cfg)
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		path, err := editor.New(st).Set(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
		afterWrite(cmd, st, logger)
		return nil
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		index, err := editor.New(st).Add(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s[%d]\n", args[0], index)
		afterWrite(cmd, st, logger)
		return nil
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("index must be a number, got %q", args[1]), err)
	}
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		if err := editor.New(st).Remove(cmd.Context(), args[0], index); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s[%d]\n", args[0], index)
		afterWrite(cmd, st, logger)
		return nil
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		if err := st.Clear(cmd.Context()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Stored resume cleared")
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		raw, err := common.NewFileProcessor(logger).ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := resume.DecodeFile(args[0], raw)
		if err != nil {
			return err
		}
		if err := resume.ValidateSchema(&doc); err != nil {
			return err
		}
		if err := st.Hydrate(cmd.Context(), doc); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
		afterWrite(cmd, st, logger)
		return nil
	})
}

func runValidate(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		doc := st.Get()
		out := cmd.OutOrStdout()

		if err := resume.ValidateSchema(&doc); err != nil {
			return err
		}
		problems := resume.CheckRequired(&doc)
		for _, p := range problems {
			_, _ = fmt.Fprintf(out, "%s: %s\n", p.Field, p.Message)
		}
		if len(problems) > 0 {
			return resume.RequireFields(&doc)
		}
		_, _ = fmt.Fprintln(out, "Resume is valid")
		return nil
	})
}

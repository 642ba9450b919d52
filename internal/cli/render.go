package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/render"
	"resumeforge/internal/store"
	"resumeforge/internal/watch"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the stored resume to stdout",
	Long: `Render the stored resume without writing an export. Rendering never
fails on missing fields, an empty resume still produces a minimal document.

Formats:
- tex: LaTeX source
- html: printable page with a print button
- ops: the page drawing instructions as JSON

With --preview the printable page is written to a temporary directory that
is removed when the command is interrupted.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored resume as a tex, pdf or html file",
	Long: `Export the stored resume into the output directory. The file is named
after the person, for example "Jane_Doe_Resume.pdf" or "Jane_Doe.tex". Name,
email and at least one skill are required unless --force is given.

Formats: tex, pdf, html, chrome-pdf (printed by headless Chrome).`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export the resume whenever the store file changes",
	Long: `Export the resume once and again every time the store file changes,
until interrupted. Only the file store backend can be watched.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	renderConfig  common.CommandConfig
	renderPreview bool

	exportFormat   string
	exportDir      string
	exportForce    bool
	watchDebounce  time.Duration
)

func init() {
	renderCmd.Flags().StringVar(&renderConfig.OutputFormat, "format", "tex", "Render format: tex, html, or ops")
	renderCmd.Flags().StringVarP(&renderConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "Write the printable page to a temporary file")

	for _, cmd := range []*cobra.Command{exportCmd, watchCmd} {
		cmd.Flags().StringVar(&exportFormat, "format", string(export.FormatPDF), "Export format: tex, pdf, html, or chrome-pdf")
		cmd.Flags().StringVar(&exportDir, "output-dir", "", "Output directory (default from config)")
		cmd.Flags().BoolVar(&exportForce, "force", false, "Export even when required fields are missing")
	}
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Delay after the last change before exporting")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderPreview {
		return runPreview(cmd)
	}
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		cfg := getConfigFromContext(cmd.Context())
		doc := st.Get()

		var out []byte
		switch renderConfig.OutputFormat {
		case "ops":
			ops, err := render.Ops(doc, export.LayoutFromConfig(cfg.Render))
			if err != nil {
				return err
			}
			if out, err = json.MarshalIndent(ops, "", "  "); err != nil {
				return errors.NewInternalError(errors.ErrCodeRenderFailed, "failed to encode drawing instructions", err)
			}
			out = append(out, '\n')
		case string(export.FormatTeX), string(export.FormatHTML):
			exporter, err := newExporter(cfg, logger, true)
			if err != nil {
				return err
			}
			if out, err = exporter.Render(cmd.Context(), doc, export.Format(renderConfig.OutputFormat)); err != nil {
				return err
			}
		default:
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("unsupported render format %q (use tex, html or ops)", renderConfig.OutputFormat), nil)
		}

		if renderConfig.OutputFile != "" {
			return common.NewFileProcessor(logger).WriteFile(renderConfig.OutputFile, out)
		}
		_, err := cmd.OutOrStdout().Write(out)
		return err
	})
}

// runPreview keeps a printable page on disk until the command is interrupted
func runPreview(cmd *cobra.Command) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		path, cleanup, err := export.PrintPreview(st.Get())
		if err != nil {
			return err
		}
		defer cleanup()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Preview written to %s\nOpen it in a browser and print; press Ctrl+C to remove it.\n", path)
		<-cmd.Context().Done()
		return nil
	})
}

func exporterFromFlags(cmd *cobra.Command, logger *errors.Logger) (*export.Exporter, export.Format, error) {
	cfg := getConfigFromContext(cmd.Context())
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return nil, "", err
	}
	if exportDir != "" {
		cfg.Export.OutputDir = exportDir
	}
	exporter, err := newExporter(cfg, logger, exportForce)
	if err != nil {
		return nil, "", err
	}
	return exporter, format, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		exporter, format, err := exporterFromFlags(cmd, logger)
		if err != nil {
			return err
		}
		artifact, err := exporter.Export(cmd.Context(), st.Get(), format)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d bytes)\n", artifact.Path, artifact.Bytes)
		return nil
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if cfg.Store.Backend != "file" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("watch needs the file store backend, not %q", cfg.Store.Backend), nil)
	}
	exporter, format, err := exporterFromFlags(cmd, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0750); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to create store directory", err)
	}

	out := cmd.OutOrStdout()
	exportOnce := func() {
		st, err := store.Open(ctx, store.NewFileKV(cfg.Store.Path), logger)
		if err != nil {
			logger.LogError(err, "Failed to reload resume")
			return
		}
		artifact, err := exporter.Export(ctx, st.Get(), format)
		if err != nil {
			// keep watching, the next edit may fix it
			logger.LogError(err, "Export failed")
			_, _ = fmt.Fprintf(out, "Export failed: %v\n", err)
			return
		}
		_, _ = fmt.Fprintf(out, "Exported %s (%d bytes)\n", artifact.Path, artifact.Bytes)
	}

	watcher, err := watch.New([]string{cfg.Store.Path}, watchDebounce, exportOnce, logger)
	if err != nil {
		return err
	}
	exportOnce()
	_, _ = fmt.Fprintf(out, "Watching %s, press Ctrl+C to stop\n", cfg.Store.Path)
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	<-ctx.Done()
	return nil
}

package export

import (
	"os"

	"resumeforge/internal/config"
	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/render"
)

// LayoutFromConfig applies the configured overrides to the default layout.
func LayoutFromConfig(cfg config.RenderConfig) render.Layout {
	l := render.Layout{
		PageWidth:      cfg.PageWidth,
		PageHeight:     cfg.PageHeight,
		Margin:         cfg.Margin,
		LineHeight:     cfg.LineHeight,
		RecordSpacing:  cfg.RecordSpacing,
		SectionSpacing: cfg.SectionSpacing,
		BodySize:       cfg.BodySize,
	}
	return l.WithDefaults()
}

// OptionsFromConfig builds exporter options, reading the preamble file when
// one is configured. The chrome printer is always attached; it only starts a
// browser when chrome-pdf is requested.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		OutputDir: cfg.Export.OutputDir,
		Layout:    LayoutFromConfig(cfg.Render),
		Printer:   NewChromePrinter(cfg.Export.ChromePath, cfg.Export.ChromeTimeout),
	}
	if path := cfg.Render.PreambleFile; path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Options{}, apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "failed to read LaTeX preamble", err).
				WithContext("path", path)
		}
		opts.Preamble = string(raw)
	}
	return opts, nil
}

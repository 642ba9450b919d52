// Package export materializes rendered resumes as files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/render"
	"resumeforge/internal/resume"
)

// Format is an export target.
type Format string

const (
	FormatTeX       Format = "tex"
	FormatPDF       Format = "pdf"
	FormatHTML      Format = "html"
	FormatChromePDF Format = "chrome-pdf"
)

// Formats lists every supported export format.
func Formats() []Format {
	return []Format{FormatTeX, FormatPDF, FormatHTML, FormatChromePDF}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", apperrors.NewValidationError(apperrors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported export format %q (use tex, pdf, html or chrome-pdf)", s), nil)
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]`)
)

// Filename builds the artifact name from the person's name: whitespace runs
// become "_", then "_Resume.pdf" or ".tex" (and "_Resume.html" for the
// printable page) is appended. An empty name falls back to "resume".
func Filename(name string, format Format) string {
	base := strings.TrimSpace(name)
	base = unsafeChars.ReplaceAllString(base, "")
	base = whitespaceRun.ReplaceAllString(strings.TrimSpace(base), "_")
	if base == "" {
		base = "resume"
	}
	switch format {
	case FormatTeX:
		return base + ".tex"
	case FormatHTML:
		return base + "_Resume.html"
	}
	return base + "_Resume.pdf"
}

// Printer turns an HTML page into a PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// Options configures an Exporter.
type Options struct {
	OutputDir string
	// Force skips the required-field checks.
	Force    bool
	Layout   render.Layout
	Preamble string
	// Printer serves FormatChromePDF; nil disables that format.
	Printer Printer
}

// Artifact describes a written export.
type Artifact struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	Bytes  int    `json:"bytes"`
}

type Exporter struct {
	opts   Options
	logger *apperrors.Logger
}

func New(opts Options, logger *apperrors.Logger) *Exporter {
	if logger == nil {
		logger = apperrors.Discard()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Exporter{opts: opts, logger: logger}
}

// Render produces the artifact bytes without touching the filesystem.
func (e *Exporter) Render(ctx context.Context, doc resume.Document, format Format) ([]byte, error) {
	switch format {
	case FormatTeX:
		return []byte(render.LaTeXWith(doc, render.LaTeXOptions{Preamble: e.opts.Preamble})), nil
	case FormatPDF:
		return render.PDF(doc, e.opts.Layout)
	case FormatHTML:
		page, err := render.HTML(doc)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case FormatChromePDF:
		if e.opts.Printer == nil {
			return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingConfig,
				"chrome-pdf export needs a browser printer", nil)
		}
		page, err := render.HTML(doc)
		if err != nil {
			return nil, err
		}
		out, err := e.opts.Printer.PrintPDF(ctx, page)
		if err != nil {
			return nil, apperrors.NewRenderError(apperrors.ErrCodeRenderFailed, "browser failed to print resume", err)
		}
		return out, nil
	}
	_, err := ParseFormat(string(format))
	return nil, err
}

// Export checks the required fields, renders doc and writes it to the output
// directory atomically. No partial file is left behind on failure.
func (e *Exporter) Export(ctx context.Context, doc resume.Document, format Format) (Artifact, error) {
	if !e.opts.Force {
		if err := resume.RequireFields(&doc); err != nil {
			return Artifact{}, err
		}
	}
	data, err := e.Render(ctx, doc, format)
	if err != nil {
		return Artifact{}, err
	}

	name := Filename(doc.Basics.Name, format)
	path, err := writeAtomic(e.opts.OutputDir, name, data)
	if err != nil {
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed, "failed to write export", err).
			WithContext("path", filepath.Join(e.opts.OutputDir, name))
	}
	e.logger.Info("resume exported", "path", path, "format", string(format), "bytes", len(data))
	return Artifact{Path: path, Format: format, Bytes: len(data)}, nil
}

func writeAtomic(dir, name string, data []byte) (path string, err error) {
	if err = os.MkdirAll(dir, 0750); err != nil {
		return "", errors.Wrapf(err, "failed creating output directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "failed creating temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", errors.Wrapf(err, "failed writing %s", tmpName)
	}
	if err = tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return "", errors.Wrapf(err, "failed setting permissions on %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "failed closing %s", tmpName)
	}

	path = filepath.Join(dir, name)
	if err = os.Rename(tmpName, path); err != nil {
		return "", errors.Wrapf(err, "failed moving export into place at %s", path)
	}
	return path, nil
}

// PrintPreview writes the printable page to a fresh temp directory for a
// browser to open. The returned cleanup removes the directory.
func PrintPreview(doc resume.Document) (path string, cleanup func(), err error) {
	page, err := render.HTML(doc)
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", "resumeforge-preview-")
	if err != nil {
		return "", nil, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed, "failed to create preview directory", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	path = filepath.Join(dir, Filename(doc.Basics.Name, FormatHTML))
	if err := os.WriteFile(path, []byte(page), 0600); err != nil {
		cleanup()
		return "", nil, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed, "failed to write preview", errors.Wrapf(err, "writing %s", path))
	}
	return path, cleanup, nil
}

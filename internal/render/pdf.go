package render

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

const pdfFont = "Helvetica"

// pdfCanvas draws on an fpdf document using the core Helvetica font. Text is
// translated to cp1252, which covers the bullet and dash glyphs the layout
// uses.
type pdfCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

func newPDFCanvas(l Layout) *pdfCanvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineWidth(0.5)
	return &pdfCanvas{pdf: pdf, translate: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (p *pdfCanvas) PageSize() (float64, float64) {
	w, h := p.pdf.GetPageSize()
	return w, h
}

func (p *pdfCanvas) AddPage()        { p.pdf.AddPage() }
func (p *pdfCanvas) PageNumber() int { return p.pdf.PageNo() }

func (p *pdfCanvas) SetFont(style FontStyle, size float64) {
	p.pdf.SetFont(pdfFont, string(style), size)
}

func (p *pdfCanvas) SetTextColor(c Color) {
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

func (p *pdfCanvas) SetDrawColor(c Color) {
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func (p *pdfCanvas) TextWidth(s string) float64 {
	return p.pdf.GetStringWidth(p.translate(s))
}

func (p *pdfCanvas) Text(x, y float64, s string) {
	p.pdf.Text(x, y, p.translate(s))
}

func (p *pdfCanvas) Line(x1, y1, x2, y2 float64) {
	p.pdf.Line(x1, y1, x2, y2)
}

// PDF draws doc with layout and returns the encoded file.
func PDF(doc resume.Document, layout Layout) ([]byte, error) {
	l := layout.WithDefaults()
	c := newPDFCanvas(l)
	title := doc.Basics.Name
	if title == "" {
		title = "Resume"
	}
	c.pdf.SetTitle(title, true)
	c.pdf.SetAuthor(doc.Basics.Name, true)
	c.pdf.SetCreator("resumeforge", false)

	if err := Draw(doc, c, l); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeRenderFailed, "failed to encode PDF", err)
	}
	return buf.Bytes(), nil
}

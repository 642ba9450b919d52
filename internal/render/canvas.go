package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

// Color is an RGB triple.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// FontStyle follows the PDF core font convention: "" regular, "B" bold,
// "I" italic.
type FontStyle string

const (
	StyleRegular FontStyle = ""
	StyleBold    FontStyle = "B"
	StyleItalic  FontStyle = "I"
)

// Canvas is the drawing surface the layout engine targets. Coordinates are
// points from the top-left corner; y is the text baseline.
type Canvas interface {
	PageSize() (width, height float64)
	AddPage()
	PageNumber() int
	SetFont(style FontStyle, size float64)
	SetTextColor(c Color)
	SetDrawColor(c Color)
	TextWidth(s string) float64
	Text(x, y float64, s string)
	Line(x1, y1, x2, y2 float64)
}

// Layout holds the page geometry and typography, all in points.
type Layout struct {
	PageWidth      float64 `mapstructure:"pageWidth"`
	PageHeight     float64 `mapstructure:"pageHeight"`
	Margin         float64 `mapstructure:"margin"`
	LineHeight     float64 `mapstructure:"lineHeight"`
	RecordSpacing  float64 `mapstructure:"recordSpacing"`
	SectionSpacing float64 `mapstructure:"sectionSpacing"`
	BulletIndent   float64 `mapstructure:"bulletIndent"`
	WrapIndent     float64 `mapstructure:"wrapIndent"`

	NameSize    float64 `mapstructure:"nameSize"`
	SectionSize float64 `mapstructure:"sectionSize"`
	HeadingSize float64 `mapstructure:"headingSize"`
	BodySize    float64 `mapstructure:"bodySize"`
	FooterSize  float64 `mapstructure:"footerSize"`

	Primary   Color `mapstructure:"-"`
	Secondary Color `mapstructure:"-"`
	Body      Color `mapstructure:"-"`
}

// A4 in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// DefaultLayout is A4 with 0.75in margins.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:      A4Width,
		PageHeight:     A4Height,
		Margin:         54,
		LineHeight:     14,
		RecordSpacing:  8,
		SectionSpacing: 12,
		BulletIndent:   5,
		WrapIndent:     10,
		NameSize:       16,
		SectionSize:    12,
		HeadingSize:    11,
		BodySize:       10,
		FooterSize:     8,
		Primary:        Color{0, 51, 102},
		Secondary:      Color{102, 102, 102},
		Body:           Color{0, 0, 0},
	}
}

// WithDefaults fills zero fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&l.PageWidth, d.PageWidth)
	fill(&l.PageHeight, d.PageHeight)
	fill(&l.Margin, d.Margin)
	fill(&l.LineHeight, d.LineHeight)
	fill(&l.RecordSpacing, d.RecordSpacing)
	fill(&l.SectionSpacing, d.SectionSpacing)
	fill(&l.BulletIndent, d.BulletIndent)
	fill(&l.WrapIndent, d.WrapIndent)
	fill(&l.NameSize, d.NameSize)
	fill(&l.SectionSize, d.SectionSize)
	fill(&l.HeadingSize, d.HeadingSize)
	fill(&l.BodySize, d.BodySize)
	fill(&l.FooterSize, d.FooterSize)
	if l.Primary == (Color{}) && l.Secondary == (Color{}) {
		l.Primary, l.Secondary, l.Body = d.Primary, d.Secondary, d.Body
	}
	return l
}

// Wrap breaks text into lines no wider than width using greedy word
// wrapping. Whitespace runs collapse to single spaces. A word wider than
// width on its own is split at rune boundaries.
func Wrap(text string, width float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := ""
	for _, w := range words {
		if measure(w) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			pieces := splitWord(w, width, measure)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
			continue
		}
		if current == "" {
			current = w
			continue
		}
		if candidate := current + " " + w; measure(candidate) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitWord(w string, width float64, measure func(string) float64) []string {
	var pieces []string
	for w != "" {
		cut := len(w)
		for cut > 0 && measure(w[:cut]) > width {
			_, size := utf8.DecodeLastRuneInString(w[:cut])
			cut -= size
		}
		if cut == 0 {
			// a single rune wider than the line still has to go somewhere
			_, cut = utf8.DecodeRuneInString(w)
		}
		pieces = append(pieces, w[:cut])
		w = w[cut:]
	}
	return pieces
}

// Draw lays out doc on c: the header on the first page, then every
// non-empty section in render order. Content that would cross the bottom
// margin moves to a new page, which repeats the running header and footer.
func Draw(doc resume.Document, c Canvas, layout Layout) error {
	l := layout.WithDefaults()
	c.AddPage()
	w, h := c.PageSize()
	if w-2*l.Margin <= l.WrapIndent || h-2*l.Margin <= 2*l.LineHeight {
		return errors.NewRenderError(errors.ErrCodeRenderFailed,
			fmt.Sprintf("page %.0fx%.0fpt leaves no room inside a %.0fpt margin", w, h, l.Margin), nil)
	}

	d := &drawer{c: c, l: l, pageW: w, pageH: h, header: BuildHeader(&doc)}
	d.footer()
	d.drawHeader()
	for _, blk := range BuildBlocks(&doc) {
		d.drawBlock(blk)
	}
	return nil
}

type drawer struct {
	c            Canvas
	l            Layout
	pageW, pageH float64
	header       Header
	y            float64

	style FontStyle
	size  float64
	color Color
}

func (d *drawer) contentWidth() float64 { return d.pageW - 2*d.l.Margin }
func (d *drawer) bottom() float64       { return d.pageH - d.l.Margin }

func (d *drawer) font(style FontStyle, size float64, color Color) {
	d.style, d.size, d.color = style, size, color
	d.c.SetFont(style, size)
	d.c.SetTextColor(color)
}

func (d *drawer) restore() {
	d.c.SetFont(d.style, d.size)
	d.c.SetTextColor(d.color)
}

// ensure starts a new page unless height more points fit above the bottom
// margin.
func (d *drawer) ensure(height float64) {
	if d.y+height > d.bottom() {
		d.newPage()
	}
}

func (d *drawer) newPage() {
	d.c.AddPage()
	d.footer()
	d.runningHeader()
	d.restore()
}

func (d *drawer) footer() {
	text := fmt.Sprintf("Page %d", d.c.PageNumber())
	if d.header.Name != "" {
		text = d.header.Name + " " + bullet + " " + text
	}
	d.c.SetFont(StyleRegular, d.l.FooterSize)
	d.c.SetTextColor(d.l.Secondary)
	d.c.Text((d.pageW-d.c.TextWidth(text))/2, d.pageH-d.l.Margin/2, text)
}

func (d *drawer) runningHeader() {
	top := d.l.Margin
	if d.header.Name != "" {
		d.c.SetFont(StyleBold, d.l.BodySize)
		d.c.SetTextColor(d.l.Primary)
		d.c.Text(d.l.Margin, top, d.header.Name)
	}
	d.c.SetDrawColor(d.l.Secondary)
	d.c.Line(d.l.Margin, top+4, d.pageW-d.l.Margin, top+4)
	d.y = top + d.l.LineHeight + d.l.SectionSpacing
}

// line writes one line of text at x and advances the cursor.
func (d *drawer) line(x float64, text string) {
	d.ensure(0)
	d.c.Text(x, d.y, text)
	d.y += d.l.LineHeight
}

func (d *drawer) centered(text string) {
	for _, ln := range Wrap(text, d.contentWidth(), d.c.TextWidth) {
		d.line((d.pageW-d.c.TextWidth(ln))/2, ln)
	}
}

func (d *drawer) paragraph(x float64, text string) {
	for _, ln := range Wrap(text, d.pageW-d.l.Margin-x, d.c.TextWidth) {
		d.line(x, ln)
	}
}

func (d *drawer) drawHeader() {
	h := d.header
	d.y = d.l.Margin
	d.font(StyleBold, d.l.NameSize, d.l.Primary)
	if h.Name != "" {
		d.centered(h.Name)
	} else {
		d.y += d.l.LineHeight
	}
	if h.Label != "" {
		d.font(StyleRegular, d.l.HeadingSize, d.l.Secondary)
		d.centered(h.Label)
	}
	d.font(StyleRegular, d.l.BodySize, d.l.Secondary)
	if len(h.Contact) > 0 {
		d.centered(strings.Join(h.Contact, " "+bullet+" "))
	}
	if len(h.Profiles) > 0 {
		d.centered(strings.Join(h.Profiles, " "+bullet+" "))
	}
	d.y += d.l.SectionSpacing

	if h.Summary != "" {
		d.sectionTitle("Summary")
		d.font(StyleRegular, d.l.BodySize, d.l.Body)
		d.paragraph(d.l.Margin, h.Summary)
		d.y += d.l.SectionSpacing
	}
}

func (d *drawer) sectionTitle(title string) {
	// keep the title on the same page as the first line under it
	d.ensure(2 * d.l.LineHeight)
	d.font(StyleBold, d.l.SectionSize, d.l.Primary)
	d.c.Text(d.l.Margin, d.y, title)
	d.c.SetDrawColor(d.l.Primary)
	d.c.Line(d.l.Margin, d.y+3, d.pageW-d.l.Margin, d.y+3)
	d.y += d.l.LineHeight + 4
}

func (d *drawer) drawBlock(blk Block) {
	d.sectionTitle(blk.Title)
	for i, it := range blk.Items {
		if i > 0 && !blk.Compact {
			d.y += d.l.RecordSpacing
		}
		d.drawItem(it)
	}
	d.y += d.l.SectionSpacing
}

func (d *drawer) drawItem(it Item) {
	m := d.l.Margin
	if it.Heading != "" || it.Dates != "" {
		d.ensure(d.l.LineHeight)
		if it.Dates != "" {
			d.font(StyleItalic, d.l.BodySize, d.l.Secondary)
			dw := d.c.TextWidth(it.Dates)
			d.c.Text(d.pageW-m-dw, d.y, it.Dates)
			if it.Heading == "" {
				d.y += d.l.LineHeight
			}
		}
		if it.Heading != "" {
			d.font(StyleBold, d.l.HeadingSize, d.l.Primary)
			width := d.contentWidth()
			if it.Dates != "" {
				d.c.SetFont(StyleItalic, d.l.BodySize)
				width -= d.c.TextWidth(it.Dates) + d.l.WrapIndent
				d.c.SetFont(StyleBold, d.l.HeadingSize)
			}
			for _, ln := range Wrap(it.Heading, width, d.c.TextWidth) {
				d.line(m, ln)
			}
		}
	}
	if it.Subtitle != "" {
		d.font(StyleItalic, d.l.BodySize, d.l.Secondary)
		d.paragraph(m, it.Subtitle)
	}
	if it.URL != "" {
		d.font(StyleRegular, d.l.BodySize, d.l.Secondary)
		d.paragraph(m, it.URL)
	}
	d.font(StyleRegular, d.l.BodySize, d.l.Body)
	for _, t := range it.Text {
		d.paragraph(m, t)
	}
	for _, b := range it.Bullets {
		d.bulletItem(b)
	}
}

func (d *drawer) bulletItem(text string) {
	x := d.l.Margin + d.l.BulletIndent
	prefix := bullet + " "
	width := d.pageW - d.l.Margin - x - d.c.TextWidth(prefix)
	for i, ln := range Wrap(text, width, d.c.TextWidth) {
		if i == 0 {
			d.line(x, prefix+ln)
			continue
		}
		d.line(d.l.Margin+d.l.WrapIndent+d.l.BulletIndent, ln)
	}
}

package render

import (
	"unicode/utf8"

	"resumeforge/internal/resume"
)

// Op is one recorded drawing instruction.
type Op struct {
	Op    string    `json:"op"`
	Page  int       `json:"page"`
	X     float64   `json:"x,omitempty"`
	Y     float64   `json:"y,omitempty"`
	X2    float64   `json:"x2,omitempty"`
	Y2    float64   `json:"y2,omitempty"`
	Text  string    `json:"text,omitempty"`
	Style FontStyle `json:"style,omitempty"`
	Size  float64   `json:"size,omitempty"`
	Color *Color    `json:"color,omitempty"`
}

// Recorder is a Canvas that keeps every call as an Op. Text width is
// estimated as half the font size per rune, which keeps layouts
// deterministic without font metrics.
type Recorder struct {
	width, height float64
	page          int
	size          float64
	ops           []Op
}

// NewRecorder returns a recorder with the given page size in points.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height, size: 10}
}

func (r *Recorder) PageSize() (float64, float64) { return r.width, r.height }
func (r *Recorder) PageNumber() int              { return r.page }

func (r *Recorder) AddPage() {
	r.page++
	r.ops = append(r.ops, Op{Op: "page", Page: r.page})
}

func (r *Recorder) SetFont(style FontStyle, size float64) {
	r.size = size
	r.ops = append(r.ops, Op{Op: "font", Page: r.page, Style: style, Size: size})
}

func (r *Recorder) SetTextColor(c Color) {
	r.ops = append(r.ops, Op{Op: "textColor", Page: r.page, Color: &c})
}

func (r *Recorder) SetDrawColor(c Color) {
	r.ops = append(r.ops, Op{Op: "drawColor", Page: r.page, Color: &c})
}

func (r *Recorder) TextWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.size * 0.5
}

func (r *Recorder) Text(x, y float64, s string) {
	r.ops = append(r.ops, Op{Op: "text", Page: r.page, X: x, Y: y, Text: s})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.ops = append(r.ops, Op{Op: "line", Page: r.page, X: x1, Y: y1, X2: x2, Y2: y2})
}

// Ops returns the recorded instructions.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Pages returns the number of pages started.
func (r *Recorder) Pages() int {
	return r.page
}

// Texts returns the text of every text op in drawing order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.ops {
		if op.Op == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Ops draws doc on a Recorder and returns the instructions.
func Ops(doc resume.Document, layout Layout) ([]Op, error) {
	l := layout.WithDefaults()
	rec := NewRecorder(l.PageWidth, l.PageHeight)
	if err := Draw(doc, rec, l); err != nil {
		return nil, err
	}
	return rec.Ops(), nil
}

package editor

import (
	"context"

	"resumeforge/internal/resume"
)

// Target is the mutable side of the resume store.
type Target interface {
	SetField(ctx context.Context, section resume.Section, field, value string) error
	SetArrayItemField(ctx context.Context, section resume.Section, index int, field string, value any) error
	AddArrayItem(ctx context.Context, section resume.Section, record any) (int, error)
	RemoveArrayItem(ctx context.Context, section resume.Section, index int) error
}

// Editor applies typed text to a Target using each field's conversion.
type Editor struct {
	target Target
}

func New(target Target) *Editor {
	return &Editor{target: target}
}

// Set parses path, converts raw according to the field's kind and writes it.
func (e *Editor) Set(ctx context.Context, path, raw string) (Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Path{}, err
	}
	if p.Index < 0 {
		return p, e.target.SetField(ctx, p.Section, p.Field, raw)
	}
	return p, e.target.SetArrayItemField(ctx, p.Section, p.Index, p.Field, p.Kind().Parse(raw))
}

// Add appends the section's blank record and returns its index.
func (e *Editor) Add(ctx context.Context, section string) (int, error) {
	s, err := resume.ParseSection(section)
	if err != nil {
		return 0, err
	}
	return e.target.AddArrayItem(ctx, s, nil)
}

// Remove deletes one record.
func (e *Editor) Remove(ctx context.Context, section string, index int) error {
	s, err := resume.ParseSection(section)
	if err != nil {
		return err
	}
	return e.target.RemoveArrayItem(ctx, s, index)
}

// Display returns the editable text of the field at path.
func Display(doc *resume.Document, path string) (string, error) {
	p, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	if p.Index < 0 {
		return resume.ScalarField(doc, p.Section, p.Field)
	}
	v, err := resume.ItemField(doc, p.Section, p.Index, p.Field)
	if err != nil {
		return "", err
	}
	return p.Kind().Format(v), nil
}

// FieldRow is one labelled input of a form.
type FieldRow struct {
	Path  string `json:"path"`
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// FormRecord groups the rows of one record. Index is -1 for basics and
// location.
type FormRecord struct {
	Index int        `json:"index"`
	Rows  []FieldRow `json:"rows"`
}

// Form lays out every record of a section as ordered field rows.
func Form(doc *resume.Document, section string) ([]FormRecord, error) {
	s, err := resume.ParseSection(section)
	if err != nil {
		return nil, err
	}
	fields, err := resume.Fields(s)
	if err != nil {
		return nil, err
	}

	if !s.IsRepeatable() {
		rec := FormRecord{Index: -1}
		for _, f := range fields {
			v, err := resume.ScalarField(doc, s, f)
			if err != nil {
				return nil, err
			}
			p := Path{Section: s, Index: -1, Field: f}
			rec.Rows = append(rec.Rows, FieldRow{Path: p.String(), Field: f, Kind: KindScalar.String(), Value: v})
		}
		return []FormRecord{rec}, nil
	}

	n, err := resume.Len(doc, s)
	if err != nil {
		return nil, err
	}
	out := make([]FormRecord, 0, n)
	for i := range n {
		rec := FormRecord{Index: i}
		for _, f := range fields {
			v, err := resume.ItemField(doc, s, i, f)
			if err != nil {
				return nil, err
			}
			p := Path{Section: s, Index: i, Field: f}
			k := p.Kind()
			rec.Rows = append(rec.Rows, FieldRow{Path: p.String(), Field: f, Kind: k.String(), Value: k.Format(v)})
		}
		out = append(out, rec)
	}
	return out, nil
}

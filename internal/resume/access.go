package resume

import (
	"fmt"
	"reflect"
	"strings"

	"resumeforge/internal/errors"
)

// The helpers in this file address document fields by their JSON names so the
// editor, the CLI and the HTTP layer can share one path syntax. Every mutation
// clones the section slice it touches and leaves the other sections shared.

func sectionSlice(doc *Document, s Section) (reflect.Value, error) {
	var ptr any
	switch s {
	case SectionProfiles:
		ptr = &doc.Basics.Profiles
	case SectionWork:
		ptr = &doc.Work
	case SectionEducation:
		ptr = &doc.Education
	case SectionSkills:
		ptr = &doc.Skills
	case SectionProjects:
		ptr = &doc.Projects
	case SectionAwards:
		ptr = &doc.Awards
	case SectionLanguages:
		ptr = &doc.Languages
	case SectionInterests:
		ptr = &doc.Interests
	case SectionHobbies:
		ptr = &doc.Hobbies
	case SectionReferences:
		ptr = &doc.References
	case SectionCertificates:
		ptr = &doc.Certificates
	case SectionPublications:
		ptr = &doc.Publications
	default:
		return reflect.Value{}, notRepeatable(s)
	}
	return reflect.ValueOf(ptr).Elem(), nil
}

func scalarStruct(doc *Document, s Section) (reflect.Value, error) {
	switch s {
	case SectionBasics:
		return reflect.ValueOf(&doc.Basics).Elem(), nil
	case SectionLocation:
		return reflect.ValueOf(&doc.Basics.Location).Elem(), nil
	}
	return reflect.Value{}, errors.NewValidationError(errors.ErrCodeUnknownSection,
		fmt.Sprintf("section %q has no scalar fields", s), nil).
		WithContext("section", string(s))
}

func notRepeatable(s Section) error {
	return errors.NewValidationError(errors.ErrCodeUnknownSection,
		fmt.Sprintf("section %q is not a list section", s), nil).
		WithContext("section", string(s))
}

func unknownField(s Section, field string) error {
	return errors.NewValidationError(errors.ErrCodeUnknownField,
		fmt.Sprintf("section %q has no field %q", s, field), nil).
		WithContext("section", string(s)).
		WithContext("field", field)
}

func checkIndex(s Section, index, length int) error {
	if index < 0 || index >= length {
		return errors.NewValidationError(errors.ErrCodeIndexOutOfRange,
			fmt.Sprintf("index %d out of range for section %q (length %d)", index, s, length), nil).
			WithContext("section", string(s)).
			WithContext("index", index).
			WithContext("length", length)
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name
}

func jsonFieldIndex(t reflect.Type, name string) (int, bool) {
	for i := range t.NumField() {
		if jsonName(t.Field(i)) == name {
			return i, true
		}
	}
	return -1, false
}

// editable reports whether a struct field is a leaf an editor can set:
// a string or a list of strings.
func editable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.String
	}
	return false
}

func sectionType(s Section) (reflect.Type, error) {
	switch {
	case s == SectionBasics:
		return reflect.TypeOf(Basics{}), nil
	case s == SectionLocation:
		return reflect.TypeOf(Location{}), nil
	case s.IsRepeatable():
		return reflect.TypeOf(Blank(s)), nil
	}
	return nil, errors.NewValidationError(errors.ErrCodeUnknownSection,
		fmt.Sprintf("unknown section %q", s), nil)
}

// Fields lists the editable field names of a section in declaration order.
// String-record sections (hobbies) expose a single "value" field.
func Fields(s Section) ([]string, error) {
	t, err := sectionType(s)
	if err != nil {
		return nil, err
	}
	if t.Kind() == reflect.String {
		return []string{"value"}, nil
	}
	var out []string
	for i := range t.NumField() {
		f := t.Field(i)
		if editable(f.Type) {
			out = append(out, jsonName(f))
		}
	}
	return out, nil
}

// IsListField reports whether field holds a list of strings.
func IsListField(s Section, field string) bool {
	t, err := sectionType(s)
	if err != nil || t.Kind() != reflect.Struct {
		return false
	}
	i, ok := jsonFieldIndex(t, field)
	if !ok {
		return false
	}
	return t.Field(i).Type.Kind() == reflect.Slice
}

// Len returns the number of records in a repeatable section.
func Len(doc *Document, s Section) (int, error) {
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return 0, err
	}
	return slice.Len(), nil
}

func recordField(elem reflect.Value, s Section, field string) (reflect.Value, error) {
	if elem.Kind() == reflect.String {
		if field == "" || field == "value" {
			return elem, nil
		}
		return reflect.Value{}, unknownField(s, field)
	}
	i, ok := jsonFieldIndex(elem.Type(), field)
	if !ok || !editable(elem.Type().Field(i).Type) {
		return reflect.Value{}, unknownField(s, field)
	}
	return elem.Field(i), nil
}

// ItemField returns one field of the record at index as a string or []string.
func ItemField(doc *Document, s Section, index int, field string) (any, error) {
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(s, index, slice.Len()); err != nil {
		return nil, err
	}
	v, err := recordField(slice.Index(index), s, field)
	if err != nil {
		return nil, err
	}
	if v.Kind() == reflect.Slice {
		out := make([]string, v.Len())
		reflect.Copy(reflect.ValueOf(out), v)
		return out, nil
	}
	return v.String(), nil
}

// ScalarField returns a string field of basics or location.
func ScalarField(doc *Document, s Section, field string) (string, error) {
	v, err := scalarStruct(doc, s)
	if err != nil {
		return "", err
	}
	i, ok := jsonFieldIndex(v.Type(), field)
	if !ok || v.Field(i).Kind() != reflect.String {
		return "", unknownField(s, field)
	}
	return v.Field(i).String(), nil
}

// SetScalar replaces one string field of basics or location. No value
// validation happens here.
func SetScalar(doc *Document, s Section, field, value string) error {
	v, err := scalarStruct(doc, s)
	if err != nil {
		return err
	}
	i, ok := jsonFieldIndex(v.Type(), field)
	if !ok || v.Field(i).Kind() != reflect.String {
		return unknownField(s, field)
	}
	v.Field(i).SetString(value)
	return nil
}

func assign(target reflect.Value, value any, s Section, field string) error {
	switch target.Kind() {
	case reflect.String:
		str, ok := value.(string)
		if !ok {
			return errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("field %q of %q expects text, got %T", field, s, value), nil)
		}
		target.SetString(str)
	case reflect.Slice:
		list, ok := value.([]string)
		if !ok {
			return errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("field %q of %q expects a list of strings, got %T", field, s, value), nil)
		}
		cp := make([]string, len(list))
		copy(cp, list)
		target.Set(reflect.ValueOf(cp))
	}
	return nil
}

func cloneSlice(v reflect.Value, extra int) reflect.Value {
	n := v.Len()
	next := reflect.MakeSlice(v.Type(), n, n+extra)
	reflect.Copy(next, v)
	return next
}

// SetItemField replaces one field of one record. An index outside the section
// is rejected with INDEX_OUT_OF_RANGE.
func SetItemField(doc *Document, s Section, index int, field string, value any) error {
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return err
	}
	if err := checkIndex(s, index, slice.Len()); err != nil {
		return err
	}
	next := cloneSlice(slice, 0)
	target, err := recordField(next.Index(index), s, field)
	if err != nil {
		return err
	}
	if err := assign(target, value, s, field); err != nil {
		return err
	}
	slice.Set(next)
	return nil
}

// AppendItem appends record (or the section's blank record when nil) and
// returns its index.
func AppendItem(doc *Document, s Section, record any) (int, error) {
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return 0, err
	}
	if record == nil {
		record = Blank(s)
	}
	rv := reflect.ValueOf(record)
	elemType := slice.Type().Elem()
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type() == elemType {
		rv = rv.Elem()
	}
	if rv.Type() != elemType {
		return 0, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("section %q holds %s records, got %s", s, elemType, rv.Type()), nil)
	}
	next := cloneSlice(slice, 1)
	next = reflect.Append(next, rv)
	fillNilLists(next.Index(next.Len() - 1))
	slice.Set(next)
	return next.Len() - 1, nil
}

// RemoveItem deletes the record at index. Removing the last record re-seeds a
// blank one so the section never becomes empty.
func RemoveItem(doc *Document, s Section, index int) error {
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return err
	}
	n := slice.Len()
	if err := checkIndex(s, index, n); err != nil {
		return err
	}
	if n == 1 {
		next := reflect.MakeSlice(slice.Type(), 1, 1)
		next.Index(0).Set(reflect.ValueOf(Blank(s)))
		slice.Set(next)
		return nil
	}
	next := reflect.MakeSlice(slice.Type(), n-1, n-1)
	reflect.Copy(next, slice.Slice(0, index))
	reflect.Copy(next.Slice(index, n-1), slice.Slice(index+1, n))
	slice.Set(next)
	return nil
}

// fillNilLists replaces nil []string fields of a record with empty slices.
func fillNilLists(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := range v.NumField() {
		f := v.Field(i)
		switch {
		case f.Kind() == reflect.Slice && f.IsNil() && f.Type().Elem().Kind() == reflect.String:
			f.Set(reflect.MakeSlice(f.Type(), 0, 0))
		case f.Kind() == reflect.Struct:
			fillNilLists(f)
		}
	}
}

// IsBlank reports whether a record carries no visible text.
func IsBlank(record any) bool {
	return isBlankValue(reflect.ValueOf(record))
}

func isBlankValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice:
		for i := range v.Len() {
			if !isBlankValue(v.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := range v.NumField() {
			if !isBlankValue(v.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || isBlankValue(v.Elem())
	}
	return false
}

// HasContent reports whether a repeatable section holds at least one
// non-blank record. For SectionBasics it checks the header fields.
func HasContent(doc *Document, s Section) bool {
	if s == SectionBasics {
		return !IsBlank(doc.Basics)
	}
	slice, err := sectionSlice(doc, s)
	if err != nil {
		return false
	}
	return !isBlankValue(slice)
}

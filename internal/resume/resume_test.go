package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

func TestNewSeedsEverySection(t *testing.T) {
	doc := New()

	assert.Equal(t, CurrentSchemaVersion, doc.SchemaVersion)
	for _, s := range RepeatableSections() {
		n, err := Len(&doc, s)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "section %s", s)
	}
	assert.NotNil(t, doc.Work[0].Highlights)
	assert.NotNil(t, doc.Skills[0].Keywords)
}

func TestSetItemField(t *testing.T) {
	tests := []struct {
		name     string
		section  Section
		index    int
		field    string
		value    any
		wantCode string
	}{
		{name: "scalar field", section: SectionWork, index: 0, field: "position", value: "Engineer"},
		{name: "list field", section: SectionWork, index: 0, field: "highlights", value: []string{"Built X"}},
		{name: "hobby record", section: SectionHobbies, index: 0, field: "value", value: "chess"},
		{name: "index past end", section: SectionWork, index: 1, field: "position", value: "x", wantCode: errors.ErrCodeIndexOutOfRange},
		{name: "negative index", section: SectionSkills, index: -1, field: "name", value: "x", wantCode: errors.ErrCodeIndexOutOfRange},
		{name: "unknown field", section: SectionWork, index: 0, field: "salary", value: "x", wantCode: errors.ErrCodeUnknownField},
		{name: "list given text", section: SectionWork, index: 0, field: "highlights", value: "Built X", wantCode: errors.ErrCodeInvalidInput},
		{name: "scalar section", section: SectionBasics, index: 0, field: "name", value: "x", wantCode: errors.ErrCodeUnknownSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New()
			err := SetItemField(&doc, tt.section, tt.index, tt.field, tt.value)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			got, err := ItemField(&doc, tt.section, tt.index, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMutationsAreCopyOnWrite(t *testing.T) {
	before := New()
	before.Work[0].Position = "Engineer"

	after := before
	require.NoError(t, SetItemField(&after, SectionWork, 0, "position", "Manager"))

	assert.Equal(t, "Engineer", before.Work[0].Position)
	assert.Equal(t, "Manager", after.Work[0].Position)
	// untouched sections keep sharing their backing array
	assert.Same(t, &before.Education[0], &after.Education[0])
}

func TestAppendAndRemove(t *testing.T) {
	doc := New()

	idx, err := AppendItem(&doc, SectionWork, Work{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.NotNil(t, doc.Work[1].Highlights, "nil lists are filled on append")

	_, err = AppendItem(&doc, SectionWork, Skill{})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	require.NoError(t, RemoveItem(&doc, SectionWork, 0))
	require.Len(t, doc.Work, 1)
	assert.Equal(t, "Acme", doc.Work[0].Name)

	err = RemoveItem(&doc, SectionWork, 5)
	assert.Equal(t, errors.ErrCodeIndexOutOfRange, errors.CodeOf(err))
}

func TestRemovingLastItemReseedsBlank(t *testing.T) {
	for _, s := range RepeatableSections() {
		t.Run(string(s), func(t *testing.T) {
			doc := New()
			require.NoError(t, RemoveItem(&doc, s, 0))
			n, err := Len(&doc, s)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestSetScalar(t *testing.T) {
	doc := New()
	require.NoError(t, SetScalar(&doc, SectionBasics, "name", "Jane Doe"))
	require.NoError(t, SetScalar(&doc, SectionLocation, "city", "Berlin"))

	assert.Equal(t, "Jane Doe", doc.Basics.Name)
	assert.Equal(t, "Berlin", doc.Basics.Location.City)

	err := SetScalar(&doc, SectionBasics, "profiles", "x")
	assert.Equal(t, errors.ErrCodeUnknownField, errors.CodeOf(err))
}

func TestFields(t *testing.T) {
	fields, err := Fields(SectionWork)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "position", "url", "startDate", "endDate", "summary", "highlights"}, fields)

	basics, err := Fields(SectionBasics)
	require.NoError(t, err)
	assert.NotContains(t, basics, "location")
	assert.NotContains(t, basics, "profiles")

	hobbies, err := Fields(SectionHobbies)
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, hobbies)
}

func TestHasContent(t *testing.T) {
	doc := New()
	assert.False(t, HasContent(&doc, SectionWork))
	assert.False(t, HasContent(&doc, SectionBasics))

	doc.Work[0].Highlights = []string{"  "}
	assert.False(t, HasContent(&doc, SectionWork))

	doc.Work[0].Highlights = []string{"Built X"}
	assert.True(t, HasContent(&doc, SectionWork))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	doc := Document{Work: []Work{{Name: "Acme"}}}
	Normalize(&doc)
	first, err := Encode(doc)
	require.NoError(t, err)

	Normalize(&doc)
	second, err := Encode(doc)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, []string{}, doc.Work[0].Highlights)
}

func TestCloneIsDeep(t *testing.T) {
	doc := New()
	doc.Work[0].Highlights = []string{"a"}

	cp := Clone(doc)
	cp.Work[0].Highlights[0] = "b"
	cp.Basics.Name = "changed"

	assert.Equal(t, "a", doc.Work[0].Highlights[0])
	assert.Equal(t, "", doc.Basics.Name)
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection("Experience")
	require.NoError(t, err)
	assert.Equal(t, SectionWork, s)

	_, err = ParseSection("salary")
	assert.Equal(t, errors.ErrCodeUnknownSection, errors.CodeOf(err))
}

package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

const legacyJSON = `{
  "name": "Jane Doe",
  "email": "jane@example.com",
  "location": "Berlin",
  "website": "https://jane.dev",
  "twitter": "@jane",
  "github": "janedoe",
  "experience": [
    {"position": "Engineer", "company": "Acme", "startDate": "2020-01", "description": "Built X\n\nShipped Y"}
  ],
  "projects": [
    {"name": "forge", "link": "https://forge.dev", "skills": ["Go", "LaTeX"], "description": ["fast"], "duration": "2021"}
  ],
  "education": [
    {"institution": "TU", "degree": "BSc", "status": "Completed"}
  ],
  "skills": [{"category": "Languages", "skills": ["Go", "Rust"]}],
  "awards": ["Hackathon winner"],
  "languages": [{"language": "German", "fluency": "Native"}],
  "hobbies": ["chess"]
}`

func TestMigrateLegacyLayout(t *testing.T) {
	doc, err := Decode([]byte(legacyJSON))
	require.NoError(t, err)

	assert.Equal(t, CurrentSchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "Jane Doe", doc.Basics.Name)
	assert.Equal(t, "Berlin", doc.Basics.Location.City)
	assert.Equal(t, "https://jane.dev", doc.Basics.URL)
	require.Len(t, doc.Basics.Profiles, 2)
	assert.Equal(t, "jane", doc.Basics.Profiles[0].Username)
	assert.Equal(t, "https://github.com/janedoe", doc.Basics.Profiles[1].URL)

	require.Len(t, doc.Work, 1)
	assert.Equal(t, "Acme", doc.Work[0].Name)
	assert.Equal(t, []string{"Built X", "Shipped Y"}, doc.Work[0].Highlights)

	assert.Equal(t, "https://forge.dev", doc.Projects[0].URL)
	assert.Equal(t, []string{"Go", "LaTeX"}, doc.Projects[0].Keywords)
	assert.Equal(t, "2021", doc.Projects[0].StartDate)

	assert.Equal(t, "BSc (Completed)", doc.Education[0].StudyType)
	assert.Equal(t, "Languages", doc.Skills[0].Name)
	assert.Equal(t, "Hackathon winner", doc.Awards[0].Title)
	assert.Equal(t, "Native", doc.Languages[0].Fluency)
	assert.Equal(t, []string{"chess"}, doc.Hobbies)

	// sections absent from the legacy form are seeded
	require.Len(t, doc.References, 1)
	assert.True(t, IsBlank(doc.References[0]))
}

func TestMigrateVersionDetection(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVersion int
		wantCode    string
	}{
		{name: "explicit current", raw: `{"schemaVersion":1,"basics":{"name":"a"}}`, wantVersion: 1},
		{name: "structured without version", raw: `{"basics":{"name":"a"}}`, wantVersion: 1},
		{name: "flat layout", raw: `{"name":"a"}`, wantVersion: 0},
		{name: "newer than supported", raw: `{"schemaVersion":99}`, wantVersion: 99, wantCode: errors.ErrCodeDecodeFailed},
		{name: "not json", raw: `{"name":`, wantCode: errors.ErrCodeDecodeFailed},
		{name: "not an object", raw: `[1,2]`, wantCode: errors.ErrCodeDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, version, err := Migrate([]byte(tt.raw))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	_, err := Decode([]byte(`{"schemaVersion":1,"work":"nope"}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDecodeFailed, errors.CodeOf(err))
}

func TestDecodeSplitsStringLists(t *testing.T) {
	raw := `{
		"schemaVersion": 1,
		"basics": {"name": "Jane Doe"},
		"work": [{"name": "Acme", "highlights": "Built X\n\nShipped Y"}],
		"education": [{"institution": "MIT", "courses": "Algorithms"}],
		"skills": [{"name": "Languages", "keywords": "Go, Rust,"}],
		"projects": [{"name": "forge", "keywords": "Go", "highlights": ["Fast"]}],
		"interests": [{"name": "Music", "keywords": "jazz , blues"}],
		"hobbies": "Chess\nClimbing"
	}`

	doc, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"Built X", "Shipped Y"}, doc.Work[0].Highlights)
	assert.Equal(t, []string{"Algorithms"}, doc.Education[0].Courses)
	assert.Equal(t, []string{"Go", "Rust"}, doc.Skills[0].Keywords)
	assert.Equal(t, []string{"Go"}, doc.Projects[0].Keywords)
	assert.Equal(t, []string{"Fast"}, doc.Projects[0].Highlights)
	assert.Equal(t, []string{"jazz", "blues"}, doc.Interests[0].Keywords)
	assert.Equal(t, []string{"Chess", "Climbing"}, doc.Hobbies)
}

func TestDecodeYAMLSplitsStringLists(t *testing.T) {
	doc, err := DecodeYAML([]byte("basics:\n  name: Jane Doe\nskills:\n  - name: Languages\n    keywords: Go, Rust\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, doc.Skills[0].Keywords)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := New()
	doc.Basics.Name = "Jane Doe"
	doc.Work[0].Highlights = []string{"Built X"}

	raw, err := Encode(doc)
	require.NoError(t, err)
	back, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	y, err := EncodeYAML(doc)
	require.NoError(t, err)
	fromYAML, err := DecodeFile("resume.yaml", y)
	require.NoError(t, err)
	assert.Equal(t, doc, fromYAML)
}

func TestDecodeFileRejectsUnknownExtension(t *testing.T) {
	_, err := DecodeFile("resume.docx", []byte("{}"))
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
}

func TestCheckRequired(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Document)
		wantFields []string
	}{
		{
			name: "complete",
			mutate: func(d *Document) {
				d.Basics.Name = "Jane"
				d.Basics.Email = "jane@example.com"
				d.Skills[0].Keywords = []string{"Go"}
			},
		},
		{
			name:       "empty document",
			mutate:     func(*Document) {},
			wantFields: []string{"basics.name", "basics.email", "skills"},
		},
		{
			name: "malformed email",
			mutate: func(d *Document) {
				d.Basics.Name = "Jane"
				d.Basics.Email = "jane at example"
				d.Skills[0].Keywords = []string{"Go"}
			},
			wantFields: []string{"basics.email"},
		},
		{
			name: "blank skill keywords",
			mutate: func(d *Document) {
				d.Basics.Name = "Jane"
				d.Basics.Email = "jane@example.com"
				d.Skills[0].Keywords = []string{" "}
			},
			wantFields: []string{"skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New()
			tt.mutate(&doc)
			var fields []string
			for _, p := range CheckRequired(&doc) {
				fields = append(fields, p.Field)
			}
			assert.Equal(t, tt.wantFields, fields)

			err := RequireFields(&doc)
			if tt.wantFields == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, errors.ErrCodeMissingField, errors.CodeOf(err))
			}
		})
	}
}

func TestValidateSchema(t *testing.T) {
	doc := New()
	assert.NoError(t, ValidateSchema(&doc))

	assert.NoError(t, ValidateRaw([]byte(`{"basics":{"name":"a"},"work":null}`)))

	err := ValidateRaw([]byte(`{"basics":{"name":"a","nickname":"b"}}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchemaInvalid, errors.CodeOf(err))

	err = ValidateRaw([]byte(`{"skills":[{"keywords":"Go"}]}`))
	assert.Equal(t, errors.ErrCodeSchemaInvalid, errors.CodeOf(err))
}

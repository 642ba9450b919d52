package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
	"resumeforge/internal/render"
	"resumeforge/internal/resume"
)

// flakyKV fails every Set while failing is true.
type flakyKV struct {
	*MemoryKV
	failing bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failing {
		return fmt.Errorf("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func openMemory(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	s, err := Open(context.Background(), kv, nil)
	require.NoError(t, err)
	return s, kv
}

func TestOpenEmpty(t *testing.T) {
	s, kv := openMemory(t)

	doc := s.Get()
	assert.Equal(t, resume.New(), doc)

	_, ok, err := kv.Get(context.Background(), KeyResumeData)
	require.NoError(t, err)
	assert.False(t, ok, "nothing is persisted before the first edit")
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	s, kv := openMemory(t)

	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane Doe"))
	require.NoError(t, s.SetArrayItemField(ctx, resume.SectionWork, 0, "highlights", []string{"Built X"}))
	idx, err := s.AddArrayItem(ctx, resume.SectionSkills, resume.Skill{Name: "Languages", Keywords: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	raw, ok, err := kv.Get(ctx, KeyResumeData)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := resume.Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, s.Get(), stored)

	reopened, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", reopened.Get().Basics.Name)
}

func TestRemoveOnlyItemLeavesBlank(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.SetArrayItemField(ctx, resume.SectionAwards, 0, "title", "Best"))

	require.NoError(t, s.RemoveArrayItem(ctx, resume.SectionAwards, 0))

	doc := s.Get()
	require.Len(t, doc.Awards, 1)
	assert.Equal(t, resume.Award{}, doc.Awards[0])
}

func TestOutOfRangeIsRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)
	before := s.Get()

	err := s.SetArrayItemField(ctx, resume.SectionWork, 3, "name", "Acme")
	assert.Equal(t, errors.ErrCodeIndexOutOfRange, errors.CodeOf(err))

	err = s.RemoveArrayItem(ctx, resume.SectionWork, -1)
	assert.Equal(t, errors.ErrCodeIndexOutOfRange, errors.CodeOf(err))

	assert.Equal(t, before, s.Get())
}

func TestFailedWriteKeepsPreviousDocument(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	s, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane"))

	kv.failing = true
	err = s.SetField(ctx, resume.SectionBasics, "name", "John")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
	assert.Equal(t, "Jane", s.Get().Basics.Name)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.SetArrayItemField(ctx, resume.SectionWork, 0, "highlights", []string{"a"}))

	doc := s.Get()
	doc.Work[0].Highlights[0] = "mutated"
	doc.Basics.Name = "mutated"

	assert.Equal(t, []string{"a"}, s.Get().Work[0].Highlights)
	assert.Empty(t, s.Get().Basics.Name)
}

func TestHydrateRoundTripRendersIdentically(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)
	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane Doe"))
	require.NoError(t, s.SetArrayItemField(ctx, resume.SectionWork, 0, "name", "Acme"))
	require.NoError(t, s.SetArrayItemField(ctx, resume.SectionWork, 0, "highlights", []string{"Built X", "Shipped Y"}))

	before := render.LaTeX(s.Get())
	require.NoError(t, s.Hydrate(ctx, s.Get()))
	after := render.LaTeX(s.Get())

	assert.Equal(t, before, after)
}

func TestHydrateNormalizes(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)

	require.NoError(t, s.Hydrate(ctx, resume.Document{Basics: resume.Basics{Name: "Jane"}}))

	doc := s.Get()
	assert.Equal(t, "Jane", doc.Basics.Name)
	assert.Len(t, doc.Work, 1)
	assert.Equal(t, resume.CurrentSchemaVersion, doc.SchemaVersion)
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	s, _ := openMemory(t)

	var seen []string
	s.OnChange(func(doc resume.Document) {
		seen = append(seen, doc.Basics.Name)
	})

	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "A"))
	require.Error(t, s.SetField(ctx, resume.SectionBasics, "nickname", "B"))
	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "C"))

	assert.Equal(t, []string{"A", "C"}, seen)
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name     string
		kind     PublishKind
		complete bool
		wantCode string
	}{
		{name: "resume incomplete", kind: PublishResume, wantCode: errors.ErrCodeMissingField},
		{name: "resume complete", kind: PublishResume, complete: true},
		{name: "portfolio complete", kind: PublishPortfolio, complete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, kv := openMemory(t)
			if tt.complete {
				require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane"))
				require.NoError(t, s.SetField(ctx, resume.SectionBasics, "email", "jane@example.com"))
				require.NoError(t, s.SetArrayItemField(ctx, resume.SectionSkills, 0, "keywords", []string{"Go"}))
			}

			err := s.Publish(ctx, tt.kind)
			on, flagErr := s.Published(ctx, tt.kind)
			require.NoError(t, flagErr)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				assert.False(t, on)
				return
			}
			require.NoError(t, err)
			assert.True(t, on)

			raw, _, _ := kv.Get(ctx, tt.kind.key())
			assert.Equal(t, "true", raw)

			_, hasSnapshot, _ := kv.Get(ctx, KeyPortfolioData)
			assert.Equal(t, tt.kind == PublishPortfolio, hasSnapshot)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, kv := openMemory(t)
	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane"))
	require.NoError(t, s.SetPublished(ctx, PublishResume, true))

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, resume.New(), s.Get())
	_, ok, _ := kv.Get(ctx, KeyResumeData)
	assert.False(t, ok)
	on, err := s.Published(ctx, PublishResume)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestOpenMigratesLegacyData(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyResumeData, `{"name":"Jane","experience":[{"company":"Acme","description":["Built X"]}]}`))

	s, err := Open(ctx, kv, nil)
	require.NoError(t, err)

	doc := s.Get()
	assert.Equal(t, "Jane", doc.Basics.Name)
	assert.Equal(t, "Acme", doc.Work[0].Name)
	assert.Equal(t, []string{"Built X"}, doc.Work[0].Highlights)
}

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	kv := NewFileKV(path)

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", "1"))
	require.NoError(t, kv.Set(ctx, "b", "2"))
	require.NoError(t, kv.Delete(ctx, "a"))

	v, ok, err := NewFileKV(path).Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileKVCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(context.Background(), NewFileKV(path), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("RESUMEFORGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RESUMEFORGE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	kv, err := NewRedisKV(ctx, RedisOptions{Addr: addr, KeyPrefix: "resumeforge:test:"})
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	defer func() { _ = kv.Delete(ctx, KeyResumeData) }()

	s, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetField(ctx, resume.SectionBasics, "name", "Jane"))

	reopened, err := Open(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane", reopened.Get().Basics.Name)
}

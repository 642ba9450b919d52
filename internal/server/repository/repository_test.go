package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resumeforge/internal/config"
	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLatest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Latest(ctx, "key:abc")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))

	first, err := m.Save(ctx, "key:abc", json.RawMessage(`{"basics":{"name":"One"}}`))
	require.NoError(t, err)
	second, err := m.Save(ctx, "key:abc", json.RawMessage(`{"basics":{"name":"Two"}}`))
	require.NoError(t, err)
	_, err = m.Save(ctx, "user-2", json.RawMessage(`{"basics":{"name":"Other"}}`))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	latest, err := m.Latest(ctx, "key:abc")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.JSONEq(t, `{"basics":{"name":"Two"}}`, string(latest.Document))
	assert.Equal(t, 2, m.Count("key:abc"))
}

func TestMemoryCopiesDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	doc := json.RawMessage(`{"a":1}`)

	_, err := m.Save(ctx, "o", doc)
	require.NoError(t, err)
	doc[5] = '2'

	latest, err := m.Latest(ctx, "o")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(latest.Document))
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeDB struct {
	mu      sync.Mutex
	execs   []string
	args    [][]any
	execErr error
	row     fakeRow
	closed  bool
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

func (f *fakeDB) Close() { f.closed = true }

func TestPostgresMigrate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewPostgres(db).Migrate(context.Background()))
	require.Len(t, db.execs, 2)
	assert.Contains(t, db.execs[0], "JSONB")
	assert.Contains(t, db.execs[1], "owner_id, created_at DESC")
}

func TestPostgresSave(t *testing.T) {
	db := &fakeDB{}
	p := NewPostgres(db)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	rec, err := p.Save(context.Background(), "sub-1", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, fixed, rec.CreatedAt)

	require.Len(t, db.args, 1)
	assert.True(t, strings.HasPrefix(db.execs[0], "INSERT INTO resumes"))
	assert.Equal(t, "sub-1", db.args[0][1])
	assert.Equal(t, []byte(`{"x":1}`), db.args[0][2])
}

func TestPostgresSaveFailure(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection reset")}
	_, err := NewPostgres(db).Save(context.Background(), "o", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStorageFailed, apperrors.CodeOf(err))
}

func TestPostgresLatest(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		row      fakeRow
		wantCode string
	}{
		{
			name: "found",
			row:  fakeRow{values: []any{"6f1c", "o", []byte(`{"basics":{}}`), created, created}},
		},
		{name: "no rows", row: fakeRow{err: pgx.ErrNoRows}, wantCode: apperrors.ErrCodeNotFound},
		{name: "query failure", row: fakeRow{err: errors.New("timeout")}, wantCode: apperrors.ErrCodeStorageFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewPostgres(&fakeDB{row: tt.row}).Latest(context.Background(), "o")
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "6f1c", rec.ID)
			assert.JSONEq(t, `{"basics":{}}`, string(rec.Document))
			assert.Equal(t, created, rec.UpdatedAt)
		})
	}
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	failGet bool
	failSet bool
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet {
		return nil, false, errors.New("redis down")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errors.New("redis down")
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) Close() error { return nil }

// countingRepo counts Latest calls that reach the backing store
type countingRepo struct {
	*Memory
	latestCalls int
}

func (c *countingRepo) Latest(ctx context.Context, owner string) (types.ResumeRecord, error) {
	c.latestCalls++
	return c.Memory.Latest(ctx, owner)
}

func TestCachedServesLatestFromCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingRepo{Memory: NewMemory()}
	cache := newFakeCache()
	c := NewCached(backing, cache, "latest:", time.Minute, nil)

	saved, err := c.Save(ctx, "o", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	assert.Contains(t, cache.data, "latest:o")

	got, err := c.Latest(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Zero(t, backing.latestCalls, "a cached record skips the repository")
}

func TestCachedFallsBackOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	backing := &countingRepo{Memory: NewMemory()}
	cache := newFakeCache()
	cache.failGet, cache.failSet = true, true
	c := NewCached(backing, cache, "latest:", time.Minute, nil)

	saved, err := c.Save(ctx, "o", json.RawMessage(`{"v":1}`))
	require.NoError(t, err, "cache write failures do not fail a save")

	got, err := c.Latest(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, 1, backing.latestCalls)
}

func TestCachedMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingRepo{Memory: NewMemory()}
	_, err := backing.Save(ctx, "o", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)

	cache := newFakeCache()
	c := NewCached(backing, cache, "latest:", time.Minute, nil)

	_, err = c.Latest(ctx, "o")
	require.NoError(t, err)
	_, err = c.Latest(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.latestCalls)

	_, err = c.Latest(ctx, "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), configWithBackend("sqlite"), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))

	repo, err := Open(context.Background(), configWithBackend("memory"), nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, repo)
}

func configWithBackend(backend string) config.RepositoryConfig {
	return config.RepositoryConfig{Backend: backend}
}

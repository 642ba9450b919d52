package remote

import (
	"context"
	"encoding/json"
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
	"resumeforge/internal/store"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	saved     []resume.Document
	saveErr   error
	latest    types.ResumeRecord
	latestErr error
}

func (f *fakeBackend) SaveResume(_ context.Context, doc resume.Document) (types.SaveResumeResponse, error) {
	if f.saveErr != nil {
		return types.SaveResumeResponse{}, f.saveErr
	}
	f.saved = append(f.saved, doc)
	return types.SaveResumeResponse{ID: "saved-1"}, nil
}

func (f *fakeBackend) LatestResume(context.Context) (types.ResumeRecord, error) {
	return f.latest, f.latestErr
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemoryKV(), nil)
	require.NoError(t, err)
	return st
}

func TestPush(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.SetField(ctx, resume.SectionBasics, "name", "Jane Doe"))

	backend := &fakeBackend{}
	out := NewSyncer(backend, st, nil).Push(ctx)

	assert.Equal(t, Outcome{Synced: true, ID: "saved-1"}, out)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, "Jane Doe", backend.saved[0].Basics.Name)
}

func TestPushFailureIsAWarning(t *testing.T) {
	st := openStore(t)
	backend := &fakeBackend{saveErr: errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "backend is unreachable", nil)}

	var failures []string
	syncer := NewSyncer(backend, st, nil)
	syncer.OnFailure(func(direction string) { failures = append(failures, direction) })

	out := syncer.Push(context.Background())
	assert.False(t, out.Synced)
	assert.Contains(t, out.Warning, "backend is unreachable")
	assert.Equal(t, []string{"push"}, failures)
}

func TestPull(t *testing.T) {
	remoteDoc := resume.New()
	remoteDoc.Basics.Name = "Remote Name"
	raw, err := resume.Encode(remoteDoc)
	require.NoError(t, err)

	tests := []struct {
		name     string
		backend  *fakeBackend
		synced   bool
		warning  string
		wantName string
	}{
		{
			name:     "hydrates the store",
			backend:  &fakeBackend{latest: types.ResumeRecord{ID: "r9", Document: raw}},
			synced:   true,
			wantName: "Remote Name",
		},
		{
			name:     "nothing stored remotely",
			backend:  &fakeBackend{latestErr: errors.NewNetworkError(errors.ErrCodeNotFound, "backend answered 404", nil)},
			warning:  "no resume stored",
			wantName: "Local Name",
		},
		{
			name:     "backend down",
			backend:  &fakeBackend{latestErr: errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "backend is unreachable", nil)},
			warning:  "keeping local resume",
			wantName: "Local Name",
		},
		{
			name:     "unreadable document",
			backend:  &fakeBackend{latest: types.ResumeRecord{ID: "r1", Document: json.RawMessage(`{"schemaVersion": 99}`)}},
			warning:  "unreadable",
			wantName: "Local Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := openStore(t)
			require.NoError(t, st.SetField(ctx, resume.SectionBasics, "name", "Local Name"))

			out, err := NewSyncer(tt.backend, st, nil).Pull(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.synced, out.Synced)
			if tt.warning != "" {
				assert.Contains(t, out.Warning, tt.warning)
			}
			assert.Equal(t, tt.wantName, st.Get().Basics.Name)
		})
	}
}

func TestSyncDisabled(t *testing.T) {
	syncer := NewSyncer(nil, openStore(t), nil)

	assert.Equal(t, "remote sync is disabled", syncer.Push(context.Background()).Warning)

	out, err := syncer.Pull(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Synced)
}

package remote

import (
	"context"
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
)

// Backend is the part of the client the syncer needs
type Backend interface {
	SaveResume(ctx context.Context, doc resume.Document) (types.SaveResumeResponse, error)
	LatestResume(ctx context.Context) (types.ResumeRecord, error)
}

var _ Backend = (*Client)(nil)

// Outcome describes a sync attempt. A failed sync is reported through
// Warning; the local copy stays authoritative either way.
type Outcome struct {
	Synced  bool   `json:"synced"`
	Warning string `json:"warning,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Syncer mirrors the local store to the backend on a best-effort basis
type Syncer struct {
	backend Backend
	store   *store.Store
	logger  *errors.Logger

	onFailure func(direction string)
}

// NewSyncer creates a syncer. A nil backend means sync is disabled and every
// call reports a warning.
func NewSyncer(backend Backend, st *store.Store, logger *errors.Logger) *Syncer {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Syncer{backend: backend, store: st, logger: logger}
}

// OnFailure registers a hook called with "push" or "pull" whenever a sync
// attempt fails.
func (s *Syncer) OnFailure(fn func(direction string)) {
	s.onFailure = fn
}

// Push uploads the current document
func (s *Syncer) Push(ctx context.Context) Outcome {
	if s.backend == nil {
		return Outcome{Warning: "remote sync is disabled"}
	}

	resp, err := s.backend.SaveResume(ctx, s.store.Get())
	if err != nil {
		s.failed("push", err)
		return Outcome{Warning: fmt.Sprintf("resume saved locally only: %s", describe(err))}
	}

	s.logger.Info("Resume pushed to backend", "id", resp.ID)
	return Outcome{Synced: true, ID: resp.ID}
}

// Pull replaces the local document with the latest one from the backend.
// Network and decoding problems become warnings; only a failure to persist
// the pulled document locally is returned as an error.
func (s *Syncer) Pull(ctx context.Context) (Outcome, error) {
	if s.backend == nil {
		return Outcome{Warning: "remote sync is disabled"}, nil
	}

	record, err := s.backend.LatestResume(ctx)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeNotFound {
			return Outcome{Warning: "no resume stored on the backend yet"}, nil
		}
		s.failed("pull", err)
		return Outcome{Warning: fmt.Sprintf("keeping local resume: %s", describe(err))}, nil
	}

	doc, err := resume.Decode(record.Document)
	if err != nil {
		s.failed("pull", err)
		return Outcome{Warning: fmt.Sprintf("keeping local resume: backend copy is unreadable: %v", err)}, nil
	}

	if err := s.store.Hydrate(ctx, doc); err != nil {
		return Outcome{}, err
	}

	s.logger.Info("Resume pulled from backend", "id", record.ID)
	return Outcome{Synced: true, ID: record.ID}, nil
}

func (s *Syncer) failed(direction string, err error) {
	s.logger.Warn("Remote sync failed", "direction", direction, "error", err.Error())
	if s.onFailure != nil {
		s.onFailure(direction)
	}
}

func describe(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

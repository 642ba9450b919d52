package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

// Keys under which the store persists its state.
const (
	KeyResumeData         = "resumeData"
	KeyResumePublished    = "resumePublished"
	KeyPortfolioPublished = "portfolioPublished"
	KeyPortfolioData      = "portfolioData"
)

// PublishKind selects one of the two published flags.
type PublishKind string

const (
	PublishResume    PublishKind = "resume"
	PublishPortfolio PublishKind = "portfolio"
)

// ParsePublishKind validates a kind given on the command line.
func ParsePublishKind(s string) (PublishKind, error) {
	switch k := PublishKind(s); k {
	case PublishResume, PublishPortfolio:
		return k, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("unknown publish target %q (use resume or portfolio)", s), nil)
}

func (k PublishKind) key() string {
	if k == PublishPortfolio {
		return KeyPortfolioPublished
	}
	return KeyResumePublished
}

// Store owns the canonical resume document. Every mutation is written through
// to the KV before it becomes visible; a failed write leaves the previous
// document in place.
type Store struct {
	mu        sync.Mutex
	kv        KV
	logger    *errors.Logger
	doc       resume.Document
	listeners []func(resume.Document)
}

// Open loads the persisted document, migrating older layouts. A missing key
// yields a fresh document that is not persisted until the first edit.
func Open(ctx context.Context, kv KV, logger *errors.Logger) (*Store, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Store{kv: kv, logger: logger}

	raw, ok, err := kv.Get(ctx, KeyResumeData)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to read stored resume", err).
			WithContext("key", KeyResumeData)
	}
	if !ok || raw == "" {
		s.doc = resume.New()
		logger.Debug("no stored resume, starting empty")
		return s, nil
	}

	doc, err := resume.Decode([]byte(raw))
	if err != nil {
		return nil, err
	}
	s.doc = doc
	logger.Debug("resume hydrated from storage", "bytes", len(raw))
	return s, nil
}

// Get returns a deep copy of the current document.
func (s *Store) Get() resume.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resume.Clone(s.doc)
}

// OnChange registers fn to be called with a copy of every committed document.
func (s *Store) OnChange(fn func(resume.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetField replaces a scalar field of basics or location.
func (s *Store) SetField(ctx context.Context, section resume.Section, field, value string) error {
	return s.update(ctx, "set_field", func(doc *resume.Document) error {
		return resume.SetScalar(doc, section, field, value)
	})
}

// SetArrayItemField replaces one field of the record at index. value is a
// string or, for list fields, a []string.
func (s *Store) SetArrayItemField(ctx context.Context, section resume.Section, index int, field string, value any) error {
	return s.update(ctx, "set_item_field", func(doc *resume.Document) error {
		return resume.SetItemField(doc, section, index, field, value)
	})
}

// AddArrayItem appends record (the section's blank record when nil) and
// returns its index.
func (s *Store) AddArrayItem(ctx context.Context, section resume.Section, record any) (int, error) {
	var idx int
	err := s.update(ctx, "add_item", func(doc *resume.Document) error {
		var err error
		idx, err = resume.AppendItem(doc, section, record)
		return err
	})
	return idx, err
}

// RemoveArrayItem deletes the record at index; the section never becomes empty.
func (s *Store) RemoveArrayItem(ctx context.Context, section resume.Section, index int) error {
	return s.update(ctx, "remove_item", func(doc *resume.Document) error {
		return resume.RemoveItem(doc, section, index)
	})
}

// Hydrate replaces the whole document, normalizing it first.
func (s *Store) Hydrate(ctx context.Context, doc resume.Document) error {
	return s.update(ctx, "hydrate", func(next *resume.Document) error {
		*next = resume.Clone(doc)
		resume.Normalize(next)
		return nil
	})
}

// Clear drops the stored document, the portfolio snapshot and both flags.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	for _, key := range []string{KeyResumeData, KeyPortfolioData, KeyResumePublished, KeyPortfolioPublished} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.mu.Unlock()
			return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to clear stored resume", err).
				WithContext("key", key)
		}
	}
	s.doc = resume.New()
	listeners, doc := s.snapshot()
	s.mu.Unlock()

	s.logger.Info("stored resume cleared")
	notify(listeners, doc)
	return nil
}

// Published reads a published flag. An absent flag is false.
func (s *Store) Published(ctx context.Context, kind PublishKind) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, kind.key())
	if err != nil {
		return false, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to read publish flag", err).
			WithContext("key", kind.key())
	}
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed publish flag", "key", kind.key(), "value", raw)
		return false, nil
	}
	return v, nil
}

// SetPublished writes a published flag as "true" or "false".
func (s *Store) SetPublished(ctx context.Context, kind PublishKind, on bool) error {
	if err := s.kv.Set(ctx, kind.key(), strconv.FormatBool(on)); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to write publish flag", err).
			WithContext("key", kind.key())
	}
	return nil
}

// Publish turns a flag on after the required-field checks pass. Publishing the
// portfolio also stores a snapshot of the document under portfolioData.
func (s *Store) Publish(ctx context.Context, kind PublishKind) error {
	doc := s.Get()
	if err := resume.RequireFields(&doc); err != nil {
		return err
	}
	if kind == PublishPortfolio {
		raw, err := resume.Encode(doc)
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, KeyPortfolioData, string(raw)); err != nil {
			return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to store portfolio snapshot", err).
				WithContext("key", KeyPortfolioData)
		}
	}
	if err := s.SetPublished(ctx, kind, true); err != nil {
		return err
	}
	s.logger.Info("published", "target", string(kind))
	return nil
}

func (s *Store) update(ctx context.Context, op string, mutate func(*resume.Document) error) error {
	s.mu.Lock()
	next := s.doc
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		s.logger.LogError(err, "resume write failed, keeping previous document", "operation", op)
		return err
	}
	s.doc = next
	listeners, doc := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("resume updated", "operation", op)
	notify(listeners, doc)
	return nil
}

func (s *Store) persist(ctx context.Context, doc resume.Document) error {
	raw, err := resume.Encode(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyResumeData, string(raw)); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to persist resume", err).
			WithContext("key", KeyResumeData)
	}
	return nil
}

// snapshot must be called with s.mu held.
func (s *Store) snapshot() ([]func(resume.Document), resume.Document) {
	if len(s.listeners) == 0 {
		return nil, resume.Document{}
	}
	listeners := make([]func(resume.Document), len(s.listeners))
	copy(listeners, s.listeners)
	return listeners, resume.Clone(s.doc)
}

func notify(listeners []func(resume.Document), doc resume.Document) {
	for _, fn := range listeners {
		fn(resume.Clone(doc))
	}
}

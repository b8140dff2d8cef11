// Package store persists the whole application document as one blob with
// read-modify-write semantics. A single mutex serializes writers; there is
// no optimistic versioning and no cross-document transaction.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// ErrNotFound is returned by backends when no document has been saved yet.
var ErrNotFound = errors.New("store: document not found")

// Backend reads and overwrites the serialized document wholesale.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Store is the mutex-guarded facade over a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
}

// New constructs a Store.
func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// View runs fn with a freshly loaded document. The document must not be
// retained past the callback.
func (s *Store) View(ctx context.Context, fn func(*domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load(ctx)
	fn(doc)
	return nil
}

// Update loads the document, applies fn and saves the result. When fn
// returns an error nothing is written and the error is passed through.
func (s *Store) Update(ctx context.Context, fn func(*domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load(ctx)
	if err := fn(doc); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Error("store save failed", zap.Error(err))
		return err
	}
	return nil
}

// load never fails: a missing or unreadable document degrades to an empty
// default so the event loop keeps running.
func (s *Store) load(ctx context.Context) *domain.Document {
	data, err := s.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("store load failed, using empty document", zap.Error(err))
		}
		return domain.NewDocument()
	}
	doc := domain.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("store document corrupt, using empty document", zap.Error(err))
		return domain.NewDocument()
	}
	doc.Normalize()
	return doc
}

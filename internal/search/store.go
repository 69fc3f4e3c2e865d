package search

import (
	"sync"

	"github.com/fattits30-dev/solicitor-search/pkg/errors"
)

// Store holds the canonical stored copy of every indexed document, keyed by
// id. It exists so search results can be materialised with their field
// values; it is never consulted during term matching.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Put inserts or replaces the document under doc.ID.
func (s *Store) Put(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.clone()
}

// Get returns the document for id, or ErrDocumentNotFound. Callers treat
// the error as a normal "no result", not an exceptional condition.
func (s *Store) Get(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, errors.ErrDocumentNotFound
	}
	return doc.clone(), nil
}

// Delete removes the document for id. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// Contains reports whether a document exists for id.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Package document holds the latest text and version of each open
// configuration document. It is the single source of truth for "latest
// version": every validation pass re-checks it before publishing results.
package document

import "sync"

// Document is one open document's current snapshot.
type Document struct {
	Text    string
	Version int32
}

// Store is a concurrency-safe map of open documents keyed by identifier.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Set replaces the document's text if version is newer than the stored one.
// It returns false when the update is stale and was rejected.
func (s *Store) Set(id string, version int32, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.docs[id]; ok && version <= current.Version {
		return false
	}
	s.docs[id] = Document{Text: text, Version: version}
	return true
}

// Get returns the current snapshot for id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Version returns the latest known version for id.
func (s *Store) Version(id string) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc.Version, ok
}

// Remove forgets the document.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

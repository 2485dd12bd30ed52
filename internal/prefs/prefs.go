// Package prefs is the local key-value preferences store. Values are
// opaque byte slices (JSON documents in practice).
package prefs

import (
	"sort"
	"sync"
)

// Keys written by the application.
const (
	KeyUserProgress   = "userProgress"
	KeySavedArticles  = "savedArticles"
	KeySavedQuestions = "savedQuestions"
)

// AccountKeys lists every key removed when the account is deleted.
var AccountKeys = []string{KeyUserProgress, KeySavedArticles, KeySavedQuestions}

// Store persists values by key. Get reports absence with ok=false and a
// nil error.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.values, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeleteAll removes keys from s, returning the first error after trying all of them.
func DeleteAll(s Store, keys ...string) error {
	var first error
	for _, k := range keys {
		if err := s.Delete(k); err != nil && first == nil {
			first = err
		}
	}
	return first
}

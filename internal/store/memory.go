package store

import (
	"context"
	"sort"
	"sync"
)

type MemoryBackend struct {
	mu          sync.Mutex
	collections map[string]*MemoryStore
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]*MemoryStore)}
}

func (b *MemoryBackend) Collection(name string) DocumentStore {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.collections[name]
	if !ok {
		s = NewMemoryStore()
		b.collections[name] = s
	}
	return s
}

func (b *MemoryBackend) Close() error {
	return nil
}

type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), doc...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}

func (s *MemoryStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.docs))
	for key := range s.docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Rename(ctx context.Context, oldKey, newKey string) error {
	if err := checkKey(newKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[oldKey]
	if !ok {
		return ErrNotFound
	}
	delete(s.docs, oldKey)
	s.docs[newKey] = doc
	return nil
}

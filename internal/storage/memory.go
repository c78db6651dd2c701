package storage

import (
	"context"
	"strings"
	"sync"
)

// Object is what MemoryStore keeps per key.
type Object struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// MemoryStore is an in process bucket for development without object storage and tests.
type MemoryStore struct {
	base    string
	mu      sync.Mutex
	objects map[string]Object
}

func NewMemoryStore(publicBase string) *MemoryStore {
	return &MemoryStore{base: strings.TrimRight(publicBase, "/"), objects: make(map[string]Object)}
}

func (m *MemoryStore) PublicURL(key string) string {
	return m.base + "/" + strings.TrimLeft(key, "/")
}

func (m *MemoryStore) PutObject(_ context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	key = strings.TrimLeft(key, "/")
	m.mu.Lock()
	m.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType, CacheControl: cacheControl}
	m.mu.Unlock()
	return m.PublicURL(key), nil
}

func (m *MemoryStore) DeleteURL(_ context.Context, raw string) error {
	key, ok := resolveKey(m.base, "", raw)
	if !ok {
		return ErrUnmanagedURL
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[strings.TrimLeft(key, "/")]
	return o, ok
}

func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

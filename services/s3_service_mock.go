package services

import (
	"context"
	"fmt"
	"sync"
)

// MockObjectStore is an in-memory ObjectStore for tests
type MockObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	mu      sync.RWMutex
}

// NewMockObjectStore creates an empty in-memory store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Put stores a copy of body under key
func (m *MockObjectStore) Put(_ context.Context, key, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	m.types[key] = contentType
	return nil
}

// PresignGet returns a fake URL for stored keys
func (m *MockObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("file not found in mock store: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete removes key
func (m *MockObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key has been stored
func (m *MockObjectStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// ContentType returns the content type key was stored with
func (m *MockObjectStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Keys lists every stored key
func (m *MockObjectStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

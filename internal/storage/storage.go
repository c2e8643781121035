// Package storage is the artifact store for report charts and uploads.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Uploader stores artifact bytes and returns a fetchable URL.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MemoryUploader keeps artifacts in memory. Used by tests and by the ask
// mode when no bucket is configured.
type MemoryUploader struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

var _ Uploader = (*MemoryUploader)(nil)

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		BaseURL: "memory://artifacts",
		objects: make(map[string][]byte),
	}
}

func (m *MemoryUploader) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	return fmt.Sprintf("%s/%s", m.BaseURL, key), nil
}

// Get returns a stored artifact, for assertions.
func (m *MemoryUploader) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len reports how many artifacts are stored.
func (m *MemoryUploader) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-process Service used by tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr and SignErr, when set, are returned by the corresponding
	// methods to exercise failure paths.
	UploadErr error
	SignErr   error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Upload(_ context.Context, key, _ string, r io.Reader) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *Memory) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) SignedURL(key string) (string, error) {
	if m.SignErr != nil {
		return "", m.SignErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("https://storage.example.com/%s?sig=test", key), nil
}

// Has reports whether an object exists, for test assertions.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

var _ Service = (*Memory)(nil)

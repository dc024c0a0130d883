package mocks

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/SergeiKhy/linkstack/internal/models"
)

// MockObjectStore implements media.ObjectStore in memory
type MockObjectStore struct {
	failures
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string][]byte)}
}

func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, body io.Reader) error {
	if err := m.hit("Upload"); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath] = data
	return nil
}

func (m *MockObjectStore) Remove(ctx context.Context, objectPaths ...string) error {
	if err := m.hit("Remove"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range objectPaths {
		delete(m.objects, p)
	}
	return nil
}

func (m *MockObjectStore) PublicURL(objectPath string) string {
	return "/media/" + objectPath
}

func (m *MockObjectStore) PathFromURL(url string) (string, bool) {
	p, ok := strings.CutPrefix(url, "/media/")
	return p, ok
}

// Has reports whether an object is stored
func (m *MockObjectStore) Has(objectPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[objectPath]
	return ok
}

// Len returns the number of stored objects
func (m *MockObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// MockGenerator implements theme.Generator with a canned result
type MockGenerator struct {
	failures
	Presets []models.Preset
}

func (m *MockGenerator) Generate(ctx context.Context) ([]models.Preset, error) {
	if err := m.hit("Generate"); err != nil {
		return nil, err
	}
	return m.Presets, nil
}

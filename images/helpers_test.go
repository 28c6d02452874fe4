package images_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"imagestore/images"
	"imagestore/models"
)

// memoryObjects 是記憶體中的物件儲存，failNames 內的檔名會寫入失敗
type memoryObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	failNames map[string]struct{}
	deleted   []string
	deleteErr error

	running    atomic.Int32
	maxRunning atomic.Int32
	block      chan struct{}
}

func newMemoryObjects(failNames ...string) *memoryObjects {
	m := &memoryObjects{
		objects:   make(map[string][]byte),
		types:     make(map[string]string),
		failNames: make(map[string]struct{}),
	}
	for _, name := range failNames {
		m.failNames[name] = struct{}{}
	}
	return m
}

func (m *memoryObjects) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	running := m.running.Add(1)
	defer m.running.Add(-1)
	for {
		current := m.maxRunning.Load()
		if running <= current || m.maxRunning.CompareAndSwap(current, running) {
			break
		}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", errors.Join(images.ErrObjectStore, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.failNames {
		if len(key) >= len(name) && key[len(key)-len(name):] == name {
			return "", fmt.Errorf("bucket unreachable: %w", images.ErrObjectStore)
		}
	}
	m.objects[key] = slices.Clone(content)
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	delete(m.types, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryObjects) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// memoryMetadata 是記憶體中的圖片紀錄，failNames 內的檔名會寫入失敗
type memoryMetadata struct {
	mu        sync.Mutex
	nextID    int64
	rows      []models.Image
	failNames map[string]struct{}
	listErr   error
	inserts   atomic.Int32
}

func newMemoryMetadata(failNames ...string) *memoryMetadata {
	m := &memoryMetadata{failNames: make(map[string]struct{})}
	for _, name := range failNames {
		m.failNames[name] = struct{}{}
	}
	return m
}

func (m *memoryMetadata) Insert(_ context.Context, name, url string) (models.Image, error) {
	m.inserts.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.failNames[name]; ok {
		return models.Image{}, fmt.Errorf("connection refused: %w", images.ErrMetadataStore)
	}
	m.nextID++
	image := models.Image{ID: m.nextID, Name: name, Url: url}
	m.rows = append(m.rows, image)
	return image, nil
}

func (m *memoryMetadata) ListAll(_ context.Context) ([]models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	rows := slices.Clone(m.rows)
	slices.Reverse(rows)
	if rows == nil {
		rows = make([]models.Image, 0)
	}
	return rows, nil
}

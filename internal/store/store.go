package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// KeyValue is the shape of the external configuration collaborator
type KeyValue interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// readJSON into out, a missing file yields the zero value
func readJSON[T any](path string, out *T) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// FileKV is a json file backed key-value store
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (kv *FileKV) Get(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m := map[string]string{}
	if err := readJSON(kv.path, &m); err != nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m := map[string]string{}
	if err := readJSON(kv.path, &m); err != nil {
		return err
	}
	m[key] = value
	return writeJSON(kv.path, m)
}

// FileLog is a json file backed append-only log
type FileLog[T any] struct {
	mu   sync.Mutex
	path string
}

func NewFileLog[T any](path string) *FileLog[T] {
	return &FileLog[T]{path: path}
}

func (l *FileLog[T]) Append(entry T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var entries []T
	if err := readJSON(l.path, &entries); err != nil {
		return err
	}
	entries = append(entries, entry)
	return writeJSON(l.path, entries)
}

func (l *FileLog[T]) List() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var entries []T
	if err := readJSON(l.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *FileLog[T]) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear log: %w", err)
	}
	return nil
}

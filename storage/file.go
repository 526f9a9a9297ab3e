package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileFactory stores each client's slot as a JSON object in <dir>/<clientID>.json.
type FileFactory struct {
	dir string
	mu  sync.Mutex // serialises read-modify-write cycles across slots
}

func NewFileFactory(dir string) (*FileFactory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileFactory{dir: dir}, nil
}

func (f *FileFactory) Slot(clientID string) Slot {
	return &FileSlot{factory: f, clientID: clientID}
}

// FileSlot is a Slot backed by one JSON file.
type FileSlot struct {
	factory  *FileFactory
	clientID string
}

var _ Slot = (*FileSlot)(nil)

func (s *FileSlot) path() (string, error) {
	if !clientIDPattern.MatchString(s.clientID) {
		return "", fmt.Errorf("invalid client id %q", s.clientID)
	}
	return filepath.Join(s.factory.dir, s.clientID+".json"), nil
}

// load returns the stored map; a missing file is an empty map.
func (s *FileSlot) load(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return values, nil
}

// save writes to a temp file and renames it over the target, so readers see
// either the old or the new content.
func (s *FileSlot) save(path string, values map[string]string) error {
	if len(values) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	bytes, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

func (s *FileSlot) Get(key string) ([]byte, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	values, err := s.load(path)
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return []byte(v), nil
}

func (s *FileSlot) Set(key string, value []byte) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	values, err := s.load(path)
	if err != nil {
		// An unreadable file is replaced rather than blocking new writes
		values = map[string]string{}
	}
	values[key] = string(value)
	return s.save(path, values)
}

func (s *FileSlot) Remove(key string) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	values, err := s.load(path)
	if err != nil {
		return s.save(path, nil)
	}
	delete(values, key)
	return s.save(path, values)
}

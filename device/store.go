package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoIdentity is returned by Store.Load when nothing has been saved yet.
var ErrNoIdentity = errors.New("no stored identity")

// Store persists the device identity between runs.
type Store interface {
	Load() (Info, error)
	Save(info Info) error
}

// FileStore keeps the identity in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the identity, returning ErrNoIdentity when the file does not
// exist or holds no device ID.
func (s *FileStore) Load() (Info, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, ErrNoIdentity
		}
		return Info{}, fmt.Errorf("failed to read identity file: %w", err)
	}

	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("failed to parse identity file %s: %w", s.path, err)
	}
	if info.DeviceID == "" {
		return Info{}, ErrNoIdentity
	}
	return info, nil
}

// Save writes the identity, creating parent directories as needed.
func (s *FileStore) Save(info Info) error {
	data, err := yaml.Marshal(&info)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create identity directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// MemoryStore keeps the identity in memory.
type MemoryStore struct {
	mu    sync.Mutex
	info  Info
	saved bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return Info{}, ErrNoIdentity
	}
	return s.info, nil
}

func (s *MemoryStore) Save(info Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.saved = true
	return nil
}

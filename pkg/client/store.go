package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore keeps the bearer token between requests.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemoryStore holds the token for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error { return s.SetToken("") }

// FileStore persists the token in a single 0600 file.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

// DefaultTokenPath is ~/.config/councilctl/token (or the OS equivalent).
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "councilctl", "token")
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		return s.remove()
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token+"\n"), 0o600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove()
}

func (s *FileStore) remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

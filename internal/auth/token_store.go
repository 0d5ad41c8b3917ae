package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the bearer credential under a fixed path. It is
// process-wide state with a single writer (login success or logout) and
// many readers, so reads go through an in-memory copy guarded by mu.
type TokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

func NewTokenStore(path string) *TokenStore {
	s := &TokenStore{path: path}
	if data, err := os.ReadFile(path); err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Token returns the current credential, empty if logged out.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save stores the credential in memory and on disk.
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear drops the credential. Called on logout and on any 401.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	_ = os.Remove(s.path)
}

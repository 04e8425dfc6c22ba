// Package auth implements token discovery and persistence: the storage
// backends, the URL-aware token store, and best-effort JWT expiry
// inspection.
package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/fivetwenty-io/base44-client/internal/constants"
)

// keyringService namespaces SDK entries in the system keychain.
const keyringService = "base44"

// MemoryStorage is a process-local storage backend. It satisfies
// base44.Storage and is the fallback when no persistence is configured.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements base44.Storage.
func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]

	return value, ok
}

// Set implements base44.Storage.
func (s *MemoryStorage) Set(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return true
}

// Remove implements base44.Storage.
func (s *MemoryStorage) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return true
}

// FileStorage persists values as a single JSON file under dir. Writes are
// atomic (temp file + rename) and the file is created with 0600.
type FileStorage struct {
	mu   sync.Mutex
	dir  string
	name string
}

// NewFileStorage creates a file-backed store rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir, name: "tokens.json"}
}

func (s *FileStorage) path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *FileStorage) loadAll() map[string]string {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return make(map[string]string)
	}

	var all map[string]string

	err = json.Unmarshal(data, &all)
	if err != nil || all == nil {
		return make(map[string]string)
	}

	return all
}

func (s *FileStorage) saveAll(all map[string]string) bool {
	err := os.MkdirAll(s.dir, constants.StoreDirPerm)
	if err != nil {
		return false
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return false
	}

	tmpFile, err := os.CreateTemp(s.dir, "tokens-*.json.tmp")
	if err != nil {
		return false
	}

	tmpPath := tmpFile.Name()

	_, err = tmpFile.Write(data)
	if err == nil {
		err = tmpFile.Chmod(constants.StoreFilePerm)
	}

	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpPath)

		return false
	}

	err = os.Rename(tmpPath, s.path())
	if err != nil {
		_ = os.Remove(tmpPath)

		return false
	}

	return true
}

// Get implements base44.Storage.
func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.loadAll()[key]

	return value, ok
}

// Set implements base44.Storage.
func (s *FileStorage) Set(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll()
	all[key] = value

	return s.saveAll(all)
}

// Remove implements base44.Storage.
func (s *FileStorage) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll()
	if _, ok := all[key]; !ok {
		return true
	}

	delete(all, key)

	return s.saveAll(all)
}

// KeyringStorage persists values in the system keychain.
type KeyringStorage struct{}

// NewKeyringStorage creates a keychain-backed store.
func NewKeyringStorage() *KeyringStorage {
	return &KeyringStorage{}
}

// Available reports whether the system keychain accepts writes.
func Available() bool {
	const probeKey = "base44::probe"

	err := keyring.Set(keyringService, probeKey, "probe")
	if err != nil {
		return false
	}

	_ = keyring.Delete(keyringService, probeKey)

	return true
}

// Get implements base44.Storage.
func (s *KeyringStorage) Get(key string) (string, bool) {
	value, err := keyring.Get(keyringService, key)
	if err != nil {
		return "", false
	}

	return value, true
}

// Set implements base44.Storage.
func (s *KeyringStorage) Set(key, value string) bool {
	return keyring.Set(keyringService, key, value) == nil
}

// Remove implements base44.Storage.
func (s *KeyringStorage) Remove(key string) bool {
	err := keyring.Delete(keyringService, key)

	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

// KeyringService groups the session in the OS keychain.
const KeyringService = "careermatch"

const keyringAccount = "session"

// KeyringStore keeps the session in the OS keychain.
type KeyringStore struct {
	Service string
	Account string
}

// NewKeyringStore returns a store using the default service and account.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: KeyringService, Account: keyringAccount}
}

// Load implements Store.
func (k *KeyringStore) Load() (*Session, error) {
	raw, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("keyring read: %w", err)
	}
	return unmarshal([]byte(raw))
}

// Save implements Store.
func (k *KeyringStore) Save(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return keyring.Set(k.Service, k.Account, string(raw))
}

// Clear implements Store.
func (k *KeyringStore) Clear() error {
	err := keyring.Delete(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileStore keeps the session in a JSON file readable only by the owner.
// Concurrent CLI processes are serialized through a sibling lock file.
type FileStore struct {
	Path string
}

// DefaultSessionFile returns the session file under the user config dir.
func DefaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "careermatch", "session.json"), nil
}

func (f *FileStore) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	fl := flock.New(f.Path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock session file: %w", err)
	}
	return fl, nil
}

// Load implements Store.
func (f *FileStore) Load() (*Session, error) {
	fl, err := f.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return unmarshal(raw)
}

// Save implements Store.
func (f *FileStore) Save(s *Session) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory, for tests and per-request use.
type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

// NewMemoryStore returns a store holding s, which may be nil.
func NewMemoryStore(s *Session) *MemoryStore {
	return &MemoryStore{s: s}
}

// Load implements Store.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, ErrNoSession
	}
	cp := *m.s
	return &cp, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

func unmarshal(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("corrupt session: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

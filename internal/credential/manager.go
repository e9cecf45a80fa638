// Package credential keeps the API key for the current session and moves it
// to and from key files.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrNoKey is returned when an operation needs a key and none was entered.
var ErrNoKey = errors.New("API key required")

// ObfuscationWarning is shown whenever a key file is written without a
// passphrase.
const ObfuscationWarning = "warning: key file is only obfuscated, not encrypted; anyone with the file can read the key (use a passphrase to encrypt it)"

// Pinger checks that an API key works.
type Pinger interface {
	Ping(ctx context.Context, apiKey string) error
}

// Manager holds the session's API key. Nothing is persisted unless Save is
// called explicitly.
type Manager struct {
	mu     sync.Mutex
	key    string // applied key
	input  string // candidate key, not yet tested
	pinger Pinger
	logger *log.Logger
}

// NewManager creates a manager that tests keys with p.
func NewManager(p Pinger, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{pinger: p, logger: logger}
}

// Key returns the applied key, or "" if none.
func (m *Manager) Key() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key
}

// SetKey applies key without testing it. Used for keys from trusted
// sources such as the environment.
func (m *Manager) SetKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = strings.TrimSpace(key)
	m.input = m.key
}

// Input returns the candidate key.
func (m *Manager) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// SetInput replaces the candidate key. The applied key is unchanged.
func (m *Manager) SetInput(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = strings.TrimSpace(key)
}

// Save writes the candidate key to path. With a passphrase the key is
// encrypted; without one it is only obfuscated and the returned message
// carries ObfuscationWarning.
func (m *Manager) Save(path, passphrase string) (string, error) {
	key := m.Input()
	if key == "" {
		return "", ErrNoKey
	}

	var (
		content string
		err     error
		msg     = "key saved (encrypted)"
	)
	if passphrase != "" {
		content, err = Seal(key, passphrase)
	} else {
		content, err = Obfuscate(key)
		msg = "key saved\n" + ObfuscationWarning
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write key file: %w", err)
	}
	return msg, nil
}

// LoadFile reads a key file into the candidate key. It never fails: a file
// that cannot be read or decoded yields "" and a message for the user.
func (m *Manager) LoadFile(path, passphrase string) (string, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		m.logger.Debug("key file not read", "path", path, "err", err)
		return "", "could not open key file"
	}
	content := string(data)

	var key string
	switch {
	case IsSealed(content) && passphrase == "":
		return "", "key file is encrypted; a passphrase is required"
	case IsSealed(content):
		key, err = Open(content, passphrase)
	default:
		key, err = Deobfuscate(content)
	}
	if err != nil || strings.TrimSpace(key) == "" {
		m.logger.Debug("key file not decoded", "path", path, "err", err)
		return "", "key file is not valid or is damaged"
	}

	m.SetInput(key)
	return m.Input(), "key loaded; test the connection to apply it"
}

// TestAndApply makes one call with the candidate key. On success the key
// becomes the session key; on failure the previous key stays in place.
func (m *Manager) TestAndApply(ctx context.Context) (bool, string) {
	key := m.Input()
	if key == "" {
		return false, "enter an API key first"
	}
	if m.pinger == nil {
		return false, "no service configured"
	}
	if err := m.pinger.Ping(ctx, key); err != nil {
		m.logger.Warn("connection test failed", "err", err)
		return false, "connection failed; check the API key"
	}

	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
	return true, "connected; key applied"
}

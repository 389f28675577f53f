// Package session stores the login session in session.toml inside the
// .tutor/ directory.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/dotdir"
)

const (
	sessionFile = "session.toml"

	currentVersion = 0

	// TokenEnvVar, when set, supplies the token and takes precedence over
	// the stored session.
	TokenEnvVar = "TUTOR_TOKEN"
)

// ErrNoSession is returned by Current when nobody is logged in.
var ErrNoSession = api.ErrNoSession

// file is the on-disk layout of session.toml.
type file struct {
	Version int         `toml:"version"`
	SavedAt time.Time   `toml:"saved_at"`
	Session api.Session `toml:"session"`
}

// Manager reads and writes session.toml.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a Manager rooted at the override directory, or at the
// standard dotdir resolution when override is empty.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{ddm: dotdir.NewManager()}

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}
	mgr.targetPath = filepath.Join(target, sessionFile)

	return mgr, nil
}

// Login stores s, replacing any previous session.
func (m *Manager) Login(s api.Session) error {
	if !s.Valid() {
		return errors.New("cannot store a session without a token")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(file{
		Version: currentVersion,
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Session: s,
	}); err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Logout removes the stored session. It is not an error to log out twice.
func (m *Manager) Logout() error {
	if err := os.Remove(m.targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Current returns the active session: the TUTOR_TOKEN environment variable
// if set, otherwise session.toml. It returns ErrNoSession when neither
// yields a token.
func (m *Manager) Current() (api.Session, error) {
	if tok := os.Getenv(TokenEnvVar); tok != "" {
		return api.Session{Token: tok}, nil
	}

	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.Session{}, ErrNoSession
		}
		return api.Session{}, fmt.Errorf("reading session: %w", err)
	}

	f := &file{}
	if err := toml.Unmarshal(data, f); err != nil {
		return api.Session{}, fmt.Errorf("parsing session: %w", err)
	}
	if f.Version != currentVersion {
		return api.Session{}, fmt.Errorf("unsupported session version %d (expected %d)", f.Version, currentVersion)
	}
	if !f.Session.Valid() {
		return api.Session{}, ErrNoSession
	}

	return f.Session, nil
}

// GetTarget returns the resolved path to session.toml.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

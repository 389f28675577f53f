package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	activeFile = "active.json"
)

// ActiveConversation points at the conversation that "tutor chat" resumes
// when no --conversation flag is given.
type ActiveConversation struct {
	// SessionID is the server-side conversation identifier.
	SessionID string `json:"sessionId"`

	// Title is the display title at the time the conversation was selected.
	Title string `json:"title,omitempty"`

	// Model is the model the conversation was last used with.
	Model string `json:"model,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// LoadActive loads the active conversation from a target .tutor/active.json.
// Returns nil, nil if no conversation is active.
func (m *Manager) LoadActive(overrideDir string) (*ActiveConversation, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, activeFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading active conversation: %w", err)
	}

	active := &ActiveConversation{}
	if err := json.Unmarshal(data, active); err != nil {
		return nil, fmt.Errorf("parsing active conversation: %w", err)
	}
	if active.SessionID == "" {
		return nil, nil
	}

	return active, nil
}

// SaveActive persists the active conversation to a target .tutor/active.json.
func (m *Manager) SaveActive(active *ActiveConversation, overrideDir string) error {
	if active == nil || active.SessionID == "" {
		return errors.New("cannot save active conversation without a session id")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling active conversation: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, activeFile), data, 0o600); err != nil {
		return fmt.Errorf("writing active conversation: %w", err)
	}

	return nil
}

// ClearActive removes the active conversation pointer so the next chat
// starts a new conversation. Returns nil if nothing was active.
func (m *Manager) ClearActive(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, activeFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing active conversation: %w", err)
	}

	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

const sessionFile = "session.yaml"

// SessionStore persists session state alongside the other artifacts under
// the data directory.
type SessionStore struct {
	dataDir string
}

// NewSessionStore returns a store rooted at dataDir.
func NewSessionStore(dataDir string) *SessionStore {
	return &SessionStore{dataDir: dataDir}
}

// Load reads the persisted session. A missing file is a fresh session, not
// an error (R1.2).
func (s *SessionStore) Load() (*types.Session, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return &types.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess types.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &sess, nil
}

// Save writes the session, creating the data directory if needed.
func (s *SessionStore) Save(sess *types.Session) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o644); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dataDir, sessionFile)
}

// Reset removes the entire data directory: discovery results, extracted
// papers, the index, and the session. The next run starts from nothing
// (R1.4).
func Reset(dataDir string) error {
	if err := os.RemoveAll(dataDir); err != nil {
		return fmt.Errorf("removing data directory: %w", err)
	}
	return nil
}

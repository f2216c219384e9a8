// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/research-agent/pkg/types"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore(t.TempDir())

	sess, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if sess.KBReady || len(sess.Turns) != 0 {
		t.Errorf("fresh session = %+v", sess)
	}

	sess.KBReady = true
	sess.Append("user", "/analysis what about GNNs?")
	sess.Append("assistant", "# Analysis")
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.KBReady {
		t.Error("KBReady not persisted")
	}
	if len(loaded.Turns) != 2 || loaded.Turns[0].Role != "user" || loaded.Turns[1].Content != "# Analysis" {
		t.Errorf("turns = %+v", loaded.Turns)
	}
}

func TestSessionSaveCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	store := NewSessionStore(dataDir)

	if err := store.Save(&types.Session{KBReady: true}); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.KBReady {
		t.Error("session not readable back")
	}
}

func TestReset(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	store := NewSessionStore(dataDir)
	if err := store.Save(&types.Session{KBReady: true}); err != nil {
		t.Fatal(err)
	}

	if err := Reset(dataDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Error("data directory still exists after reset")
	}

	// Reset of an already-missing directory succeeds.
	if err := Reset(dataDir); err != nil {
		t.Errorf("second reset: %v", err)
	}
}

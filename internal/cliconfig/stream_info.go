package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultManifestName is the recorder's manifest file in the source
	// directory, written by recorders that know their stream identity.
	DefaultManifestName = "recording.json"

	streamIDFileName = "stream_id"
)

// LoadStreamInfo fills in the StreamID when the config does not carry one.
// The recorder's manifest in the source directory wins; otherwise an
// identity is generated once and persisted in the state directory so
// restarts ship under the same stream.
func LoadStreamInfo(cfg *Config) error {
	if cfg.StreamID != "" {
		return nil
	}

	if cfg.SourceDir != "" {
		id, err := readManifestStreamID(cfg.SourceDir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read recording manifest: %w", err)
		}
		if id != "" {
			cfg.StreamID = id
			return nil
		}
	}

	if cfg.StateDir == "" {
		return fmt.Errorf("stream-id is required (or state-dir)")
	}
	id, err := loadOrCreateStreamID(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("derive stream id: %w", err)
	}
	cfg.StreamID = id
	return nil
}

func readManifestStreamID(sourceDir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(sourceDir, DefaultManifestName))
	if err != nil {
		return "", err
	}
	var m recordingManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return "", err
	}
	return m.RecordingID, nil
}

// loadOrCreateStreamID returns the persisted stream identity, generating
// and saving a fresh one on first use.
func loadOrCreateStreamID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, streamIDFileName)

	if b, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	id := uuid.NewString()
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}

type recordingManifest struct {
	RecordingID string `json:"recording_id"`
}

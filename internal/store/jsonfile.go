package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/optipresta/optipresta/internal/contract"
)

const (
	backupSuffix = ".bak"
	tmpSuffix    = ".tmp"
)

// fileDocument is the on-disk shape. The original tool wrote a bare array
// under a fixed key with no versioning; the envelope guards against a
// future shape change silently corrupting older installs.
type fileDocument struct {
	SchemaVersion string           `json:"schema_version"`
	Events        []contract.Event `json:"events"`
}

type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load(_ context.Context) ([]contract.Event, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Pre-versioning installs persisted a bare array.
		var legacy []contract.Event
		if lerr := json.Unmarshal(raw, &legacy); lerr == nil {
			return legacy, nil
		}
		return nil, fmt.Errorf("decode store %s: %w", s.path, err)
	}
	if doc.SchemaVersion != "" && doc.SchemaVersion != contract.SchemaVersion {
		return nil, fmt.Errorf("store %s has schema %s, this build reads %s", s.path, doc.SchemaVersion, contract.SchemaVersion)
	}
	return doc.Events, nil
}

func (s *JSONStore) Replace(_ context.Context, events []contract.Event) error {
	if events == nil {
		events = []contract.Event{}
	}
	data, err := json.MarshalIndent(fileDocument{SchemaVersion: contract.SchemaVersion, Events: events}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	// Write the temp file before touching the live one so a failed write
	// leaves the current collection intact.
	tmp := s.path + tmpSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		// Keep one generation back in case the rename below half-lands on
		// an odd filesystem.
		_ = os.Rename(s.path, s.path+backupSuffix)
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONStore) Close() error { return nil }

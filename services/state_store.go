package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// assignmentState is the on-disk shape of the state file.
type assignmentState struct {
	Assignments map[string]string `json:"assignments"`
}

/**
 * StateStore persists SDR assignments across keeper restarts
 * @property {string} path - JSON file, written atomically
 * @description
 * - An empty path disables persistence
 */
type StateStore struct {
	path  string
	mutex sync.Mutex
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load returns the saved assignments, an empty map when the file does not exist yet.
func (s *StateStore) Load() (map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}
	var st assignmentState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("state: decode %s: %w", s.path, err)
	}
	if st.Assignments == nil {
		st.Assignments = map[string]string{}
	}
	return st.Assignments, nil
}

// Save replaces the state file with the given assignments.
func (s *StateStore) Save(assignments map[string]string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(assignmentState{Assignments: assignments}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("state: write %s: %w", s.path, err)
	}
	return nil
}

package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileRecord is one imported file.
type FileRecord struct {
	Path       string    `json:"path"`
	SHA256     string    `json:"sha256"`
	Pairs      int       `json:"pairs"`
	Inserted   int       `json:"inserted"`
	ImportedAt time.Time `json:"imported_at"`
}

// State tracks progress for resumable import runs.
type State struct {
	StartedAt       time.Time    `json:"started_at"`
	LastProcessedAt time.Time    `json:"last_processed_at"`
	Files           []FileRecord `json:"files"`
	Errors          []string     `json:"errors"`

	path string // not serialized
}

// LoadState loads the import state from path, or starts a new one.
func LoadState(path string) (*State, error) {
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Path is the expanded location of the state file.
func (s *State) Path() string {
	return s.path
}

// Save persists the state to disk.
func (s *State) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// IsProcessed reports whether content with this digest was already
// imported, under any path.
func (s *State) IsProcessed(sum string) bool {
	for _, f := range s.Files {
		if f.SHA256 == sum {
			return true
		}
	}
	return false
}

// MarkProcessed records a file, replacing an earlier record for the same
// path.
func (s *State) MarkProcessed(rec FileRecord) {
	for i, f := range s.Files {
		if f.Path == rec.Path {
			s.Files[i] = rec
			return
		}
	}
	s.Files = append(s.Files, rec)
}

// AddError records a processing error.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Package resume records which tool invocations of a run have finished so
// an interrupted run can pick up where it stopped.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry identifies one tool run against one target.
type Entry struct {
	Tool string `json:"tool"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// State is the on-disk progress of a run against LogFile.
type State struct {
	LogFile   string  `json:"log_file"`
	Completed []Entry `json:"completed"`

	path string
	done map[Entry]bool
}

// New returns an empty state that Save writes to path.
func New(path, logFile string) *State {
	return &State{
		LogFile:   logFile,
		Completed: []Entry{},
		path:      path,
		done:      make(map[Entry]bool),
	}
}

// Load reads the state at path. A missing file yields a nil state and no
// error.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	s := New(path, "")
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing resume file: %w", err)
	}
	for _, e := range s.Completed {
		s.done[e] = true
	}
	return s, nil
}

func (s *State) IsCompleted(e Entry) bool {
	return s.done[e]
}

// MarkCompleted records e once; repeated calls are ignored.
func (s *State) MarkCompleted(e Entry) {
	if s.done[e] {
		return
	}
	s.done[e] = true
	s.Completed = append(s.Completed, e)
}

// Save replaces the state file atomically: the new content goes to a
// temporary file in the same directory which is then renamed over path.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing resume state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating resume temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing resume state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing resume state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing resume file: %w", err)
	}
	return nil
}

// Remove deletes the state file once the run has completed.
func (s *State) Remove() error {
	return os.Remove(s.path)
}

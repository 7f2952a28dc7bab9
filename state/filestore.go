package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/mitchellh/go-homedir"
)

// DefaultPath is the default location of the run state record.
const DefaultPath = "/var/lib/jetson-install/state.json"

// FileStore is a Store backed by a JSON file. The file is written with mode
// 0600 so only the privileged user can alter the resume position.
type FileStore struct {
	log.LoggerInjectable
	path string
}

// NewFileStore returns a FileStore for the given path. An empty path selects
// DefaultPath. A leading ~ is expanded to the current user's home directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand state path: %w", err)
	}
	return &FileStore{path: expanded}, nil
}

// Path returns the location of the record.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load() (*RunState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("read run state: %w", err)
	}
	rs := &RunState{}
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if rs.NextStepID == "" {
		return nil, fmt.Errorf("%w: record has no next step id", ErrCorrupt)
	}
	return rs, nil
}

// Save implements Store. The record is written to a temporary file in the
// same directory and renamed into place so a crash mid-write never leaves a
// partial record.
func (s *FileStore) Save(rs *RunState) error {
	if rs.CreatedAt.IsZero() {
		rs.CreatedAt = time.Now()
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temporary state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write run state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace run state: %w", err)
	}
	s.Log().Debug("saved run state", log.KeyFile, s.path, log.KeyStep, rs.NextStepID)
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove run state: %w", err)
	}
	return nil
}

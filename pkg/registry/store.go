// Package registry provides typed access to the per-title JSON registry
// documents the emulator reads: the updates registry and the DLC container
// registry.
//
// Reads tolerate a missing file as an empty collection. Writes are
// pretty-printed whole-file replacements, never partial edits, so a crash
// mid-operation leaves stale but valid prior content rather than malformed
// JSON.
package registry

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sassoanarchico/titlesync/pkg/errors"
	"github.com/sassoanarchico/titlesync/pkg/logging"
	"github.com/sassoanarchico/titlesync/pkg/types"
)

const (
	// UpdatesFileName is the updates registry document
	UpdatesFileName = "updates.json"

	// DLCFileName is the DLC container registry document
	DLCFileName = "dlc.json"
)

// Store reads and writes the registry documents of one per-title directory
// at a time through a types.FS
type Store struct {
	fs types.FS
}

// NewStore creates a Store backed by the given filesystem
func NewStore(fsys types.FS) *Store {
	return &Store{fs: fsys}
}

// ReadUpdates loads the updates registry from dir. A missing file yields an
// empty registry; malformed JSON yields a MALFORMED_REGISTRY error.
func (s *Store) ReadUpdates(dir string) (*Updates, error) {
	path := filepath.Join(dir, UpdatesFileName)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Updates{Paths: []string{}}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", path)
	}

	var u Updates
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedRegistry, "malformed updates registry %s", path)
	}
	if u.Paths == nil {
		u.Paths = []string{}
	}
	return &u, nil
}

// WriteUpdates replaces the updates registry in dir
func (s *Store) WriteUpdates(dir string, u *Updates) error {
	if u.Paths == nil {
		u.Paths = []string{}
	}
	return s.writeDocument(filepath.Join(dir, UpdatesFileName), u)
}

// DeleteUpdates removes the updates registry file from dir, tolerating an
// already-absent file
func (s *Store) DeleteUpdates(dir string) error {
	return s.deleteDocument(filepath.Join(dir, UpdatesFileName))
}

// ReadDLC loads the DLC container registry from dir. A missing file yields
// an empty list; malformed JSON yields a MALFORMED_REGISTRY error.
func (s *Store) ReadDLC(dir string) ([]DLCContainer, error) {
	path := filepath.Join(dir, DLCFileName)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []DLCContainer{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", path)
	}

	var list []DLCContainer
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedRegistry, "malformed DLC registry %s", path)
	}
	if list == nil {
		list = []DLCContainer{}
	}
	return list, nil
}

// WriteDLC replaces the DLC container registry in dir
func (s *Store) WriteDLC(dir string, list []DLCContainer) error {
	if list == nil {
		list = []DLCContainer{}
	}
	return s.writeDocument(filepath.Join(dir, DLCFileName), list)
}

// DeleteDLC removes the DLC registry file from dir, tolerating an
// already-absent file
func (s *Store) DeleteDLC(dir string) error {
	return s.deleteDocument(filepath.Join(dir, DLCFileName))
}

func (s *Store) writeDocument(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to marshal %s", path)
	}
	data = append(data, '\n')

	if err := s.fs.WriteFile(path, data, fs.FileMode(0644)); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryWrite, "failed to write %s", path)
	}

	logger := logging.GetLogger("registry")
	logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Wrote registry document")
	return nil
}

func (s *Store) deleteDocument(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to delete %s", path)
	}
	return nil
}

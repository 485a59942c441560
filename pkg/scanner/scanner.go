// Package scanner walks an installed folder tree and classifies the package
// files the registries do not yet know about.
package scanner

import (
	"path/filepath"
	"strings"

	"github.com/sassoanarchico/titlesync/pkg/logging"
	"github.com/sassoanarchico/titlesync/pkg/pfs"
	"github.com/sassoanarchico/titlesync/pkg/registry"
	"github.com/sassoanarchico/titlesync/pkg/titleid"
	"github.com/sassoanarchico/titlesync/pkg/types"
)

// DefaultPackageExtensions matches package-archive files during discovery
var DefaultPackageExtensions = []string{".nsp"}

// Scanner discovers unregistered package files under a folder tree
type Scanner struct {
	fs        types.FS
	inspector *pfs.Inspector

	// PackageExtensions are compared case-insensitively against filenames
	PackageExtensions []string
}

// NewScanner creates a Scanner using the given filesystem and archive
// inspector
func NewScanner(fsys types.FS, inspector *pfs.Inspector) *Scanner {
	return &Scanner{
		fs:                fsys,
		inspector:         inspector,
		PackageExtensions: DefaultPackageExtensions,
	}
}

// Candidate is one package file found under the scanned tree
type Candidate struct {
	Path       string
	ID         titleid.ID
	HasID      bool
	Version    int
	IsUpdate   bool
	NumEntries int
	SkipReason string
}

// DiscoverResult reports what a discovery pass would add to the registries
type DiscoverResult struct {
	AddedUpdates []string
	AddedDLC     []registry.DLCContainer
	Skipped      []Candidate
}

// Empty reports whether the pass found nothing to add
func (r *DiscoverResult) Empty() bool {
	return len(r.AddedUpdates) == 0 && len(r.AddedDLC) == 0
}

// Discover enumerates package files under root, excluding baseFilename, and
// returns the update paths and DLC containers not yet present in the given
// registries. Classification relative to baseID: updates must satisfy the
// strict update predicate; everything else, including files with no
// parseable title ID, is treated as a DLC candidate so ambiguous content is
// still surfaced to the emulator. Per-candidate failures are logged and
// skipped, never fatal.
func (s *Scanner) Discover(root, baseFilename string, baseID titleid.TitleID, updates *registry.Updates, dlc []registry.DLCContainer) (*DiscoverResult, error) {
	logger := logging.GetLogger("scanner")

	files, err := s.findPackages(root, baseFilename)
	if err != nil {
		return nil, err
	}

	result := &DiscoverResult{}
	for _, path := range files {
		name := filepath.Base(path)
		id, hasID := titleid.Extract(name)

		if hasID && titleid.IsUpdate(id.Value, baseID) {
			if updates.ContainsPath(path) || containsFold(result.AddedUpdates, path) {
				continue
			}
			result.AddedUpdates = append(result.AddedUpdates, path)
			logger.Info().
				Str("path", path).
				Int("version", titleid.ExtractVersion(name)).
				Msg("Discovered update package")
			continue
		}

		// DLC is the catch-all classification
		if registry.ContainsContainer(dlc, path) || registry.ContainsContainer(result.AddedDLC, path) {
			continue
		}

		if !hasID {
			logger.Warn().Str("path", path).Msg("Skipping package with no parseable title ID")
			result.Skipped = append(result.Skipped, Candidate{Path: path, SkipReason: "no title ID"})
			continue
		}

		entries, err := s.inspector.ListContentEntries(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping package, archive inspection failed")
			result.Skipped = append(result.Skipped, Candidate{Path: path, ID: id, HasID: true, SkipReason: "inspection failed"})
			continue
		}
		if len(entries) == 0 {
			logger.Warn().Str("path", path).Msg("Skipping package with no content entries")
			result.Skipped = append(result.Skipped, Candidate{Path: path, ID: id, HasID: true, SkipReason: "no content entries"})
			continue
		}

		container := registry.DLCContainer{Path: path}
		for _, entry := range entries {
			container.DLCNcaList = append(container.DLCNcaList, registry.DLCContentEntry{
				Path:      "/" + entry,
				TitleID:   uint64(id.Value),
				IsEnabled: true,
			})
		}
		result.AddedDLC = append(result.AddedDLC, container)

		logger.Info().
			Str("path", path).
			Str("titleId", id.Value.String()).
			Bool("approximate", id.Approximate).
			Int("entries", len(entries)).
			Msg("Discovered DLC container")
	}

	return result, nil
}

// Scan classifies every package file under root without consulting or
// mutating any registry. Used by the read-only scan report.
func (s *Scanner) Scan(root, baseFilename string, baseID titleid.TitleID) ([]Candidate, error) {
	files, err := s.findPackages(root, baseFilename)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, path := range files {
		name := filepath.Base(path)
		c := Candidate{Path: path}
		c.ID, c.HasID = titleid.Extract(name)
		c.Version = titleid.ExtractVersion(name)
		if c.HasID && titleid.IsUpdate(c.ID.Value, baseID) {
			c.IsUpdate = true
		} else if c.HasID {
			if entries, err := s.inspector.ListContentEntries(path); err == nil {
				c.NumEntries = len(entries)
			} else {
				c.SkipReason = "inspection failed"
			}
		} else {
			c.SkipReason = "no title ID"
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// findPackages recursively enumerates package files under root, excluding
// the base content filename. Unreadable subdirectories are logged and
// skipped; an unreadable root is an error.
func (s *Scanner) findPackages(root, baseFilename string) ([]string, error) {
	logger := logging.GetLogger("scanner")

	var files []string
	var walk func(dir string, isRoot bool) error
	walk = func(dir string, isRoot bool) error {
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			if isRoot {
				return err
			}
			logger.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory")
			return nil
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := walk(path, false); err != nil {
					return err
				}
				continue
			}
			if !s.isPackageFile(entry.Name()) {
				continue
			}
			if strings.EqualFold(entry.Name(), baseFilename) {
				continue
			}
			files = append(files, path)
		}
		return nil
	}

	if err := walk(root, true); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) isPackageFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.PackageExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func containsFold(list []string, path string) bool {
	for _, p := range list {
		if strings.EqualFold(p, path) {
			return true
		}
	}
	return false
}

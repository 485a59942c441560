// Package reconcile sequences registry reconciliation: rewrite-then-discover
// on registration, prefix-scoped deletion on deregistration.
//
// Every phase is best-effort and independently fault tolerant. A malformed
// updates registry never blocks DLC reconciliation and vice versa;
// per-candidate archive failures are logged and skipped. Callers must
// serialize operations for the same base title ID; operations on different
// titles are independent.
package reconcile

import (
	"os"
	"strings"

	"github.com/sassoanarchico/titlesync/pkg/errors"
	"github.com/sassoanarchico/titlesync/pkg/logging"
	"github.com/sassoanarchico/titlesync/pkg/paths"
	"github.com/sassoanarchico/titlesync/pkg/registry"
	"github.com/sassoanarchico/titlesync/pkg/rewrite"
	"github.com/sassoanarchico/titlesync/pkg/scanner"
	"github.com/sassoanarchico/titlesync/pkg/titleid"
	"github.com/sassoanarchico/titlesync/pkg/types"
)

// Engine reconciles the per-title registries against the on-disk location
// of game content
type Engine struct {
	fs      types.FS
	store   *registry.Store
	scanner *scanner.Scanner
	paths   paths.Paths
}

// NewEngine creates an Engine operating through the given filesystem,
// store, scanner, and path resolver
func NewEngine(fsys types.FS, store *registry.Store, sc *scanner.Scanner, p paths.Paths) *Engine {
	return &Engine{fs: fsys, store: store, scanner: sc, paths: p}
}

// RewriteResult reports what the rewrite phase changed for one registry
type RewriteResult struct {
	Added int
	Err   error
}

// RegisterResult reports the outcome of a registration
type RegisterResult struct {
	TitleID          titleid.ID
	UpdatesRewritten RewriteResult
	DLCRewritten     RewriteResult
	Discovered       *scanner.DiscoverResult
	Selected         string
}

// DeregisterResult reports the outcome of a deregistration
type DeregisterResult struct {
	TitleID        titleid.TitleID
	RemovedUpdates int
	RemovedDLC     int
}

// Register reconciles the registries after content moved from srcDir to
// dstDir. baseFilename is the base content file; its title ID names the
// registry directory. The file copy must already be complete.
func (e *Engine) Register(srcDir, dstDir, baseFilename string) (*RegisterResult, error) {
	logger := logging.GetLogger("reconcile")

	id, ok := titleid.Extract(baseFilename)
	if !ok {
		return nil, errors.Newf(errors.ErrMissingTitleID, "no title ID in base filename %q", baseFilename).
			WithDetail("filename", baseFilename)
	}

	dir := e.paths.TitleDir(id.Value)
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create registry directory %s", dir)
	}

	logger.Info().
		Str("titleId", id.Value.String()).
		Bool("approximate", id.Approximate).
		Str("src", srcDir).
		Str("dst", dstDir).
		Msg("Registering title")

	result := &RegisterResult{TitleID: id}
	rewriter := rewrite.NewRewriter(srcDir, dstDir)

	// Phase 1: clone previously-known entries onto their new paths. Cloning
	// preserves metadata the engine cannot recompute without keys.
	updates, updatesOK := e.rewriteUpdates(dir, rewriter, result)
	dlc, dlcOK := e.rewriteDLC(dir, rewriter, result)

	// Phase 2: discover packages the registries do not know yet.
	e.discover(dir, dstDir, baseFilename, id.Value, updates, updatesOK, dlc, dlcOK, result)

	if updates != nil {
		result.Selected = updates.Selected
	}
	return result, nil
}

// rewriteUpdates runs the rewrite phase over the updates registry. Returns
// the in-memory registry for phase 2, or nil with ok == false when the
// registry could not be read.
func (e *Engine) rewriteUpdates(dir string, rewriter *rewrite.Rewriter, result *RegisterResult) (*registry.Updates, bool) {
	logger := logging.GetLogger("reconcile")

	updates, err := e.store.ReadUpdates(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Skipping updates rewrite, registry unreadable")
		result.UpdatesRewritten.Err = err
		return nil, false
	}

	var rewritten []string
	for _, old := range updates.Paths {
		newPath, strategy, ok := rewriter.Rewrite(old)
		if !ok {
			continue
		}
		if updates.ContainsPath(newPath) {
			continue
		}
		updates.Paths = append(updates.Paths, newPath)
		rewritten = append(rewritten, newPath)
		logger.Debug().
			Str("old", old).
			Str("new", newPath).
			Str("strategy", string(strategy)).
			Msg("Rewrote update path")
	}

	if len(rewritten) > 0 {
		updates.Selected = highestVersion(rewritten)
		if err := e.store.WriteUpdates(dir, updates); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("Failed to write updates registry after rewrite")
			result.UpdatesRewritten.Err = err
			return updates, true
		}
		result.UpdatesRewritten.Added = len(rewritten)
	}
	return updates, true
}

// rewriteDLC runs the rewrite phase over the DLC registry, cloning content
// entry lists unchanged
func (e *Engine) rewriteDLC(dir string, rewriter *rewrite.Rewriter, result *RegisterResult) ([]registry.DLCContainer, bool) {
	logger := logging.GetLogger("reconcile")

	dlc, err := e.store.ReadDLC(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Skipping DLC rewrite, registry unreadable")
		result.DLCRewritten.Err = err
		return nil, false
	}

	added := 0
	for _, container := range dlc {
		newPath, strategy, ok := rewriter.Rewrite(container.Path)
		if !ok {
			continue
		}
		if registry.ContainsContainer(dlc, newPath) {
			continue
		}
		clone := registry.DLCContainer{Path: newPath}
		clone.DLCNcaList = append(clone.DLCNcaList, container.DLCNcaList...)
		dlc = append(dlc, clone)
		added++
		logger.Debug().
			Str("old", container.Path).
			Str("new", newPath).
			Str("strategy", string(strategy)).
			Msg("Rewrote DLC container path")
	}

	if added > 0 {
		if err := e.store.WriteDLC(dir, dlc); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("Failed to write DLC registry after rewrite")
			result.DLCRewritten.Err = err
			return dlc, true
		}
		result.DLCRewritten.Added = added
	}
	return dlc, true
}

// discover runs the discovery phase against dstDir and merges the additions
// into whichever registries were readable
func (e *Engine) discover(dir, dstDir, baseFilename string, baseID titleid.TitleID, updates *registry.Updates, updatesOK bool, dlc []registry.DLCContainer, dlcOK bool, result *RegisterResult) {
	logger := logging.GetLogger("reconcile")

	scanUpdates := updates
	if scanUpdates == nil {
		scanUpdates = &registry.Updates{}
	}

	discovered, err := e.scanner.Discover(dstDir, baseFilename, baseID, scanUpdates, dlc)
	if err != nil {
		logger.Error().Err(err).Str("dst", dstDir).Msg("Discovery scan failed")
		result.Discovered = &scanner.DiscoverResult{}
		return
	}
	result.Discovered = discovered

	if updatesOK {
		selectedBefore := updates.Selected
		updates.Paths = append(updates.Paths, discovered.AddedUpdates...)

		// Recompute selection over every registered path under the
		// destination, not just the new ones: a path added in phase 1 may
		// carry a higher version than anything discovered here.
		if len(discovered.AddedUpdates) > 0 || selectedBefore == "" {
			var underDst []string
			for _, p := range updates.Paths {
				if rewrite.HasPrefixFold(p, dstDir) {
					underDst = append(underDst, p)
				}
			}
			if len(underDst) > 0 {
				updates.Selected = highestVersion(underDst)
			}
		}

		if len(discovered.AddedUpdates) > 0 || updates.Selected != selectedBefore {
			if err := e.store.WriteUpdates(dir, updates); err != nil {
				logger.Error().Err(err).Str("dir", dir).Msg("Failed to write updates registry after discovery")
			}
		}
	} else if len(discovered.AddedUpdates) > 0 {
		logger.Warn().
			Int("count", len(discovered.AddedUpdates)).
			Msg("Discovered updates not recorded, updates registry was unreadable")
	}

	if dlcOK {
		if len(discovered.AddedDLC) > 0 {
			dlc = append(dlc, discovered.AddedDLC...)
			if err := e.store.WriteDLC(dir, dlc); err != nil {
				logger.Error().Err(err).Str("dir", dir).Msg("Failed to write DLC registry after discovery")
			}
		}
	} else if len(discovered.AddedDLC) > 0 {
		logger.Warn().
			Int("count", len(discovered.AddedDLC)).
			Msg("Discovered DLC not recorded, DLC registry was unreadable")
	}
}

// Deregister removes every registry entry pointing inside installedDir,
// leaving unrelated entries untouched. Registry files whose collection
// becomes empty are deleted entirely.
func (e *Engine) Deregister(installedDir, baseFilename string) (*DeregisterResult, error) {
	logger := logging.GetLogger("reconcile")

	id, ok := titleid.Extract(baseFilename)
	if !ok {
		logger.Warn().Str("filename", baseFilename).Msg("No title ID in base filename, nothing to deregister")
		return &DeregisterResult{}, nil
	}

	dir := e.paths.TitleDir(id.Value)
	if _, err := e.fs.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("dir", dir).Msg("No registry directory, nothing to deregister")
			return &DeregisterResult{TitleID: id.Value}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to stat registry directory %s", dir)
	}

	logger.Info().
		Str("titleId", id.Value.String()).
		Str("installedDir", installedDir).
		Msg("Deregistering title")

	result := &DeregisterResult{TitleID: id.Value}
	e.deregisterUpdates(dir, installedDir, result)
	e.deregisterDLC(dir, installedDir, result)
	return result, nil
}

func (e *Engine) deregisterUpdates(dir, installedDir string, result *DeregisterResult) {
	logger := logging.GetLogger("reconcile")

	updates, err := e.store.ReadUpdates(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Skipping updates deregistration, registry unreadable")
		return
	}

	kept := updates.Paths[:0]
	removed := 0
	selectedRemoved := false
	for _, p := range updates.Paths {
		if rewrite.HasPrefixFold(p, installedDir) {
			removed++
			if updates.Selected != "" && strings.EqualFold(p, updates.Selected) {
				selectedRemoved = true
			}
			continue
		}
		kept = append(kept, p)
	}
	if removed == 0 {
		return
	}
	updates.Paths = kept
	result.RemovedUpdates = removed

	if updates.IsEmpty() {
		if err := e.store.DeleteUpdates(dir); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("Failed to delete empty updates registry")
		}
		return
	}

	if selectedRemoved {
		updates.Selected = updates.Paths[len(updates.Paths)-1]
	}
	if err := e.store.WriteUpdates(dir, updates); err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Failed to write updates registry after deregistration")
	}
}

func (e *Engine) deregisterDLC(dir, installedDir string, result *DeregisterResult) {
	logger := logging.GetLogger("reconcile")

	dlc, err := e.store.ReadDLC(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Skipping DLC deregistration, registry unreadable")
		return
	}

	kept := dlc[:0]
	removed := 0
	for _, container := range dlc {
		if rewrite.HasPrefixFold(container.Path, installedDir) {
			removed++
			continue
		}
		kept = append(kept, container)
	}
	if removed == 0 {
		return
	}
	result.RemovedDLC = removed

	if len(kept) == 0 {
		if err := e.store.DeleteDLC(dir); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("Failed to delete empty DLC registry")
		}
		return
	}
	if err := e.store.WriteDLC(dir, kept); err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Failed to write DLC registry after deregistration")
	}
}

// highestVersion returns the path with the highest bracketed version token,
// ties resolved in favor of the later entry
func highestVersion(paths []string) string {
	best := paths[0]
	bestVersion := titleid.ExtractVersion(best)
	for _, p := range paths[1:] {
		if v := titleid.ExtractVersion(p); v >= bestVersion {
			best = p
			bestVersion = v
		}
	}
	return best
}

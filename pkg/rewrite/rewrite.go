// Package rewrite computes new registry paths for entries whose content
// moved from one folder tree to another.
//
// Registry entries are opaque absolute path strings written by the emulator
// or an earlier run, possibly with a different separator convention than the
// host, so all matching here is plain string work over both separator kinds
// rather than filepath calls.
package rewrite

import (
	"strings"

	"github.com/sassoanarchico/titlesync/pkg/logging"
)

// Strategy identifies which matching strategy produced a rewrite
type Strategy string

const (
	// StrategyPrefix replaced the source-root prefix with the destination root
	StrategyPrefix Strategy = "prefix"

	// StrategyFolderName relocated the path by its leaf folder-name segment
	StrategyFolderName Strategy = "folder-name"
)

// Rewriter maps old registry paths from a source folder tree onto a
// destination folder tree
type Rewriter struct {
	src     string
	dst     string
	srcLeaf string
}

// NewRewriter creates a Rewriter for a completed src -> dst move
func NewRewriter(src, dst string) *Rewriter {
	return &Rewriter{
		src:     src,
		dst:     dst,
		srcLeaf: leafName(src),
	}
}

// Rewrite returns the relocated path for oldPath and the strategy that
// matched. Paths belonging to a different install match neither strategy and
// are reported unchanged with ok == false.
func (r *Rewriter) Rewrite(oldPath string) (string, Strategy, bool) {
	if newPath, ok := r.rewritePrefix(oldPath); ok {
		return newPath, StrategyPrefix, true
	}
	if newPath, ok := r.rewriteFolderName(oldPath); ok {
		return newPath, StrategyFolderName, true
	}
	return oldPath, "", false
}

// rewritePrefix substitutes the source-folder prefix with the destination
// folder, preserving the remainder verbatim
func (r *Rewriter) rewritePrefix(oldPath string) (string, bool) {
	if !HasPrefixFold(oldPath, r.src) {
		return "", false
	}
	return r.dst + oldPath[len(r.src):], true
}

// rewriteFolderName locates the source folder's terminal name as a
// separator-bounded segment anywhere in the old path and appends everything
// after it to the destination. This recovers entries whose root changed
// independently of the configured source path (a removable drive letter, for
// example) as long as the leaf folder name is unchanged.
func (r *Rewriter) rewriteFolderName(oldPath string) (string, bool) {
	if r.srcLeaf == "" {
		return "", false
	}

	idx := indexSegmentFold(oldPath, r.srcLeaf)
	if idx < 0 {
		return "", false
	}

	remainder := oldPath[idx+len(r.srcLeaf):]
	if remainder == "" {
		return r.dst, true
	}

	logger := logging.GetLogger("rewrite")
	logger.Debug().
		Str("oldPath", oldPath).
		Str("folderName", r.srcLeaf).
		Msg("Relocated registry path by folder name")

	return r.dst + remainder, true
}

// leafName returns the terminal folder-name component of path, with either
// separator kind and trailing separators tolerated
func leafName(path string) string {
	end := len(path)
	for end > 0 && isSep(path[end-1]) {
		end--
	}
	start := end
	for start > 0 && !isSep(path[start-1]) {
		start--
	}
	return path[start:end]
}

// indexSegmentFold returns the index of the first occurrence of name in path
// as a full separator-bounded path segment, compared case-insensitively, or
// -1 if none exists
func indexSegmentFold(path, name string) int {
	for i := 0; i+len(name) <= len(path); i++ {
		if i > 0 && !isSep(path[i-1]) {
			continue
		}
		if !strings.EqualFold(path[i:i+len(name)], name) {
			continue
		}
		end := i + len(name)
		if end < len(path) && !isSep(path[end]) {
			continue
		}
		return i
	}
	return -1
}

func isSep(c byte) bool {
	return c == '\\' || c == '/'
}

// HasPrefixFold reports whether s starts with prefix, compared
// case-insensitively. Used for both rewrite matching and the
// prefix-scoped deletes on deregistration.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Package paths provides centralized path handling for titlesync.
// The registry root is an external, emulator-owned application-data
// location; this package only resolves and joins it, never invents
// structure below the per-title directories.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/sassoanarchico/titlesync/pkg/titleid"
)

// Environment variable names
const (
	// EnvRegistryRoot overrides the emulator registry root directory
	EnvRegistryRoot = "TITLESYNC_REGISTRY_ROOT"
)

// Default directories and files
const (
	// DefaultEmulatorDirName is the emulator's configuration directory name
	DefaultEmulatorDirName = "Ryujinx"

	// DefaultGamesDirName is the per-title registry directory under the
	// emulator configuration directory
	DefaultGamesDirName = "games"
)

// Paths resolves the registry locations titlesync operates on
type Paths interface {
	// RegistryRoot is the directory holding one subdirectory per base title
	RegistryRoot() string

	// TitleDir is the registry directory for one base title, named by the
	// lowercase 16-hex-digit title ID
	TitleDir(id titleid.TitleID) string
}

type paths struct {
	registryRoot string
}

// New resolves the registry root. Resolution order: explicit argument,
// TITLESYNC_REGISTRY_ROOT, then the emulator's XDG config location.
func New(registryRoot string) Paths {
	root := registryRoot
	if root == "" {
		root = os.Getenv(EnvRegistryRoot)
	}
	if root == "" {
		root = filepath.Join(xdg.ConfigHome, DefaultEmulatorDirName, DefaultGamesDirName)
	}
	return &paths{registryRoot: root}
}

func (p *paths) RegistryRoot() string {
	return p.registryRoot
}

func (p *paths) TitleDir(id titleid.TitleID) string {
	return filepath.Join(p.registryRoot, id.String())
}

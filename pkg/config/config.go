// Package config loads titlesync configuration through koanf, merging
// embedded defaults, an optional user file, and TITLESYNC_* environment
// variables, in that order.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	tserrors "github.com/sassoanarchico/titlesync/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// ConfigFileName is the user configuration file looked up under the XDG
// config directory
const ConfigFileName = "titlesync.toml"

// Config holds the resolved titlesync settings
type Config struct {
	// RegistryRoot overrides the emulator registry root; empty keeps the
	// platform default
	RegistryRoot string

	// PackageExtensions are the filename extensions scanned as package
	// archives
	PackageExtensions []string

	// ContentExtension is the extension of content entries inside archives
	ContentExtension string

	// MetadataMarker excludes metadata entries from content listings
	MetadataMarker string
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load merges defaults, the optional user file, and environment overrides
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, tserrors.Wrap(err, tserrors.ErrConfigParse, "failed to load default config")
	}

	// 2. User config file, if present
	path := filepath.Join(xdg.ConfigHome, "titlesync", ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, tserrors.Wrapf(err, tserrors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides: TITLESYNC_REGISTRY_ROOT -> registry.root
	if err := k.Load(env.Provider("TITLESYNC_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "TITLESYNC_")
		s = strings.ToLower(s)
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, tserrors.Wrap(err, tserrors.ErrConfigLoad, "failed to load environment overrides")
	}

	return &Config{
		RegistryRoot:      k.String("registry.root"),
		PackageExtensions: k.Strings("packages.extensions"),
		ContentExtension:  k.String("content.extension"),
		MetadataMarker:    k.String("content.metadata_marker"),
	}, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment
func Default() *Config {
	return &Config{
		PackageExtensions: []string{".nsp"},
		ContentExtension:  ".nca",
		MetadataMarker:    ".cnmt.",
	}
}

package types

import "io/fs"

// FS abstracts filesystem operations so the engine can run against the real
// OS filesystem in production and an in-memory filesystem in tests.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (fs.File, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	ReadDir(name string) ([]fs.DirEntry, error)
}

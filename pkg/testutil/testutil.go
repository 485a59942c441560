// Package testutil provides shared helpers for titlesync tests.
package testutil

import (
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/sassoanarchico/titlesync/pkg/filesystem"
	"github.com/sassoanarchico/titlesync/pkg/types"
)

// NewMemoryFS returns a types.FS backed by an in-memory afero filesystem
func NewMemoryFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// PFS0Image builds a minimal valid PFS0 container image holding the given
// entry names. Entry data is synthetic; only the header matters to the
// inspector.
func PFS0Image(names ...string) []byte {
	var stringTable []byte
	nameOffsets := make([]uint32, len(names))
	for i, name := range names {
		nameOffsets[i] = uint32(len(stringTable))
		stringTable = append(stringTable, name...)
		stringTable = append(stringTable, 0)
	}

	img := make([]byte, 0, 0x10+len(names)*0x18+len(stringTable))
	img = append(img, 'P', 'F', 'S', '0')
	img = binary.LittleEndian.AppendUint32(img, uint32(len(names)))
	img = binary.LittleEndian.AppendUint32(img, uint32(len(stringTable)))
	img = binary.LittleEndian.AppendUint32(img, 0)

	offset := uint64(0)
	for i := range names {
		img = binary.LittleEndian.AppendUint64(img, offset)
		img = binary.LittleEndian.AppendUint64(img, 0x100)
		img = binary.LittleEndian.AppendUint32(img, nameOffsets[i])
		img = binary.LittleEndian.AppendUint32(img, 0)
		offset += 0x100
	}

	img = append(img, stringTable...)
	return img
}

// WritePFS0 writes a PFS0 container with the given entry names at path,
// creating parent directories as needed
func WritePFS0(t *testing.T, fsys types.FS, path string, names ...string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(parentDir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, PFS0Image(names...), 0644))
}

// WriteFile writes arbitrary bytes at path, creating parent directories as
// needed
func WriteFile(t *testing.T, fsys types.FS, path string, data []byte) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(parentDir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, data, 0644))
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}

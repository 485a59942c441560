package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoanarchico/titlesync/pkg/pfs"
	"github.com/sassoanarchico/titlesync/pkg/registry"
	"github.com/sassoanarchico/titlesync/pkg/testutil"
	"github.com/sassoanarchico/titlesync/pkg/titleid"
)

const (
	baseID   = titleid.TitleID(0x0100AABBCCDDE000)
	baseFile = "Game [0100AABBCCDDE000].nsp"
)

func newTestScanner(t *testing.T) (*Scanner, *registry.Updates, []registry.DLCContainer) {
	t.Helper()
	fsys := testutil.NewMemoryFS()
	sc := NewScanner(fsys, pfs.NewInspector(fsys))
	return sc, &registry.Updates{}, nil
}

func TestDiscoverClassifiesUpdates(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/"+baseFile, "base.nca")
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/upd/Game [0100AABBCCDDE800][v131072].nsp", "upd.nca")

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)

	assert.Equal(t, []string{"/lib/Foo/upd/Game [0100AABBCCDDE800][v131072].nsp"}, result.AddedUpdates)
	assert.Empty(t, result.AddedDLC)
}

func TestDiscoverBaseFileExcluded(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/"+baseFile, "base.nca")

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDiscoverDLCIsCatchAll(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	// different family, not an update for the base: still recorded as DLC
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/dlc/Extra [0100FFFFFFFFF001].nsp", "aaaa.nca", "bbbb.cnmt.nca")

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)

	require.Len(t, result.AddedDLC, 1)
	container := result.AddedDLC[0]
	assert.Equal(t, "/lib/Foo/dlc/Extra [0100FFFFFFFFF001].nsp", container.Path)
	require.Len(t, container.DLCNcaList, 1)
	assert.Equal(t, "/aaaa.nca", container.DLCNcaList[0].Path)
	assert.Equal(t, uint64(0x0100FFFFFFFFF001), container.DLCNcaList[0].TitleID)
	assert.True(t, container.DLCNcaList[0].IsEnabled)
}

func TestDiscoverApproximateTitleID(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/Game[010015200002300x][DLC].nsp", "aaaa.nca")

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)

	require.Len(t, result.AddedDLC, 1)
	assert.Equal(t, uint64(0x0100152000023000), result.AddedDLC[0].DLCNcaList[0].TitleID)
}

func TestDiscoverSkipsKnownEntries(t *testing.T) {
	sc, _, _ := newTestScanner(t)
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/upd/Game [0100AABBCCDDE800][v3].nsp", "upd.nca")
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/dlc/Extra [0100AABBCCDDF001].nsp", "aaaa.nca")

	updates := &registry.Updates{Paths: []string{"/LIB/FOO/UPD/GAME [0100AABBCCDDE800][V3].NSP"}}
	dlc := []registry.DLCContainer{{Path: "/lib/foo/dlc/extra [0100aabbccddf001].nsp"}}

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDiscoverSkipsBadCandidates(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	// no title ID at all
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/NoToken.nsp", "aaaa.nca")
	// unreadable container
	testutil.WriteFile(t, sc.fs, "/lib/Foo/Broken [0100AABBCCDDF001].nsp", []byte("garbage"))
	// container with only metadata entries
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/Meta [0100AABBCCDDF002].nsp", "aaaa.cnmt.nca")

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Len(t, result.Skipped, 3)
}

func TestDiscoverNonPackageFilesIgnored(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)
	testutil.WriteFile(t, sc.fs, "/lib/Foo/readme.txt", []byte("hi"))
	testutil.WriteFile(t, sc.fs, "/lib/Foo/icon.png", []byte{0x89})

	result, err := sc.Discover("/lib/Foo", baseFile, baseID, updates, dlc)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestDiscoverMissingRoot(t *testing.T) {
	sc, updates, dlc := newTestScanner(t)

	_, err := sc.Discover("/does/not/exist", baseFile, baseID, updates, dlc)
	assert.Error(t, err)
}

func TestScanReport(t *testing.T) {
	sc, _, _ := newTestScanner(t)
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/upd/Game [0100AABBCCDDE800][v5].nsp", "upd.nca")
	testutil.WritePFS0(t, sc.fs, "/lib/Foo/dlc/Extra [0100AABBCCDDF001].nsp", "aaaa.nca", "bbbb.nca")
	testutil.WriteFile(t, sc.fs, "/lib/Foo/NoToken.nsp", []byte("garbage"))

	candidates, err := sc.Scan("/lib/Foo", baseFile, baseID)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	byPath := map[string]Candidate{}
	for _, c := range candidates {
		byPath[c.Path] = c
	}

	upd := byPath["/lib/Foo/upd/Game [0100AABBCCDDE800][v5].nsp"]
	assert.True(t, upd.IsUpdate)
	assert.Equal(t, 5, upd.Version)

	extra := byPath["/lib/Foo/dlc/Extra [0100AABBCCDDF001].nsp"]
	assert.False(t, extra.IsUpdate)
	assert.Equal(t, 2, extra.NumEntries)

	missing := byPath["/lib/Foo/NoToken.nsp"]
	assert.Equal(t, "no title ID", missing.SkipReason)
}

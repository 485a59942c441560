package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoanarchico/titlesync/pkg/errors"
	"github.com/sassoanarchico/titlesync/pkg/testutil"
)

const dir = "/registry/0100aabbccdde000"

func TestUpdatesRoundTrip(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	store := NewStore(fsys)

	in := &Updates{
		Selected: "/games/Foo/update [v5].nsp",
		Paths: []string{
			"/games/Foo/update [v3].nsp",
			"/games/Foo/update [v5].nsp",
		},
	}
	require.NoError(t, store.WriteUpdates(dir, in))

	out, err := store.ReadUpdates(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadUpdatesMissingFile(t *testing.T) {
	store := NewStore(testutil.NewMemoryFS())

	u, err := store.ReadUpdates(dir)
	require.NoError(t, err)
	assert.Equal(t, "", u.Selected)
	assert.Empty(t, u.Paths)
	assert.True(t, u.IsEmpty())
}

func TestReadUpdatesMalformed(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, dir+"/"+UpdatesFileName, []byte("{not json"))

	_, err := NewStore(fsys).ReadUpdates(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMalformedRegistry))
}

func TestDLCRoundTrip(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	store := NewStore(fsys)

	in := []DLCContainer{
		{
			Path: "/games/Foo/dlc [0100aabbccddf001].nsp",
			DLCNcaList: []DLCContentEntry{
				{Path: "/aaaa.nca", TitleID: 0x0100aabbccddf001, IsEnabled: true},
				{Path: "/bbbb.nca", TitleID: 0x0100aabbccddf001, IsEnabled: false},
			},
		},
	}
	require.NoError(t, store.WriteDLC(dir, in))

	out, err := store.ReadDLC(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadDLCMissingFile(t *testing.T) {
	store := NewStore(testutil.NewMemoryFS())

	list, err := store.ReadDLC(dir)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReadDLCMalformed(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, dir+"/"+DLCFileName, []byte("[{]"))

	_, err := NewStore(fsys).ReadDLC(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMalformedRegistry))
}

func TestDeleteTolerantOfAbsentFiles(t *testing.T) {
	store := NewStore(testutil.NewMemoryFS())

	assert.NoError(t, store.DeleteUpdates(dir))
	assert.NoError(t, store.DeleteDLC(dir))
}

func TestDeleteRemovesFile(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	store := NewStore(fsys)

	require.NoError(t, store.WriteUpdates(dir, &Updates{Paths: []string{"/a.nsp"}}))
	require.NoError(t, store.DeleteUpdates(dir))

	_, err := fsys.Stat(dir + "/" + UpdatesFileName)
	assert.Error(t, err)
}

func TestContainsPathCaseInsensitive(t *testing.T) {
	u := &Updates{Paths: []string{`E:\Lib\Foo\upd\a.nsp`}}
	assert.True(t, u.ContainsPath(`e:\lib\foo\UPD\A.NSP`))
	assert.False(t, u.ContainsPath(`e:\lib\foo\upd\b.nsp`))

	list := []DLCContainer{{Path: "/games/Foo/dlc.nsp"}}
	assert.True(t, ContainsContainer(list, "/GAMES/FOO/DLC.NSP"))
	assert.False(t, ContainsContainer(list, "/games/Bar/dlc.nsp"))
}

func TestWrittenDocumentShape(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	store := NewStore(fsys)

	require.NoError(t, store.WriteUpdates(dir, &Updates{}))
	data, err := fsys.ReadFile(dir + "/" + UpdatesFileName)
	require.NoError(t, err)

	// the emulator expects an array, never null
	assert.JSONEq(t, `{"selected": "", "paths": []}`, string(data))
}

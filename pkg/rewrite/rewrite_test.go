package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePrefix(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dst     string
		oldPath string
		want    string
	}{
		{
			name:    "windows paths",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `D:\Games\Foo\upd\a.nsp`,
			want:    `E:\Lib\Foo\upd\a.nsp`,
		},
		{
			name:    "prefix match is case-insensitive",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `d:\games\foo\upd\a.nsp`,
			want:    `E:\Lib\Foo\upd\a.nsp`,
		},
		{
			name:    "slash paths",
			src:     "/games/Foo",
			dst:     "/lib/Foo",
			oldPath: "/games/Foo/dlc/b.nsp",
			want:    "/lib/Foo/dlc/b.nsp",
		},
		{
			name:    "subdirectory structure preserved",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `D:\Games\Foo\deep\nested\dir\c.nsp`,
			want:    `E:\Lib\Foo\deep\nested\dir\c.nsp`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := NewRewriter(tt.src, tt.dst).Rewrite(tt.oldPath)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, StrategyPrefix, strategy)
		})
	}
}

func TestRewriteFolderName(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dst     string
		oldPath string
		want    string
	}{
		{
			name:    "drive letter changed",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\Foo\dlc\b.nsp`,
			want:    `E:\Lib\Foo\dlc\b.nsp`,
		},
		{
			name:    "old path ends at the folder name",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\Foo`,
			want:    `E:\Lib\Foo`,
		},
		{
			name:    "folder name match is case-insensitive",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\FOO\upd\a.nsp`,
			want:    `E:\Lib\Foo\upd\a.nsp`,
		},
		{
			name:    "mixed separators",
			src:     "/games/Foo/",
			dst:     "/lib/Foo",
			oldPath: `F:\Other\Foo\dlc\b.nsp`,
			want:    `/lib/Foo\dlc\b.nsp`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := NewRewriter(tt.src, tt.dst).Rewrite(tt.oldPath)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, StrategyFolderName, strategy)
		})
	}
}

func TestRewriteNoMatch(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dst     string
		oldPath string
	}{
		{
			name:    "different install entirely",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\Bar\upd\a.nsp`,
		},
		{
			name:    "folder name only as substring of a segment",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\FooBar\upd\a.nsp`,
		},
		{
			name:    "folder name inside a filename",
			src:     `D:\Games\Foo`,
			dst:     `E:\Lib\Foo`,
			oldPath: `F:\Other\Baz\NotFoo.nsp`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := NewRewriter(tt.src, tt.dst).Rewrite(tt.oldPath)
			assert.False(t, ok)
			// untouched, never mutated
			assert.Equal(t, tt.oldPath, got)
		})
	}
}

func TestLeafName(t *testing.T) {
	assert.Equal(t, "Foo", leafName(`D:\Games\Foo`))
	assert.Equal(t, "Foo", leafName(`D:\Games\Foo\`))
	assert.Equal(t, "Foo", leafName("/games/Foo/"))
	assert.Equal(t, "Foo", leafName("Foo"))
	assert.Equal(t, "", leafName("/"))
}

func TestHasPrefixFold(t *testing.T) {
	assert.True(t, HasPrefixFold(`E:\Lib\Foo\a.nsp`, `e:\lib\foo`))
	assert.False(t, HasPrefixFold(`E:\Lib`, `E:\Lib\Foo`))
}

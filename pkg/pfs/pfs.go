// Package pfs reads PFS0 partition containers.
//
// A PFS0 file starts with an unencrypted header listing named sub-entries:
//
//	0x00  magic "PFS0"
//	0x04  u32 entry count
//	0x08  u32 string table size
//	0x0C  u32 reserved
//	0x10  entry table, one 0x18-byte record per entry
//	      {u64 data offset, u64 data size, u32 name offset, u32 reserved}
//	....  NUL-terminated name string table
//
// The entry data itself is never read, so no decryption keys are needed.
package pfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/sassoanarchico/titlesync/pkg/errors"
	"github.com/sassoanarchico/titlesync/pkg/logging"
	"github.com/sassoanarchico/titlesync/pkg/types"
)

const (
	headerSize = 0x10
	entrySize  = 0x18

	// maxEntries and maxStringTable bound header-driven allocations so a
	// corrupt file cannot ask for gigabytes
	maxEntries     = 0x10000
	maxStringTable = 0x100000
)

var magic = []byte{'P', 'F', 'S', '0'}

// DefaultContentExtension matches individual content-archive entries
const DefaultContentExtension = ".nca"

// DefaultMetadataMarker appears in the name of metadata entries, which are
// excluded from content listings
const DefaultMetadataMarker = ".cnmt."

// Inspector lists the content entries of partition container files
type Inspector struct {
	fs types.FS

	// ContentExtension and MetadataMarker are compared case-insensitively
	ContentExtension string
	MetadataMarker   string
}

// NewInspector creates an Inspector with the default entry filters
func NewInspector(fsys types.FS) *Inspector {
	return &Inspector{
		fs:               fsys,
		ContentExtension: DefaultContentExtension,
		MetadataMarker:   DefaultMetadataMarker,
	}
}

// ListContentEntries parses the container at archivePath and returns the
// names of its content entries, excluding metadata entries. On any parse
// failure it returns an error and no names, never a partial list.
func (i *Inspector) ListContentEntries(archivePath string) ([]string, error) {
	logger := logging.GetLogger("pfs")

	f, err := i.fs.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to open archive %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	names, err := readEntryNames(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveParse, "failed to parse archive %s", archivePath)
	}

	var entries []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, strings.ToLower(i.ContentExtension)) {
			continue
		}
		if strings.Contains(lower, strings.ToLower(i.MetadataMarker)) {
			continue
		}
		entries = append(entries, name)
	}

	logger.Debug().
		Str("archive", archivePath).
		Int("total", len(names)).
		Int("content", len(entries)).
		Msg("Listed archive entries")

	return entries, nil
}

// readEntryNames parses the PFS0 header and returns every entry name in
// table order
func readEntryNames(r io.Reader) ([]string, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveParse, "short read on container header")
	}

	if !bytes.Equal(header[0:4], magic) {
		return nil, errors.Newf(errors.ErrArchiveParse, "bad container magic %q", header[0:4])
	}

	count := binary.LittleEndian.Uint32(header[4:8])
	stringTableSize := binary.LittleEndian.Uint32(header[8:12])
	if count > maxEntries {
		return nil, errors.Newf(errors.ErrArchiveParse, "implausible entry count %d", count)
	}
	if stringTableSize > maxStringTable {
		return nil, errors.Newf(errors.ErrArchiveParse, "implausible string table size %d", stringTableSize)
	}

	entryTable := make([]byte, int(count)*entrySize)
	if _, err := io.ReadFull(r, entryTable); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveParse, "short read on entry table")
	}

	stringTable := make([]byte, stringTableSize)
	if _, err := io.ReadFull(r, stringTable); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveParse, "short read on string table")
	}

	names := make([]string, 0, count)
	for e := 0; e < int(count); e++ {
		nameOffset := binary.LittleEndian.Uint32(entryTable[e*entrySize+16 : e*entrySize+20])
		if nameOffset >= stringTableSize {
			return nil, errors.Newf(errors.ErrArchiveParse, "entry %d name offset %d beyond string table", e, nameOffset)
		}
		name := stringTable[nameOffset:]
		if end := bytes.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}
		if len(name) == 0 {
			return nil, errors.Newf(errors.ErrArchiveParse, "entry %d has an empty name", e)
		}
		names = append(names, string(name))
	}

	return names, nil
}

// Package titleid extracts and classifies 64-bit title identifiers from
// package filenames.
//
// Title IDs appear in filenames as bracketed 16-hex-digit tokens, e.g.
// "Game [0100AABBCCDDE000].nsp". The top 51 bits identify the application
// family; the low 13 bits encode the content type (base, update, DLC).
package titleid

import (
	"regexp"
	"strconv"

	"github.com/sassoanarchico/titlesync/pkg/logging"
)

const (
	// familyMask zeroes the content-type bits, leaving the application family
	familyMask = ^uint64(0x1FFF)

	// updateTypeBits is the low-13-bit value carried by update packages
	updateTypeBits = 0x800

	// dlcBit marks DLC packages
	dlcBit = 0x1000
)

var (
	strictPattern = regexp.MustCompile(`\[([0-9A-Fa-f]{16})\]`)

	// 15 hex digits plus a single placeholder character. Some release
	// filenames carry a non-hex wildcard in the last position; we treat it
	// as hex digit 0 and flag the result as approximate.
	relaxedPattern = regexp.MustCompile(`\[([0-9A-Fa-f]{15})[^0-9A-Fa-f\[\]]\]`)

	versionPattern = regexp.MustCompile(`\[v([0-9]+)\]`)
)

// TitleID is a 64-bit title identifier
type TitleID uint64

// String renders the ID as the lowercase 16-hex-digit form used for
// registry directory names
func (t TitleID) String() string {
	s := strconv.FormatUint(uint64(t), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// ID is an extracted title identifier. Approximate is set when the ID was
// recovered through the relaxed wildcard pattern and may not exactly match
// the true content.
type ID struct {
	Value       TitleID
	Approximate bool
}

// Extract returns the first title ID embedded in filename. The strict
// 16-hex-digit pattern is tried first; the relaxed 15-digit-plus-wildcard
// fallback is lossy and logged when used.
func Extract(filename string) (ID, bool) {
	if m := strictPattern.FindStringSubmatch(filename); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 64)
		if err == nil {
			return ID{Value: TitleID(v)}, true
		}
	}

	if m := relaxedPattern.FindStringSubmatch(filename); m != nil {
		v, err := strconv.ParseUint(m[1]+"0", 16, 64)
		if err == nil {
			logger := logging.GetLogger("titleid")
			logger.Warn().
				Str("filename", filename).
				Str("titleId", TitleID(v).String()).
				Msg("Title ID recovered through wildcard fallback, value is approximate")
			return ID{Value: TitleID(v), Approximate: true}, true
		}
	}

	return ID{}, false
}

// ExtractVersion returns the version number from a bracketed "[v<digits>]"
// token, or 0 if the filename carries none
func ExtractVersion(filename string) int {
	m := versionPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

// IsUpdate reports whether t is an update package for base: same application
// family, content-type bits exactly 0x800
func IsUpdate(t, base TitleID) bool {
	return uint64(t)&familyMask == uint64(base)&familyMask &&
		uint64(t)&^familyMask == updateTypeBits
}

// IsDLC reports whether t is a DLC package for base: same application
// family, DLC bit set, and not the base title itself
func IsDLC(t, base TitleID) bool {
	return uint64(t)&familyMask == uint64(base)&familyMask &&
		uint64(t)&dlcBit != 0 &&
		t != base
}

// Package codec implements the binary POI stream format.
//
// The stream is a header followed by length-prefixed records, so it can be
// decoded record-at-a-time from a growing buffer without full buffering:
//
//	magic "POI1" | version uint8 | total uint32 LE
//	repeat: bodyLen uvarint | body
//
// A record body is fid (uvarint), lon/lat (float64 LE), then tagged
// properties, each encoded as tag uint8 | payloadLen uvarint | payload.
// Unknown tags are skipped by length, which is what allows individual field
// defects to be recovered without losing the rest of the stream.
package codec

import (
	"errors"
	"math"
)

var magic = [4]byte{'P', 'O', 'I', '1'}

const (
	// Version is the only wire version this codec reads and writes.
	Version = 1

	// TotalUnknown in the header slot means the producer could not count
	// records up front. Progress reporting must not divide by it.
	TotalUnknown = math.MaxUint32

	// MaxRecordSize bounds a single record body. A declared length above
	// this is structural corruption, not a big record.
	MaxRecordSize = 1 << 20
)

// Property tags. Gaps are reserved for future fields; decoders skip tags
// they do not recognize.
const (
	TagName          = 1
	TagAddress       = 2
	TagTitleSource   = 3
	TagBlogSource    = 4
	TagLinkSource    = 5
	TagDateText      = 6
	TagDateStamp     = 7
	TagCategoryFlags = 8
	TagURLFlag       = 9
	TagURLLink       = 10
)

// Structural errors abort the whole decode.
var (
	ErrBadMagic   = errors.New("codec: bad magic, not a POI stream")
	ErrBadVersion = errors.New("codec: unsupported stream version")
	ErrTruncated  = errors.New("codec: truncated stream")
	ErrRecordSize = errors.New("codec: record length out of bounds")
)

// Header is the leading metadata event of a stream.
type Header struct {
	Version uint8
	// Total is the declared feature count. Zero is a valid empty dataset.
	Total int
	// TotalKnown is false when the producer wrote TotalUnknown.
	TotalKnown bool
}

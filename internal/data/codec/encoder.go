package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chiblo/poimap/internal/core/model"
)

// Encoder writes a POI stream. Used by the converter command and by test
// fixtures; the map site itself only ever decodes.
type Encoder struct {
	w       io.Writer
	scratch []byte
}

// NewEncoder writes the stream header and returns an encoder for the record
// sequence. Pass total < 0 when the record count is not known up front.
func NewEncoder(w io.Writer, total int) (*Encoder, error) {
	var buf [9]byte
	copy(buf[:4], magic[:])
	buf[4] = Version
	if total < 0 {
		binary.LittleEndian.PutUint32(buf[5:9], TotalUnknown)
	} else {
		binary.LittleEndian.PutUint32(buf[5:9], uint32(total))
	}
	if _, err := w.Write(buf[:]); err != nil {
		return nil, fmt.Errorf("codec: writing header: %w", err)
	}
	return &Encoder{w: w}, nil
}

// Write appends one feature record to the stream.
func (e *Encoder) Write(f model.Feature) error {
	body := e.scratch[:0]

	body = binary.AppendUvarint(body, uint64(f.FID))
	body = binary.LittleEndian.AppendUint64(body, math.Float64bits(f.Lon))
	body = binary.LittleEndian.AppendUint64(body, math.Float64bits(f.Lat))

	body = appendStringProp(body, TagName, f.Name)
	body = appendStringProp(body, TagAddress, f.Address)
	body = appendStringProp(body, TagTitleSource, f.TitleSource)
	body = appendStringProp(body, TagBlogSource, f.BlogSource)
	body = appendStringProp(body, TagLinkSource, f.LinkSource)
	body = appendStringProp(body, TagDateText, f.DateText)
	if f.DateStamp != 0 {
		stamp := binary.AppendVarint(nil, f.DateStamp)
		body = append(body, TagDateStamp)
		body = binary.AppendUvarint(body, uint64(len(stamp)))
		body = append(body, stamp...)
	}
	body = appendStringProp(body, TagCategoryFlags, f.CategoryFlags)
	body = appendStringProp(body, TagURLFlag, string(f.URLFlag))
	body = appendStringProp(body, TagURLLink, f.URLLink)

	e.scratch = body

	prefix := binary.AppendUvarint(nil, uint64(len(body)))
	if _, err := e.w.Write(prefix); err != nil {
		return fmt.Errorf("codec: writing record length: %w", err)
	}
	if _, err := e.w.Write(body); err != nil {
		return fmt.Errorf("codec: writing record: %w", err)
	}
	return nil
}

// appendStringProp encodes a string property, omitting empty values since
// the decoder defaults absent fields to "".
func appendStringProp(body []byte, tag byte, value string) []byte {
	if value == "" {
		return body
	}
	body = append(body, tag)
	body = binary.AppendUvarint(body, uint64(len(value)))
	return append(body, value...)
}

package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/util"
)

// Decoder reads a POI stream incrementally. It buffers only what the current
// record needs; callers pull records one at a time with Next, so a stream can
// be consumed while the network is still delivering it.
//
// Decoder is not safe for concurrent use. Errors other than field-level
// defects are sticky: once Next returns a structural error, every later call
// returns the same error.
type Decoder struct {
	r          *bufio.Reader
	header     Header
	headerRead bool
	decoded    int
	skipped    int
	err        error
}

// NewDecoder wraps r. The header is read lazily on the first Header or Next
// call.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Header returns the leading metadata event: declared total feature count.
func (d *Decoder) Header() (Header, error) {
	if d.err != nil {
		return Header{}, d.err
	}
	if d.headerRead {
		return d.header, nil
	}

	var buf [9]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = fmt.Errorf("%w: reading header: %v", ErrTruncated, err)
		return Header{}, d.err
	}
	if [4]byte(buf[:4]) != magic {
		d.err = ErrBadMagic
		return Header{}, d.err
	}
	if buf[4] != Version {
		d.err = fmt.Errorf("%w: got %d", ErrBadVersion, buf[4])
		return Header{}, d.err
	}

	total := binary.LittleEndian.Uint32(buf[5:9])
	d.header = Header{Version: buf[4]}
	if total == TotalUnknown {
		d.header.TotalKnown = false
	} else {
		d.header.Total = int(total)
		d.header.TotalKnown = true
	}
	d.headerRead = true
	return d.header, nil
}

// Next returns the next decoded feature. It returns io.EOF after the last
// record of a well-formed stream. A record whose body cannot be parsed is
// skipped and decoding continues with the next record; only structural
// corruption (unlocatable record boundaries) is fatal.
func (d *Decoder) Next() (model.Feature, error) {
	if d.err != nil {
		return model.Feature{}, d.err
	}
	if !d.headerRead {
		if _, err := d.Header(); err != nil {
			return model.Feature{}, err
		}
	}

	for {
		bodyLen, err := d.readRecordLen()
		if err != nil {
			if err == io.EOF {
				return model.Feature{}, io.EOF
			}
			d.err = err
			return model.Feature{}, d.err
		}

		body := make([]byte, bodyLen)
		if _, err := io.ReadFull(d.r, body); err != nil {
			d.err = fmt.Errorf("%w: record body: %v", ErrTruncated, err)
			return model.Feature{}, d.err
		}

		feature, ok := decodeBody(body)
		if !ok {
			// Record boundary was intact, so the rest of the stream
			// is still reachable.
			d.skipped++
			util.LogDebugf("codec: skipping undecodable record after %d features", d.decoded)
			continue
		}

		d.decoded++
		return feature, nil
	}
}

// Decoded reports how many features Next has returned so far.
func (d *Decoder) Decoded() int {
	return d.decoded
}

// Skipped reports how many records were dropped for body-level defects.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// readRecordLen reads the uvarint length prefix of the next record. A clean
// io.EOF before the first byte is the normal end of stream.
func (d *Decoder) readRecordLen() (int, error) {
	n, err := binary.ReadUvarint(d.r)
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: record length: %v", ErrTruncated, err)
	}
	if n > MaxRecordSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrRecordSize, n)
	}
	return int(n), nil
}

// decodeBody parses one record body. It returns ok=false only when the fixed
// prelude (fid + coordinates) is unreadable; property-level defects fall back
// to field defaults and never fail the record.
func decodeBody(body []byte) (model.Feature, bool) {
	fid, n := binary.Uvarint(body)
	if n <= 0 {
		return model.Feature{}, false
	}
	body = body[n:]
	if len(body) < 16 {
		return model.Feature{}, false
	}

	var f model.Feature
	f.FID = int64(fid)
	f.Lon = math.Float64frombits(binary.LittleEndian.Uint64(body[:8]))
	f.Lat = math.Float64frombits(binary.LittleEndian.Uint64(body[8:16]))
	body = body[16:]

	for len(body) > 0 {
		tag := body[0]
		body = body[1:]

		plen, n := binary.Uvarint(body)
		if n <= 0 || plen > uint64(len(body)-n) {
			// Cannot even locate the next property; drop the tail of
			// this record but keep what was already decoded. The
			// comparison stays in uint64, a declared length near 2^64
			// must not wrap into a negative slice bound.
			break
		}
		payload := body[n : n+int(plen)]
		body = body[n+int(plen):]

		switch tag {
		case TagName:
			f.Name = string(payload)
		case TagAddress:
			f.Address = string(payload)
		case TagTitleSource:
			f.TitleSource = string(payload)
		case TagBlogSource:
			f.BlogSource = string(payload)
		case TagLinkSource:
			f.LinkSource = string(payload)
		case TagDateText:
			f.DateText = string(payload)
		case TagDateStamp:
			if stamp, n := binary.Varint(payload); n == len(payload) && n > 0 {
				f.DateStamp = stamp
			}
			// Malformed stamp stays 0, the documented oldest value.
		case TagCategoryFlags:
			f.CategoryFlags = string(payload)
		case TagURLFlag:
			f.URLFlag = model.ParseURLFlag(string(payload))
		case TagURLLink:
			f.URLLink = string(payload)
		default:
			// Unknown tag from a newer producer; skipped by length.
		}
	}

	return f, true
}

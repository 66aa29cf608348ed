// Package fixtures generates POI streams for tests: well-formed datasets,
// streams with field-level defects and structurally corrupt byte sequences.
package fixtures

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/data/codec"
)

// Features builds n features spread around a center point, fids starting at
// 1. Every third feature mentions "カフェ" in the name so keyword and
// category tests have something to match.
func Features(n int, centerLon, centerLat float64, baseStamp int64) []model.Feature {
	features := make([]model.Feature, n)
	for i := range features {
		name := fmt.Sprintf("店舗%03d", i+1)
		if i%3 == 0 {
			name = fmt.Sprintf("カフェ%03d", i+1)
		}
		features[i] = model.Feature{
			FID:         int64(i + 1),
			Lon:         centerLon + float64(i%10)*0.0001,
			Lat:         centerLat + float64(i/10)*0.0001,
			Name:        name,
			TitleSource: fmt.Sprintf("訪問記 %03d", i+1),
			BlogSource:  "chiblog",
			LinkSource:  fmt.Sprintf("https://example.com/post/%d", i+1),
			DateText:    "2026年8月",
			DateStamp:   baseStamp + int64(i)*3600,
		}
	}
	return features
}

// Stream encodes features into a complete stream declaring len(features) in
// the header.
func Stream(features []model.Feature) []byte {
	var buf bytes.Buffer
	enc, err := codec.NewEncoder(&buf, len(features))
	if err != nil {
		panic(err)
	}
	for _, f := range features {
		if err := enc.Write(f); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// StreamDeclaring encodes features under an arbitrary declared total, for
// progress and cadence scenarios where total and record count differ.
func StreamDeclaring(total int, features []model.Feature) []byte {
	var buf bytes.Buffer
	enc, err := codec.NewEncoder(&buf, total)
	if err != nil {
		panic(err)
	}
	for _, f := range features {
		if err := enc.Write(f); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// BadMagic returns bytes that are not a POI stream at all.
func BadMagic() []byte {
	return []byte("GIF89a-definitely-not-poi")
}

// Truncated cuts a valid stream mid-record.
func Truncated(features []model.Feature) []byte {
	full := Stream(features)
	return full[:len(full)-3]
}

// OversizedRecord builds a stream whose first record declares an absurd
// length, which decoders must treat as structural corruption.
func OversizedRecord() []byte {
	var buf bytes.Buffer
	if _, err := codec.NewEncoder(&buf, 1); err != nil {
		panic(err)
	}
	prefix := binary.AppendUvarint(nil, uint64(codec.MaxRecordSize)+1)
	buf.Write(prefix)
	return buf.Bytes()
}

// UndecodableRecord appends a record whose body is too short for the fid
// and coordinate prelude; decoders skip it and continue.
func UndecodableRecord(total int, good []model.Feature) []byte {
	var buf bytes.Buffer
	enc, err := codec.NewEncoder(&buf, total)
	if err != nil {
		panic(err)
	}

	// fid only, no coordinates: boundary is intact, body is not.
	body := binary.AppendUvarint(nil, 99)
	buf.Write(binary.AppendUvarint(nil, uint64(len(body))))
	buf.Write(body)

	for _, f := range good {
		if err := enc.Write(f); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// RawProp is one hand-encoded property, for producing defective payloads
// the public encoder refuses to write.
type RawProp struct {
	Tag     byte
	Payload []byte
}

// RawStream builds a stream of hand-encoded records.
func RawStream(total int, records ...[]RawProp) []byte {
	var buf bytes.Buffer
	if _, err := codec.NewEncoder(&buf, total); err != nil {
		panic(err)
	}
	for i, props := range records {
		body := binary.AppendUvarint(nil, uint64(i+1))
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(140.1+float64(i)*0.001))
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(35.6))
		for _, p := range props {
			body = append(body, p.Tag)
			body = binary.AppendUvarint(body, uint64(len(p.Payload)))
			body = append(body, p.Payload...)
		}
		buf.Write(binary.AppendUvarint(nil, uint64(len(body))))
		buf.Write(body)
	}
	return buf.Bytes()
}

// github.com/kse2/pwsafe - a library for reading and writing Password Safe files
// Copyright (C) 2026  pwsafe contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pwsafe

// FieldStreamReader iterates RawFields out of a BlockReader, stopping
// when it sees the FieldEndOfRecord marker. At a V3 file's top level
// this marks the end of the header field list; inside a record it
// marks the end of that record's fields.
type FieldStreamReader struct {
	br      *BlockReader
	version Version
}

// NewFieldStreamReader builds a FieldStreamReader. version selects
// the V1/V2 (8-byte) or V3 (16-byte) block framing.
func NewFieldStreamReader(br *BlockReader, version Version) *FieldStreamReader {
	return &FieldStreamReader{br: br, version: version}
}

// Next returns the next field. end is true (with a zero RawField) if
// the end-of-record marker was read instead.
func (r *FieldStreamReader) Next() (field RawField, end bool, err error) {
	if r.version == FormatV3 {
		field, err = decodeRawFieldV3(r.br)
	} else {
		field, err = decodeRawFieldShort(r.br)
	}
	if err != nil {
		return RawField{}, false, err
	}
	if field.Type == FieldEndOfRecord {
		return RawField{}, true, nil
	}
	return field, false, nil
}

// AtEOF reports whether the underlying BlockReader has no further
// blocks (used by V1/V2 readers, which have no explicit header
// terminator and rely on exhausting the stream record by record).
func (r *FieldStreamReader) AtEOF() (bool, error) {
	return r.br.AtEOF()
}

// FieldStreamWriter serialises RawFields: a header block, then any
// remaining data blocks, updating the attached Checksum (if any) with
// every block written, symmetric with FieldStreamReader.
type FieldStreamWriter struct {
	bw      *BlockWriter
	version Version
	rng     CryptoRandom
}

// NewFieldStreamWriter builds a FieldStreamWriter.
func NewFieldStreamWriter(bw *BlockWriter, version Version, rng CryptoRandom) *FieldStreamWriter {
	return &FieldStreamWriter{bw: bw, version: version, rng: rng}
}

// WriteField serialises and writes one field.
func (w *FieldStreamWriter) WriteField(f RawField) error {
	var encoded []byte
	if w.version == FormatV3 {
		encoded = encodeRawFieldV3(f, w.rng)
	} else {
		encoded = encodeRawFieldShort(f, w.rng)
	}
	return w.bw.WriteBlocks(encoded)
}

// WriteEndOfRecord writes the type-0xFF, zero-length marker that ends
// a record's field list (or, at the top level, a V3 header).
func (w *FieldStreamWriter) WriteEndOfRecord() error {
	return w.WriteField(RawField{Type: FieldEndOfRecord})
}

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

import (
	"encoding/binary"
	"fmt"
)

// FieldEndOfRecord is the reserved type marking the end of a record's
// field list (and, at the top level of a V3 file, the end of the
// header field list).
const FieldEndOfRecord = 0xFF

// RawField is the TLV unit of on-disk encoding: a type byte, an
// authoritative data length, and the data itself. Data may be longer
// than Length only because of block padding; callers must treat Data
// as truncated to Length.
type RawField struct {
	Type   uint8
	Length uint32
	Data   []byte
}

// Payload returns Data truncated to Length, the logical field
// contents.
func (f RawField) Payload() []byte {
	if int(f.Length) >= len(f.Data) {
		return f.Data
	}
	return f.Data[:f.Length]
}

func blockedDataBlocks(length uint32, blockSize int, headerCarries int, minBlocks int) int {
	remaining := int64(length) - int64(headerCarries)
	if remaining < 0 {
		remaining = 0
	}
	n := int(ceilDiv(remaining, int64(blockSize)))
	if n < minBlocks {
		n = minBlocks
	}
	return n
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// blockedFieldSize returns the total on-disk size in bytes (header
// block plus data blocks) for a field of the given length, for the
// V1/V2 (blockSize=8, no header payload) or V3 (blockSize=16, 11
// bytes of payload carried in the header block) framing.
func blockedFieldSize(length uint32, blockSize int) int64 {
	headerCarries := 0
	minBlocks := 1
	if blockSize == 16 {
		headerCarries = 11
		minBlocks = 0
	}
	dataBlocks := blockedDataBlocks(length, blockSize, headerCarries, minBlocks)
	return int64(blockSize) + int64(dataBlocks)*int64(blockSize)
}

// encodeRawFieldShort encodes a RawField using the V1/V2 framing:
// an 8-byte header block holding [length:u32-LE | type:u8 | padding],
// followed by ceil(length/8) data blocks (at least one).
func encodeRawFieldShort(f RawField, rng CryptoRandom) []byte {
	const blockSize = 8
	header := make([]byte, blockSize)
	binary.LittleEndian.PutUint32(header[0:4], f.Length)
	header[4] = f.Type
	copy(header[5:], rng.NextBytes(blockSize-5))

	dataBlocks := blockedDataBlocks(f.Length, blockSize, 0, 1)
	body := make([]byte, dataBlocks*blockSize)
	payload := f.Payload()
	copy(body, payload)
	if pad := len(body) - len(payload); pad > 0 {
		copy(body[len(payload):], rng.NextBytes(pad))
	}

	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out
}

// decodeRawFieldShort reads one V1/V2-framed field from r.
func decodeRawFieldShort(r *BlockReader) (RawField, error) {
	const blockSize = 8
	header, err := r.ReadBlocks(1)
	if err != nil {
		return RawField{}, err
	}
	length := binary.LittleEndian.Uint32(header[0:4])
	typ := header[4]

	dataBlocks := blockedDataBlocks(length, blockSize, 0, 1)
	data, err := r.ReadBlocks(dataBlocks)
	if err != nil {
		return RawField{}, err
	}
	if int64(length) > int64(len(data)) {
		return RawField{}, newErr(KindCorruptStream, fmt.Errorf("pwsafe: field length %d exceeds block capacity %d", length, len(data)))
	}
	return RawField{Type: typ, Length: length, Data: data}, nil
}

// encodeRawFieldV3 encodes a RawField using the V3 framing: a
// 16-byte header block holding [length:u32-LE | type:u8 | first 11
// bytes of payload], followed by ceil(max(0,length-11)/16) data
// blocks.
func encodeRawFieldV3(f RawField, rng CryptoRandom) []byte {
	const blockSize = 16
	payload := f.Payload()

	header := make([]byte, blockSize)
	binary.LittleEndian.PutUint32(header[0:4], f.Length)
	header[4] = f.Type
	embedded := 11
	if len(payload) < embedded {
		embedded = len(payload)
	}
	copy(header[5:5+embedded], payload[:embedded])
	if pad := 11 - embedded; pad > 0 {
		copy(header[5+embedded:16], rng.NextBytes(pad))
	}

	rest := payload[embedded:]
	dataBlocks := blockedDataBlocks(f.Length, blockSize, 11, 0)
	body := make([]byte, dataBlocks*blockSize)
	copy(body, rest)
	if pad := len(body) - len(rest); pad > 0 {
		copy(body[len(rest):], rng.NextBytes(pad))
	}

	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out
}

// decodeRawFieldV3 reads one V3-framed field from r.
func decodeRawFieldV3(r *BlockReader) (RawField, error) {
	const blockSize = 16
	header, err := r.ReadBlocks(1)
	if err != nil {
		return RawField{}, err
	}
	length := binary.LittleEndian.Uint32(header[0:4])
	typ := header[4]
	embedded := header[5:16]

	dataBlocks := blockedDataBlocks(length, blockSize, 11, 0)
	var rest []byte
	if dataBlocks > 0 {
		rest, err = r.ReadBlocks(dataBlocks)
		if err != nil {
			return RawField{}, err
		}
	}

	data := make([]byte, 0, 11+len(rest))
	data = append(data, embedded...)
	data = append(data, rest...)
	if int64(length) > int64(len(data)) {
		return RawField{}, newErr(KindCorruptStream, fmt.Errorf("pwsafe: field length %d exceeds block capacity %d", length, len(data)))
	}
	return RawField{Type: typ, Length: length, Data: data}, nil
}

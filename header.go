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
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/xdg-go/stringprep"
)

// Version identifies which on-disk dialect a file is, or is believed
// to be. FormatAny is only meaningful as an AttemptOpen request, never
// as the Version of an opened file.
type Version int

const (
	FormatAny Version = iota
	FormatV1
	FormatV2
	FormatV3
)

func (v Version) String() string {
	switch v {
	case FormatAny:
		return "any"
	case FormatV1:
		return "v1"
	case FormatV2:
		return "v2"
	case FormatV3:
		return "v3"
	default:
		return fmt.Sprintf("version#%d", int(v))
	}
}

// minIterations and maxIterations bound the ITER field on read, per
// §4.4: "little-endian u32 ≥ 2048, capped at 2048·2048·100".
const (
	minIterations uint32 = 2048
	maxIterations uint32 = 2048 * 2048 * 100
)

const v3Magic = "PWS3"
const v3TrailerMarker = "PWS3-EOFPWS3-EOF"

// classicalV1Marker and classicalV2Marker are the dialect byte this
// module's V1/V2 header writes first, since the classical formats
// carry no magic number of their own (§6.2, §6.3). See DESIGN.md for
// why this byte, rather than heuristics alone, resolves dialect
// detection for WrongVersion/UnsupportedVersion.
const (
	classicalV1Marker byte = 0x01
	classicalV2Marker byte = 0x02
)

// v2OptionsFieldType is the pseudo field type this module uses to
// carry the V2 option string as the first entry of the encrypted field
// stream, ahead of records.
const v2OptionsFieldType uint8 = 0x00

// ByteSource is the input a HeaderSocket reads from: rewindable, since
// AttemptOpen may be retried with a different passphrase or version
// (§4.4).
type ByteSource interface {
	io.Reader
	io.Seeker
}

type socketState int32

const (
	socketFresh socketState = iota
	socketOpen
	socketConsumed
)

// OpenHeader is the result of a successful AttemptOpen: the dialect,
// its tunables, and (for V3) the parsed header field list.
type OpenHeader struct {
	Version      Version
	Iterations   uint32
	HeaderFields *HeaderFieldList // non-nil only for V3
	Options      string           // non-empty only for V2
	Charset      string           // resolved V2 charset name; empty for V1/V3
}

// HeaderSocket implements the Fresh → Open → Consumed state machine of
// §4.4: AttemptOpen may be retried while Fresh, but a successful
// attempt freezes the socket, and exactly one of BlockReader or
// FieldReader may then be drawn from it.
type HeaderSocket struct {
	src  ByteSource
	prim *Primitives

	state socketState
	open  *OpenHeader

	cipher   BlockCipher
	iv       []byte
	checksum Checksum // V3 only
	br       *BlockReader
}

// NewHeaderSocket builds a socket reading the header and record stream
// from src.
func NewHeaderSocket(src ByteSource, prim *Primitives) *HeaderSocket {
	return &HeaderSocket{src: src, prim: prim}
}

// AttemptOpen tries to open the header with passphrase, restricted to
// version unless it is FormatAny. On success the socket transitions to
// Open and freezes; on failure it remains Fresh, and the next attempt
// rewinds the byte source to its start before reading.
func (s *HeaderSocket) AttemptOpen(passphrase *SecretString, version Version) (*OpenHeader, error) {
	if s.state != socketFresh {
		return nil, newErr(KindIllegalState, fmt.Errorf("pwsafe: header socket already opened"))
	}
	if _, err := s.src.Seek(0, io.SeekStart); err != nil {
		return nil, wrapIo("seek header", err)
	}

	magic := make([]byte, 4)
	n, err := io.ReadFull(s.src, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, wrapIo("read header magic", err)
	}
	if n < 4 {
		return nil, newErr(KindUnsupportedVersion, fmt.Errorf("pwsafe: stream too short for any known header"))
	}

	if string(magic) == v3Magic {
		if version != FormatAny && version != FormatV3 {
			return nil, newVersionErr(KindWrongVersion, FormatV3, fmt.Errorf("pwsafe: file is V3, %s was requested", version))
		}
		open, err := s.attemptV3(passphrase)
		if err != nil {
			return nil, err
		}
		s.finish(FormatV3, open)
		return open, nil
	}

	marker := magic[0]
	rndPrefix := magic[1:4]
	if marker != classicalV1Marker && marker != classicalV2Marker {
		return nil, newErr(KindUnsupportedVersion, fmt.Errorf("pwsafe: unrecognised header"))
	}
	detected := FormatV1
	if marker == classicalV2Marker {
		detected = FormatV2
	}
	if version != FormatAny && version != detected {
		return nil, newVersionErr(KindWrongVersion, detected, fmt.Errorf("pwsafe: file is %s, %s was requested", detected, version))
	}
	open, err := s.attemptClassical(passphrase, detected, rndPrefix)
	if err != nil {
		return nil, err
	}
	s.finish(detected, open)
	return open, nil
}

func (s *HeaderSocket) finish(v Version, open *OpenHeader) {
	open.Version = v
	s.open = open
	s.state = socketOpen
}

func (s *HeaderSocket) attemptV3(passphrase *SecretString) (*OpenHeader, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(s.src, salt); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iterBuf := make([]byte, 4)
	if _, err := io.ReadFull(s.src, iterBuf); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iter := binary.LittleEndian.Uint32(iterBuf)
	if iter < minIterations || iter > maxIterations {
		return nil, newErr(KindCorruptStream, fmt.Errorf("pwsafe: iteration count %d out of range", iter))
	}

	storedHPM := make([]byte, 32)
	if _, err := io.ReadFull(s.src, storedHPM); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	b12 := make([]byte, 32)
	if _, err := io.ReadFull(s.src, b12); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	b34 := make([]byte, 32)
	if _, err := io.ReadFull(s.src, b34); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iv := make([]byte, 16)
	if _, err := io.ReadFull(s.src, iv); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}

	passBytes, err := passphrase.GetBytes(unicode.UTF8)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)
	passBytes, err = normalizeV3Passphrase(passBytes)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)

	pkey := derivePKey(s.prim, passBytes, salt, iter)
	defer wipe(pkey)

	hpm := sha256Sum(s.prim, pkey)
	if !constantEqual(hpm[:], storedHPM) {
		return nil, newVersionErr(KindInvalidPassphrase, FormatV3, fmt.Errorf("pwsafe: HPM mismatch"))
	}

	pkeyCipher, err := s.prim.NewCipher(pkey)
	if err != nil {
		return nil, err
	}
	fileKey := ecbDecrypt(pkeyCipher, b12)
	defer wipe(fileKey)
	hmacSeed := ecbDecrypt(pkeyCipher, b34)
	defer wipe(hmacSeed)

	cipher, err := s.prim.NewCipher(fileKey)
	if err != nil {
		return nil, err
	}
	s.cipher = cipher
	s.iv = iv
	s.checksum = s.prim.NewChecksum(hmacSeed)
	s.br = NewBlockReader(s.src, cipher, iv, s.checksum)

	fields := NewHeaderFieldList()
	fr := NewFieldStreamReader(s.br, FormatV3)
	for {
		f, end, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if end {
			break
		}
		fields.Set(f)
	}

	return &OpenHeader{Iterations: iter, HeaderFields: fields}, nil
}

func (s *HeaderSocket) attemptClassical(passphrase *SecretString, version Version, rndPrefix []byte) (*OpenHeader, error) {
	rndSuffix := make([]byte, 5)
	if _, err := io.ReadFull(s.src, rndSuffix); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}

	storedVerifier := make([]byte, 20)
	if _, err := io.ReadFull(s.src, storedVerifier); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	salt := make([]byte, 20)
	if _, err := io.ReadFull(s.src, salt); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iterBuf := make([]byte, 4)
	if _, err := io.ReadFull(s.src, iterBuf); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iter := binary.LittleEndian.Uint32(iterBuf)
	if version == FormatV1 {
		iter = 1
	} else if iter < minIterations || iter > maxIterations {
		return nil, newErr(KindCorruptStream, fmt.Errorf("pwsafe: iteration count %d out of range", iter))
	}

	bfk := make([]byte, 32)
	if _, err := io.ReadFull(s.src, bfk); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}
	iv := make([]byte, 8)
	if _, err := io.ReadFull(s.src, iv); err != nil {
		return nil, newErr(KindCorruptStream, err)
	}

	passBytes, err := passphrase.GetBytes(unicode.UTF8)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)

	pkey := derivePKey(s.prim, passBytes, salt, iter)
	defer wipe(pkey)

	verifier := sha1.Sum(pkey)
	if !constantEqual(verifier[:], storedVerifier) {
		return nil, newVersionErr(KindInvalidPassphrase, version, fmt.Errorf("pwsafe: classical verifier mismatch"))
	}

	pkeyCipher, err := s.prim.NewLegacyCipher(pkey)
	if err != nil {
		return nil, err
	}
	fileKey := ecbDecrypt(pkeyCipher, bfk)
	defer wipe(fileKey)

	cipher, err := s.prim.NewLegacyCipher(fileKey)
	if err != nil {
		return nil, err
	}
	s.cipher = cipher
	s.iv = iv
	s.br = NewBlockReader(s.src, cipher, iv, nil)

	open := &OpenHeader{Iterations: iter}
	if version == FormatV2 {
		fr := NewFieldStreamReader(s.br, FormatV2)
		f, end, err := fr.Next()
		if err != nil {
			return nil, err
		}
		if !end && f.Type == v2OptionsFieldType {
			open.Options = string(f.Payload())
			open.Charset = resolveV2Charset(open.Options)
		}
	}
	return open, nil
}

// BlockReader returns the raw cleartext BlockReader positioned after
// the header (and, for V3, after the header field list). Only one of
// BlockReader or FieldReader may be drawn from an Open socket.
func (s *HeaderSocket) BlockReader() (*BlockReader, error) {
	if err := s.markConsumed(); err != nil {
		return nil, err
	}
	return s.br, nil
}

// FieldReader returns a FieldStreamReader over the record field
// stream. Only one of BlockReader or FieldReader may be drawn from an
// Open socket.
func (s *HeaderSocket) FieldReader() (*FieldStreamReader, error) {
	if err := s.markConsumed(); err != nil {
		return nil, err
	}
	return NewFieldStreamReader(s.br, s.open.Version), nil
}

func (s *HeaderSocket) markConsumed() error {
	if s.state != socketOpen {
		return newErr(KindIllegalState, fmt.Errorf("pwsafe: header socket is not open"))
	}
	s.state = socketConsumed
	return nil
}

// VerifyTrailer reads the V3 EOF marker and trailer digest (§6.1) and
// compares it against the checksum accumulated while reading the
// header fields and records, returning whether they match. It is a
// no-op (true, nil) for V1/V2, which carry no trailer.
func (s *HeaderSocket) VerifyTrailer() (bool, error) {
	if s.open == nil || s.open.Version != FormatV3 {
		return true, nil
	}
	marker := make([]byte, 16)
	if _, err := io.ReadFull(s.src, marker); err != nil {
		return false, newErr(KindCorruptStream, err)
	}
	if string(marker) != v3TrailerMarker {
		return false, newErr(KindCorruptStream, fmt.Errorf("pwsafe: missing EOF marker"))
	}
	storedDigest := make([]byte, 32)
	if _, err := io.ReadFull(s.src, storedDigest); err != nil {
		return false, newErr(KindCorruptStream, err)
	}
	computed := s.checksum.Sum()
	return constantEqual(computed[:], storedDigest), nil
}

// normalizeV3Passphrase applies SASLprep (RFC 4013) to a V3
// passphrase before key derivation, matching the teacher's own R6
// password preparation and avoiding platform-dependent Unicode
// normalisation differences between the machine that saved a vault
// and the one that opens it.
func normalizeV3Passphrase(passphrase []byte) ([]byte, error) {
	prepared, err := stringprep.SASLprep.Prepare(string(passphrase))
	if err != nil {
		return nil, newErr(KindUnsupportedEncoding, err)
	}
	return []byte(prepared), nil
}

func derivePKey(prim *Primitives, passphrase, salt []byte, iter uint32) []byte {
	h := prim.NewHash()
	h.Update(passphrase)
	h.Update(salt)
	x := h.Sum()
	for i := uint32(0); i < iter; i++ {
		h.Reset()
		h.Update(x[:])
		x = h.Sum()
	}
	out := make([]byte, 32)
	copy(out, x[:])
	return out
}

func sha256Sum(prim *Primitives, data []byte) [32]byte {
	h := prim.NewHash()
	h.Update(data)
	return h.Sum()
}

func ecbDecrypt(c BlockCipher, data []byte) []byte {
	out := make([]byte, len(data))
	bs := c.BlockSize()
	for i := 0; i < len(data); i += bs {
		c.Decrypt(out[i:i+bs], data[i:i+bs])
	}
	return out
}

func ecbEncrypt(c BlockCipher, data []byte) []byte {
	out := make([]byte, len(data))
	bs := c.BlockSize()
	for i := 0; i < len(data); i += bs {
		c.Encrypt(out[i:i+bs], data[i:i+bs])
	}
	return out
}

func constantEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// resolveV2Charset implements §4.4: UTF-8 iff the options string
// contains the literal marker "B 24 1", else the platform default.
func resolveV2Charset(options string) string {
	if strings.Contains(options, "B 24 1") {
		return "utf-8"
	}
	return platformDefaultCharset
}

// HeaderWriter is the write-side counterpart of HeaderSocket: it
// writes a fresh header, then hands out a FieldWriter for the header
// field list (V3) or options pseudo-field (V2) and the record stream,
// and finally the trailer (V3 only).
type HeaderWriter struct {
	dst      io.Writer
	prim     *Primitives
	version  Version
	bw       *BlockWriter
	checksum Checksum
}

// NewV3HeaderWriter writes a complete V3 header (magic, salt,
// iterations, HPM, B12, B34, IV) and the header field list, returning
// a HeaderWriter ready to serialise records.
func NewV3HeaderWriter(dst io.Writer, prim *Primitives, passphrase *SecretString, iterations uint32, fields *HeaderFieldList) (*HeaderWriter, error) {
	if iterations < minIterations || iterations > maxIterations {
		return nil, newErr(KindCorruptStream, fmt.Errorf("pwsafe: iteration count %d out of range", iterations))
	}
	salt := prim.RNG.NextBytes(32)
	fileKey := prim.RNG.NextBytes(32)
	defer wipe(fileKey)
	hmacSeed := prim.RNG.NextBytes(32)
	iv := prim.RNG.NextBytes(16)

	passBytes, err := passphrase.GetBytes(unicode.UTF8)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)
	passBytes, err = normalizeV3Passphrase(passBytes)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)

	pkey := derivePKey(prim, passBytes, salt, iterations)
	defer wipe(pkey)
	hpm := sha256Sum(prim, pkey)

	pkeyCipher, err := prim.NewCipher(pkey)
	if err != nil {
		return nil, err
	}
	b12 := ecbEncrypt(pkeyCipher, fileKey)
	b34 := ecbEncrypt(pkeyCipher, hmacSeed)

	iterBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(iterBuf, iterations)

	for _, chunk := range [][]byte{[]byte(v3Magic), salt, iterBuf, hpm[:], b12, b34, iv} {
		if _, err := dst.Write(chunk); err != nil {
			return nil, wrapIo("write header", err)
		}
	}

	cipher, err := prim.NewCipher(fileKey)
	if err != nil {
		return nil, err
	}
	checksum := prim.NewChecksum(hmacSeed)
	defer wipe(hmacSeed)

	bw := NewBlockWriter(dst, cipher, iv, checksum)
	fw := NewFieldStreamWriter(bw, FormatV3, prim.RNG)
	if fields != nil {
		for _, f := range fields.Fields() {
			if err := fw.WriteField(f); err != nil {
				return nil, err
			}
		}
	}
	if err := fw.WriteEndOfRecord(); err != nil {
		return nil, err
	}

	return &HeaderWriter{dst: dst, prim: prim, version: FormatV3, bw: bw, checksum: checksum}, nil
}

// NewClassicalHeaderWriter writes a complete V1 or V2 header and, for
// V2, the leading options pseudo-field.
func NewClassicalHeaderWriter(dst io.Writer, prim *Primitives, passphrase *SecretString, version Version, iterations uint32, options string) (*HeaderWriter, error) {
	var marker byte
	switch version {
	case FormatV1:
		marker = classicalV1Marker
		iterations = 1
	case FormatV2:
		marker = classicalV2Marker
		if iterations < minIterations || iterations > maxIterations {
			return nil, newErr(KindCorruptStream, fmt.Errorf("pwsafe: iteration count %d out of range", iterations))
		}
	default:
		return nil, newErr(KindUnsupportedVersion, fmt.Errorf("pwsafe: %s is not a classical dialect", version))
	}

	rnd := prim.RNG.NextBytes(8)
	salt := prim.RNG.NextBytes(20)
	fileKey := prim.RNG.NextBytes(32)
	defer wipe(fileKey)
	iv := prim.RNG.NextBytes(8)

	passBytes, err := passphrase.GetBytes(unicode.UTF8)
	if err != nil {
		return nil, err
	}
	defer wipe(passBytes)

	pkey := derivePKey(prim, passBytes, salt, iterations)
	defer wipe(pkey)
	verifier := sha1.Sum(pkey)

	pkeyCipher, err := prim.NewLegacyCipher(pkey)
	if err != nil {
		return nil, err
	}
	bfk := ecbEncrypt(pkeyCipher, fileKey)

	iterBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(iterBuf, iterations)

	header := make([]byte, 0, 1+8+20+20+4+32+8)
	header = append(header, marker)
	header = append(header, rnd...)
	header = append(header, verifier[:]...)
	header = append(header, salt...)
	header = append(header, iterBuf...)
	header = append(header, bfk...)
	header = append(header, iv...)
	if _, err := dst.Write(header); err != nil {
		return nil, wrapIo("write header", err)
	}

	cipher, err := prim.NewLegacyCipher(fileKey)
	if err != nil {
		return nil, err
	}
	bw := NewBlockWriter(dst, cipher, iv, nil)

	if version == FormatV2 {
		fw := NewFieldStreamWriter(bw, FormatV2, prim.RNG)
		opt := []byte(options)
		if err := fw.WriteField(RawField{Type: v2OptionsFieldType, Length: uint32(len(opt)), Data: opt}); err != nil {
			return nil, err
		}
	}

	return &HeaderWriter{dst: dst, prim: prim, version: version, bw: bw}, nil
}

// FieldWriter returns a FieldStreamWriter over the record stream.
func (w *HeaderWriter) FieldWriter() *FieldStreamWriter {
	return NewFieldStreamWriter(w.bw, w.version, w.prim.RNG)
}

// WriteTrailer writes the V3 EOF marker and HMAC-equivalent digest
// (§6.1). It is a no-op for V1/V2.
func (w *HeaderWriter) WriteTrailer() error {
	if w.version != FormatV3 {
		return nil
	}
	if _, err := w.dst.Write([]byte(v3TrailerMarker)); err != nil {
		return wrapIo("write trailer marker", err)
	}
	digest := w.checksum.Sum()
	if _, err := w.dst.Write(digest[:]); err != nil {
		return wrapIo("write trailer digest", err)
	}
	return nil
}

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
	"fmt"
	"io"
)

// BlockReader reads ciphertext blocks from an underlying byte source,
// decrypts them with a CBC stream, and optionally feeds every
// cleartext block through an attached Checksum. One block is always
// pre-fetched (peeked) so EOF can be detected before the caller asks
// for data that does not exist.
type BlockReader struct {
	src       io.Reader
	cbc       *cbcStream
	blockSize int
	checksum  Checksum

	peek    []byte
	havePeek bool
	atEOF    bool
}

// NewBlockReader constructs a BlockReader over src, decrypting with
// cipher in CBC mode seeded by iv. checksum may be nil.
func NewBlockReader(src io.Reader, cipher BlockCipher, iv []byte, checksum Checksum) *BlockReader {
	r := &BlockReader{
		src:       src,
		cbc:       newCBCStream(cipher, iv),
		blockSize: cipher.BlockSize(),
		checksum:  checksum,
	}
	return r
}

func (r *BlockReader) fillPeek() error {
	if r.havePeek || r.atEOF {
		return nil
	}
	raw := make([]byte, r.blockSize)
	n, err := io.ReadFull(r.src, raw)
	switch {
	case err == io.EOF && n == 0:
		r.atEOF = true
		return nil
	case err == io.ErrUnexpectedEOF, err != nil && err != io.EOF && n > 0 && n < r.blockSize:
		return newErr(KindCorruptStream, fmt.Errorf("pwsafe: short block read (%d of %d bytes)", n, r.blockSize))
	case err != nil && err != io.EOF:
		return wrapIo("read block", err)
	}

	plain := make([]byte, r.blockSize)
	if err := r.cbc.decrypt(plain, raw); err != nil {
		return err
	}
	r.peek = plain
	r.havePeek = true
	return nil
}

// AtEOF reports whether the stream is exhausted: the pre-fetch found
// no further block.
func (r *BlockReader) AtEOF() (bool, error) {
	if err := r.fillPeek(); err != nil {
		return false, err
	}
	return r.atEOF, nil
}

// ReadBlocks returns exactly n*blocksize cleartext bytes, or fails
// with UnexpectedEof if the stream runs out first.
func (r *BlockReader) ReadBlocks(n int) ([]byte, error) {
	out := make([]byte, 0, n*r.blockSize)
	for i := 0; i < n; i++ {
		if err := r.fillPeek(); err != nil {
			return nil, err
		}
		if !r.havePeek {
			return nil, newErr(KindUnexpectedEof, fmt.Errorf("pwsafe: expected %d blocks, stream ended after %d", n, i))
		}
		block := r.peek
		r.peek = nil
		r.havePeek = false
		if r.checksum != nil {
			r.checksum.Update(block)
		}
		out = append(out, block...)
	}
	return out, nil
}

// BlockWriter encrypts and writes fixed-size ciphertext blocks to an
// underlying byte sink, zero-padding the final partial block. An
// attached Checksum sees only the user-supplied bytes, never the
// padding.
type BlockWriter struct {
	dst       io.Writer
	cbc       *cbcStream
	blockSize int
	checksum  Checksum
}

// NewBlockWriter constructs a BlockWriter over dst, encrypting with
// cipher in CBC mode seeded by iv. checksum may be nil.
func NewBlockWriter(dst io.Writer, cipher BlockCipher, iv []byte, checksum Checksum) *BlockWriter {
	return &BlockWriter{
		dst:       dst,
		cbc:       newCBCStream(cipher, iv),
		blockSize: cipher.BlockSize(),
		checksum:  checksum,
	}
}

// WriteBlocks zero-pads data to a block boundary and writes the
// encrypted result.
func (w *BlockWriter) WriteBlocks(data []byte) error {
	if w.checksum != nil && len(data) > 0 {
		w.checksum.Update(data)
	}

	padded := len(data)
	if rem := padded % w.blockSize; rem != 0 {
		padded += w.blockSize - rem
	}
	if padded == 0 {
		return nil
	}
	buf := make([]byte, padded)
	copy(buf, data)

	cipherText := make([]byte, padded)
	if err := w.cbc.encrypt(cipherText, buf); err != nil {
		return err
	}
	if _, err := w.dst.Write(cipherText); err != nil {
		return wrapIo("write block", err)
	}
	return nil
}

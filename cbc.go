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
	"crypto/cipher"
	"fmt"
)

// cbcDirection tracks which way a cbcStream has been used. Per
// spec.md §4.1, once a direction is used the opposite direction must
// fail: the chaining state is a single-writer resource.
type cbcDirection int8

const (
	cbcUnset cbcDirection = iota
	cbcEncrypting
	cbcDecrypting
)

// cbcStream wraps a BlockCipher with a one-block IV to provide CBC
// chaining across successive calls in a single direction.
type cbcStream struct {
	block     BlockCipher
	iv        []byte
	mode      cipher.BlockMode
	direction cbcDirection
}

func newCBCStream(block BlockCipher, iv []byte) *cbcStream {
	ivCopy := make([]byte, len(iv))
	copy(ivCopy, iv)
	return &cbcStream{block: block, iv: ivCopy}
}

func (s *cbcStream) blockSize() int {
	return s.block.BlockSize()
}

// encrypt CBC-encrypts src into dst, both sized at a multiple of the
// block size. Fails if this stream has already been used to decrypt.
func (s *cbcStream) encrypt(dst, src []byte) error {
	if s.direction == cbcDecrypting {
		return newErr(KindIllegalState, fmt.Errorf("pwsafe: cbc stream already used for decryption"))
	}
	if len(src)%s.blockSize() != 0 {
		return newErr(KindCorruptStream, fmt.Errorf("pwsafe: input length %d not a multiple of block size %d", len(src), s.blockSize()))
	}
	if s.direction == cbcUnset {
		s.mode = cipher.NewCBCEncrypter(s.block, s.iv)
		s.direction = cbcEncrypting
	}
	s.mode.CryptBlocks(dst, src)
	return nil
}

// decrypt CBC-decrypts src into dst. Fails if this stream has already
// been used to encrypt.
func (s *cbcStream) decrypt(dst, src []byte) error {
	if s.direction == cbcEncrypting {
		return newErr(KindIllegalState, fmt.Errorf("pwsafe: cbc stream already used for encryption"))
	}
	if len(src)%s.blockSize() != 0 {
		return newErr(KindCorruptStream, fmt.Errorf("pwsafe: input length %d not a multiple of block size %d", len(src), s.blockSize()))
	}
	if s.direction == cbcUnset {
		s.mode = cipher.NewCBCDecrypter(s.block, s.iv)
		s.direction = cbcDecrypting
	}
	s.mode.CryptBlocks(dst, src)
	return nil
}

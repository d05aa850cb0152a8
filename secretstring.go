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
	"crypto/subtle"
	"unicode/utf16"

	"golang.org/x/text/encoding"
)

// sessionKeyBytes is the Twofish key size used to encrypt
// SecretString buffers at rest in memory. 32 bytes selects Twofish's
// strongest key schedule.
const sessionKeyBytes = 32

// SecretString holds a sequence of Unicode scalar values (as UTF-16
// code units, little-endian in the encrypted buffer) always encrypted
// by a cipher tied to the instance. Methods wipe their internal
// cleartext buffers before returning; GetChars hands its cleartext
// buffer to the caller, and String returns an ordinary Go string.
type SecretString struct {
	cipher     BlockCipher
	length     int // number of uint16 code units
	ciphertext []byte
	rng        CryptoRandom
}

// NewSecretString builds a SecretString holding s, using prim for the
// session cipher and padding randomness.
func NewSecretString(s string, prim *Primitives) *SecretString {
	units := utf16.Encode([]rune(s))
	ss := newEmptySecretString(prim)
	ss.setFromChars(units, 0, len(units))
	return ss
}

// NewEmptySecretString returns a zero-length SecretString tied to a
// fresh session cipher.
func NewEmptySecretString(prim *Primitives) *SecretString {
	return newEmptySecretString(prim)
}

func newEmptySecretString(prim *Primitives) *SecretString {
	key := prim.RNG.NextBytes(sessionKeyBytes)
	defer wipe(key)
	c, err := prim.NewCipher(key)
	if err != nil {
		// DefaultPrimitives always accepts a 32-byte key; a custom
		// Primitives that rejects it is a configuration error the
		// caller must fix, not a recoverable I/O condition.
		panic(err)
	}
	return &SecretString{cipher: c, rng: prim.RNG}
}

// Len returns the number of UTF-16 code units stored. A zero-length
// SecretString marshals to empty. Records keep a zero-length password
// as an empty SecretString; it is not converted to nil.
func (ss *SecretString) Len() int {
	return ss.length
}

// SetFromChars re-encrypts ss to hold src[off : off+length]. Any
// previous ciphertext buffer is discarded.
func (ss *SecretString) SetFromChars(src []uint16, off, length int) {
	ss.setFromChars(src, off, length)
}

func (ss *SecretString) setFromChars(src []uint16, off, length int) {
	plain := make([]byte, length*2)
	for i := 0; i < length; i++ {
		v := src[off+i]
		plain[2*i] = byte(v)
		plain[2*i+1] = byte(v >> 8)
	}
	defer wipe(plain)

	bs := ss.cipher.BlockSize()
	padded := len(plain)
	if rem := padded % bs; rem != 0 {
		padded += bs - rem
	}
	if padded == 0 {
		ss.length = 0
		ss.ciphertext = nil
		return
	}
	buf := make([]byte, padded)
	copy(buf, plain)
	if extra := padded - len(plain); extra > 0 {
		copy(buf[len(plain):], ss.rng.NextBytes(extra))
	}
	defer wipe(buf)

	cipherText := make([]byte, padded)
	for i := 0; i < padded; i += bs {
		ss.cipher.Encrypt(cipherText[i:i+bs], buf[i:i+bs])
	}

	ss.length = length
	ss.ciphertext = cipherText
}

// GetChars decrypts and returns a transient buffer of code units. The
// caller is expected to wipe it after use; all in-library consumers
// do.
func (ss *SecretString) GetChars() []uint16 {
	if ss.length == 0 {
		return nil
	}
	bs := ss.cipher.BlockSize()
	plain := make([]byte, len(ss.ciphertext))
	for i := 0; i < len(ss.ciphertext); i += bs {
		ss.cipher.Decrypt(plain[i:i+bs], ss.ciphertext[i:i+bs])
	}
	defer wipe(plain)

	out := make([]uint16, ss.length)
	for i := range out {
		out[i] = uint16(plain[2*i]) | uint16(plain[2*i+1])<<8
	}
	return out
}

// GetBytes decrypts the stored value and encodes it with enc (used
// for the V2 on-disk charset, UTF-8 or a platform default).
func (ss *SecretString) GetBytes(enc encoding.Encoding) ([]byte, error) {
	units := ss.GetChars()
	defer wipeUint16(units)
	s := string(utf16.Decode(units))
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, newErr(KindUnsupportedEncoding, err)
	}
	return out, nil
}

// Equals performs a constant-time comparison of the decrypted
// contents of ss and other. Both transient buffers are wiped before
// returning.
func (ss *SecretString) Equals(other *SecretString) bool {
	if ss.length != other.length {
		return false
	}
	a := ss.GetChars()
	b := other.GetChars()
	defer wipeUint16(a)
	defer wipeUint16(b)

	ab := make([]byte, len(a)*2)
	bb := make([]byte, len(b)*2)
	for i, v := range a {
		ab[2*i] = byte(v)
		ab[2*i+1] = byte(v >> 8)
	}
	for i, v := range b {
		bb[2*i] = byte(v)
		bb[2*i+1] = byte(v >> 8)
	}
	defer wipe(ab)
	defer wipe(bb)

	return subtle.ConstantTimeCompare(ab, bb) == 1
}

// String decrypts and returns a Go string copy. Unlike GetChars, this
// cannot be wiped by the caller since Go strings are immutable; use
// sparingly, and prefer GetChars/GetBytes on hot secret-handling
// paths.
func (ss *SecretString) String() string {
	units := ss.GetChars()
	defer wipeUint16(units)
	return string(utf16.Decode(units))
}

// Clone returns an independent copy of ss. The underlying cipher
// (stateless ECB) is shared; the ciphertext buffer is not.
func (ss *SecretString) Clone() *SecretString {
	ct := make([]byte, len(ss.ciphertext))
	copy(ct, ss.ciphertext)
	return &SecretString{cipher: ss.cipher, length: ss.length, ciphertext: ct, rng: ss.rng}
}

func wipeUint16(buf []uint16) {
	for i := range buf {
		buf[i] = 0
	}
}

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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockWriterReaderRoundTripV3(t *testing.T) {
	prim := DefaultPrimitives()
	key := prim.RNG.NextBytes(32)
	cipher, err := prim.NewCipher(key)
	require.NoError(t, err)
	iv := prim.RNG.NextBytes(cipher.BlockSize())

	var buf bytes.Buffer
	seed := prim.RNG.NextBytes(32)
	writeChecksum := prim.NewChecksum(seed)
	bw := NewBlockWriter(&buf, cipher, iv, writeChecksum)

	payload := []byte("a field payload that spans more than one sixteen byte block")
	require.NoError(t, bw.WriteBlocks(payload))

	readCipher, err := prim.NewCipher(key)
	require.NoError(t, err)
	readChecksum := prim.NewChecksum(seed)
	br := NewBlockReader(&buf, readCipher, iv, readChecksum)

	nblocks := len(payload) / cipher.BlockSize()
	if len(payload)%cipher.BlockSize() != 0 {
		nblocks++
	}
	got, err := br.ReadBlocks(nblocks)
	require.NoError(t, err)
	require.Equal(t, payload, got[:len(payload)])
	// The writer checksums the bytes it was handed; the reader checksums
	// every decrypted block, zero padding included.
	wantWrite := prim.NewChecksum(seed)
	wantWrite.Update(payload)
	require.Equal(t, wantWrite.Sum(), writeChecksum.Sum())
	padded := make([]byte, nblocks*cipher.BlockSize())
	copy(padded, payload)
	wantRead := prim.NewChecksum(seed)
	wantRead.Update(padded)
	require.Equal(t, wantRead.Sum(), readChecksum.Sum())

	atEOF, err := br.AtEOF()
	require.NoError(t, err)
	require.True(t, atEOF)
}

func TestBlockReaderUnexpectedEOF(t *testing.T) {
	prim := DefaultPrimitives()
	key := prim.RNG.NextBytes(16)
	cipher, err := prim.NewLegacyCipher(key)
	require.NoError(t, err)
	iv := prim.RNG.NextBytes(cipher.BlockSize())

	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, cipher, iv, nil)
	require.NoError(t, bw.WriteBlocks([]byte("short")))

	readCipher, err := prim.NewLegacyCipher(key)
	require.NoError(t, err)
	br := NewBlockReader(&buf, readCipher, iv, nil)

	_, err = br.ReadBlocks(5)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, KindUnexpectedEof, perr.Kind)
}

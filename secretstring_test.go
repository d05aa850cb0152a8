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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestSecretStringRoundTrip(t *testing.T) {
	prim := DefaultPrimitives()
	ss := NewSecretString("hunter2", prim)
	assert.Equal(t, 7, ss.Len())
	assert.Equal(t, "hunter2", ss.String())
}

func TestSecretStringEmpty(t *testing.T) {
	prim := DefaultPrimitives()
	ss := NewEmptySecretString(prim)
	assert.Equal(t, 0, ss.Len())
	assert.Equal(t, "", ss.String())
}

func TestSecretStringEquals(t *testing.T) {
	prim := DefaultPrimitives()
	a := NewSecretString("correct horse", prim)
	b := NewSecretString("correct horse", prim)
	c := NewSecretString("battery staple", prim)
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestSecretStringCloneIsIndependent(t *testing.T) {
	prim := DefaultPrimitives()
	a := NewSecretString("original", prim)
	b := a.Clone()
	b.SetFromChars([]uint16{'x'}, 0, 1)
	assert.Equal(t, "original", a.String())
	assert.Equal(t, "x", b.String())
}

func TestSecretStringGetBytesUTF8(t *testing.T) {
	prim := DefaultPrimitives()
	ss := NewSecretString("Zoë", prim)
	out, err := ss.GetBytes(unicode.UTF8)
	require.NoError(t, err)
	assert.Equal(t, "Zoë", string(out))
}

func TestSecretStringGetCharsHandsBufferToCaller(t *testing.T) {
	prim := DefaultPrimitives()
	ss := NewSecretString("sensitive", prim)
	chars := ss.GetChars()
	// simulate caller's own hygiene discipline, matching every
	// in-library consumer
	defer wipeUint16(chars)
	assert.NotEmpty(t, chars)
}

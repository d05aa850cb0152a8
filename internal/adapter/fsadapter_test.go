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

package adapter

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemAdapterWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	ra := NewFilesystemAdapter()

	sink, err := ra.OpenWrite(path)
	require.NoError(t, err)
	_, err = sink.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.True(t, ra.Exists(path))
	assert.Equal(t, int64(5), ra.Length(path))

	src, err := ra.OpenRead(path)
	require.NoError(t, err)
	defer src.Close()
	got, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestFilesystemAdapterDeleteAndRename(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "from.txt")
	to := filepath.Join(dir, "to.txt")
	ra := NewFilesystemAdapter()

	require.NoError(t, os.WriteFile(from, []byte("x"), 0o600))
	assert.True(t, ra.Rename(from, to))
	assert.False(t, ra.Exists(from))
	assert.True(t, ra.Exists(to))

	assert.True(t, ra.Delete(to))
	assert.False(t, ra.Exists(to))
}

func TestFilesystemAdapterMissingFile(t *testing.T) {
	dir := t.TempDir()
	ra := NewFilesystemAdapter()
	missing := filepath.Join(dir, "nope.txt")

	assert.False(t, ra.Exists(missing))
	assert.Equal(t, int64(-1), ra.Length(missing))
	assert.Equal(t, int64(0), ra.Modified(missing))
	assert.False(t, ra.Delete(missing))
}

func TestFilesystemAdapterURLAndSeparator(t *testing.T) {
	ra := NewFilesystemAdapter()
	assert.Equal(t, filepath.Separator, ra.Separator())

	u := ra.URL("vault.psafe3")
	assert.Contains(t, u, "file://")
}

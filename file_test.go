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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kse2/pwsafe/internal/adapter"
	"github.com/kse2/pwsafe/internal/config"
)

func newTestFile(t *testing.T) (*File, string) {
	t.Helper()
	dir := t.TempDir()
	ra := adapter.NewFilesystemAdapter()
	opts := NewFileOptions(config.Defaults(), ra)
	opts.DefaultIterations = minIterations
	f := NewFile(opts)
	return f, filepath.Join(dir, "vault.psafe3")
}

func TestFileSaveLoadRoundTripV3(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("correct horse battery staple", f.opts.Primitives)

	rec := NewRecord(f.opts.Primitives)
	rec.Title = "bank"
	rec.Username = "alice"
	rec.Password = NewSecretString("s3cret", f.opts.Primitives)
	require.NoError(t, f.Records.Add(rec))

	require.NoError(t, f.Save(path, pass, false))
	assert.True(t, f.ChecksumOK)

	loaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	require.NoError(t, loaded.Load(path, pass, FormatAny))
	assert.True(t, loaded.ChecksumOK)
	assert.Equal(t, FormatV3, loaded.Version())
	assert.Equal(t, 1, loaded.Records.Len())

	got, ok := loaded.Records.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "bank", got.Title)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "s3cret", got.Password.String())
}

func TestFileSaveLoadRoundTripClassical(t *testing.T) {
	f, path := newTestFile(t)
	f.SetVersion(FormatV1)
	pass := NewSecretString("classicpass", f.opts.Primitives)

	rec := &Record{Title: "mail", Username: "bob", Password: NewSecretString("hunter2", f.opts.Primitives)}
	rec.ID = NewRecordID(f.opts.Primitives.RNG)
	require.NoError(t, f.Records.Add(rec))

	require.NoError(t, f.Save(path, pass, false))

	loaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	require.NoError(t, loaded.Load(path, pass, FormatV1))
	assert.Equal(t, FormatV1, loaded.Version())
	assert.Equal(t, 1, loaded.Records.Len())
}

func TestFileLoadWrongPassphraseFails(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	loaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	err := loaded.Load(path, NewSecretString("wrong", f.opts.Primitives), FormatAny)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindInvalidPassphrase, perr.Kind)
}

func TestFileLoadCorruptTrailerReportsChecksumMismatch(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	require.NoError(t, loaded.Load(path, pass, FormatAny))
	assert.False(t, loaded.ChecksumOK)
}

func TestFileSaveCleansUpTempFile(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	_, err := os.Stat(path + tempSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFileSavePreservesOldOnRequest(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	require.NoError(t, f.Records.Add(NewRecord(f.opts.Primitives)))
	require.NoError(t, f.Save(path, pass, true))

	_, err := os.Stat(path + oldSuffix)
	assert.NoError(t, err)
}

func TestFileSavePreservesOldOnFormatChange(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	f.SetVersion(FormatV1)
	require.NoError(t, f.Save(path, pass, false))

	_, err := os.Stat(path + oldSuffix)
	assert.NoError(t, err)
}

func TestFileSaveWithoutPathUsesLoadedPath(t *testing.T) {
	f, path := newTestFile(t)
	pass := NewSecretString("right", f.opts.Primitives)
	require.NoError(t, f.Save(path, pass, false))

	loaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	require.NoError(t, loaded.Load(path, pass, FormatAny))
	require.NoError(t, loaded.Records.Add(NewRecord(loaded.opts.Primitives)))
	require.NoError(t, loaded.Save("", pass, false))

	reloaded := NewFile(NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter()))
	require.NoError(t, reloaded.Load(path, pass, FormatAny))
	assert.Equal(t, 1, reloaded.Records.Len())
}

func TestFileSaveWithNoPathAndNoPriorLoadFails(t *testing.T) {
	f, _ := newTestFile(t)
	err := f.Save("", NewSecretString("x", f.opts.Primitives), false)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindIllegalState, perr.Kind)
}

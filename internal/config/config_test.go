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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, uint32(2048), d.DefaultIterations)
	assert.Equal(t, "windows-1252", d.DefaultCharset)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pwsafe.yaml")
	contents := "default_iterations: 4096\nmax_iterations: 100000\ndefault_charset: utf-8\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), got.DefaultIterations)
	assert.Equal(t, uint32(100000), got.MaxIterations)
	assert.Equal(t, "utf-8", got.DefaultCharset)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("PWSAFE_DEFAULT_ITERATIONS", "8192")
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint32(8192), got.DefaultIterations)
}

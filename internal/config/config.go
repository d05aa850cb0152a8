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

// Package config loads the scalar tunables of FileFacadeOptions from
// a config file or environment, per the "global singletons become
// explicit configuration" design note: concrete collaborators
// (cipher, adapter, rng) are never sourced from here, only scalars.
package config

import "github.com/spf13/viper"

// FileFacadeOptions are the scalar knobs a File facade needs at
// construction time.
type FileFacadeOptions struct {
	DefaultIterations uint32
	MaxIterations     uint32
	DefaultCharset    string
}

// Defaults returns the library's built-in tunables, used when no
// config file or environment override is present.
func Defaults() FileFacadeOptions {
	return FileFacadeOptions{
		DefaultIterations: 2048,
		MaxIterations:     2048 * 2048 * 100,
		DefaultCharset:    "windows-1252",
	}
}

// Load reads FileFacadeOptions from configPath (if non-empty) and the
// PWSAFE_-prefixed environment, falling back to Defaults for anything
// unset.
func Load(configPath string) (FileFacadeOptions, error) {
	v := viper.New()
	v.SetEnvPrefix("PWSAFE")
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("default_iterations", defaults.DefaultIterations)
	v.SetDefault("max_iterations", defaults.MaxIterations)
	v.SetDefault("default_charset", defaults.DefaultCharset)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return FileFacadeOptions{}, err
		}
	}

	return FileFacadeOptions{
		DefaultIterations: v.GetUint32("default_iterations"),
		MaxIterations:     v.GetUint32("max_iterations"),
		DefaultCharset:    v.GetString("default_charset"),
	}, nil
}

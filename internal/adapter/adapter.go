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

// Package adapter defines the ResourceAdapter back-end storage
// interface and its implementations: local filesystem, S3, and (on
// darwin) an OS-keychain passphrase source.
package adapter

import "io"

// ByteSource is a rewindable input stream, closeable once the caller
// is done with it.
type ByteSource interface {
	io.Reader
	io.Seeker
	io.Closer
}

// ByteSink is an output stream, closeable once the caller is done
// writing.
type ByteSink interface {
	io.Writer
	io.Closer
}

// ResourceAdapter is the back-end storage interface the core consumes
// (§6.4): everything the FileFacade needs to load, save, and
// safe-swap a vault, without knowing whether the bytes live on a local
// disk, in an S3 bucket, or elsewhere.
type ResourceAdapter interface {
	OpenRead(path string) (ByteSource, error)
	OpenWrite(path string) (ByteSink, error)
	Exists(path string) bool
	Delete(path string) bool
	Rename(from, to string) bool
	Length(path string) int64 // -1 if unknown
	Modified(path string) int64 // unix seconds, 0 if unknown
	CanWrite(path string) bool
	CanDelete(path string) bool
	Separator() rune
	URL(path string) string
}

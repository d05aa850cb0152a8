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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FilesystemAdapter implements ResourceAdapter over the local disk.
type FilesystemAdapter struct {
	log *logrus.Entry
}

// NewFilesystemAdapter returns a ResourceAdapter rooted at the local
// filesystem.
func NewFilesystemAdapter() *FilesystemAdapter {
	return &FilesystemAdapter{log: logrus.NewEntry(logrus.StandardLogger())}
}

func (a *FilesystemAdapter) OpenRead(path string) (ByteSource, error) {
	return os.Open(path)
}

func (a *FilesystemAdapter) OpenWrite(path string) (ByteSink, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
}

func (a *FilesystemAdapter) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (a *FilesystemAdapter) Delete(path string) bool {
	if err := os.Remove(path); err != nil {
		a.log.WithError(err).WithField("path", path).Warn("delete failed")
		return false
	}
	return true
}

func (a *FilesystemAdapter) Rename(from, to string) bool {
	if err := os.Rename(from, to); err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Warn("rename failed")
		return false
	}
	return true
}

func (a *FilesystemAdapter) Length(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

func (a *FilesystemAdapter) Modified(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

func (a *FilesystemAdapter) CanWrite(path string) bool {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()&0o200 != 0
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return false
	}
	return dirInfo.Mode().Perm()&0o200 != 0
}

func (a *FilesystemAdapter) CanDelete(path string) bool {
	return a.CanWrite(path)
}

func (a *FilesystemAdapter) Separator() rune {
	return filepath.Separator
}

func (a *FilesystemAdapter) URL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

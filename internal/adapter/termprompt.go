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
	"fmt"

	"golang.org/x/term"
)

// ReadPassphraseFromTerminal reads a line from fd with echo disabled,
// for callers prompting interactively at a real terminal. It returns
// an error if fd is not a terminal (e.g. input piped from a file or
// another process), since a non-interactive caller should source the
// passphrase some other way rather than block on stdin.
func ReadPassphraseFromTerminal(fd int) ([]byte, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("pwsafe: fd %d is not a terminal", fd)
	}
	return term.ReadPassword(fd)
}

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
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// platformDefaultCharset is the V2 charset name used when the options
// string does not request UTF-8 (§4.4). Windows-1252 is the charset
// the classical desktop client used on the platform that originated
// the format.
const platformDefaultCharset = "windows-1252"

// ResolveEncoding maps a V2 charset name, as produced by
// resolveV2Charset, to the x/text Encoding used by
// SecretString.GetBytes and the record codec for text fields.
func ResolveEncoding(charset string) encoding.Encoding {
	switch charset {
	case "utf-8":
		return unicode.UTF8
	case platformDefaultCharset:
		return charmap.Windows1252
	default:
		return charmap.Windows1252
	}
}

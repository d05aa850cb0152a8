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
	"encoding/hex"
	"fmt"
	"strings"
)

// RecordID is a 128-bit UUID identifying a Record within a
// RecordList. The zero RecordID is never valid for a stored record.
type RecordID [16]byte

// NewRecordID draws 16 random bytes from rng and sets the RFC 4122
// version/variant bits, matching the layout real UUIDs use even
// though nothing in this format requires strict RFC compliance.
func NewRecordID(rng CryptoRandom) RecordID {
	var id RecordID
	copy(id[:], rng.NextBytes(16))
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// IsZero reports whether id is the all-zero RecordID, which this
// library treats as "no id" (never a valid stored record).
func (id RecordID) IsZero() bool {
	return id == RecordID{}
}

// String renders the canonical "{xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}"
// form.
func (id RecordID) String() string {
	b := id[:]
	return fmt.Sprintf("{%s-%s-%s-%s-%s}",
		hex.EncodeToString(b[0:4]),
		hex.EncodeToString(b[4:6]),
		hex.EncodeToString(b[6:8]),
		hex.EncodeToString(b[8:10]),
		hex.EncodeToString(b[10:16]))
}

// ParseRecordID parses the canonical braced form or a bare
// "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" / 32-hex-digit form.
func ParseRecordID(s string) (RecordID, error) {
	var id RecordID
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 32 {
		return id, newErr(KindCorruptStream, fmt.Errorf("pwsafe: malformed record id %q", s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, newErr(KindCorruptStream, fmt.Errorf("pwsafe: malformed record id %q: %w", s, err))
	}
	copy(id[:], raw)
	return id, nil
}

// Less orders RecordIDs lexicographically by their raw bytes, used by
// RecordList to keep a stable, naturally-sorted iteration order.
func (id RecordID) Less(other RecordID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

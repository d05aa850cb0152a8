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

// Header field types recognised in the V3 header field list (§6.5's
// canonical registry, header subset). Unrecognised types are kept as
// opaque RawFields rather than rejected.
const (
	HeaderFieldVersion            uint8 = 0x00
	HeaderFieldFileUUID           uint8 = 0x01
	HeaderFieldNonDefaultPrefs    uint8 = 0x02
	HeaderFieldTreeDisplayStatus  uint8 = 0x03
	HeaderFieldLastSaveTime       uint8 = 0x04
	HeaderFieldLastSaveUser       uint8 = 0x07
	HeaderFieldLastSaveHost       uint8 = 0x08
	HeaderFieldDbName             uint8 = 0x09
	HeaderFieldDbDescription      uint8 = 0x0a
	HeaderFieldRecentlyUsed       uint8 = 0x0f
	HeaderFieldNamedPolicies      uint8 = 0x10
	HeaderFieldEmptyGroups        uint8 = 0x11
)

// HeaderFieldList is the ordered map from field type to RawField that
// a V3 header carries ahead of the record stream (§3). Insertion order
// is preserved so a round-tripped file keeps the original field order.
type HeaderFieldList struct {
	order []uint8
	byType map[uint8]RawField
}

// NewHeaderFieldList returns an empty list.
func NewHeaderFieldList() *HeaderFieldList {
	return &HeaderFieldList{byType: make(map[uint8]RawField)}
}

// Set stores f, appending to the order if its type is new.
func (l *HeaderFieldList) Set(f RawField) {
	if _, ok := l.byType[f.Type]; !ok {
		l.order = append(l.order, f.Type)
	}
	l.byType[f.Type] = f
}

// Get returns the field of the given type, if present.
func (l *HeaderFieldList) Get(typ uint8) (RawField, bool) {
	f, ok := l.byType[typ]
	return f, ok
}

// Remove deletes the field of the given type, if present.
func (l *HeaderFieldList) Remove(typ uint8) {
	if _, ok := l.byType[typ]; !ok {
		return
	}
	delete(l.byType, typ)
	for i, t := range l.order {
		if t == typ {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Fields returns the stored fields in insertion order.
func (l *HeaderFieldList) Fields() []RawField {
	out := make([]RawField, 0, len(l.order))
	for _, t := range l.order {
		out = append(out, l.byType[t])
	}
	return out
}

// Len returns the number of distinct field types stored.
func (l *HeaderFieldList) Len() int {
	return len(l.order)
}

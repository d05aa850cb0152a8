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
	"strings"
	"time"
)

// KeyboardShortcut modifier bits (§4.7 V3 keyboard-shortcut field).
const (
	ShortcutAlt   uint8 = 1
	ShortcutCtrl  uint8 = 2
	ShortcutShift uint8 = 4
	ShortcutAltGr uint8 = 8
	ShortcutMeta  uint8 = 16
)

// KeyboardShortcut is a V3 record's optional autotype-launch hotkey.
type KeyboardShortcut struct {
	Keycode   uint32
	Modifiers uint8
}

// Record is one password entry. A zero-value Record is not valid: ID
// must be set via NewRecord before use.
type Record struct {
	ID RecordID

	Group    string
	Title    string
	Username string
	Password *SecretString
	Notes    string

	// V3-only fields; zero values for V1/V2 records.
	Email            string
	URL              string
	Autotype         string
	History          string
	PassPolicy       []byte
	PassPolicyName   string
	ProtectedEntry   bool
	ExpiryInterval   uint32
	KeyboardShortcut KeyboardShortcut
	OwnerSymbols     string

	CreateTime   time.Time
	ModifyTime   time.Time
	AccessTime   time.Time
	PassModTime  time.Time
	PassLifeTime time.Time

	// UnknownFields preserves non-canonical RawFields read from
	// storage so a round-tripped save does not silently drop data
	// this module does not interpret (§4.7).
	UnknownFields []RawField
}

// NewRecord returns a Record with a freshly generated ID and an empty
// Password tied to prim's session cipher.
func NewRecord(prim *Primitives) *Record {
	return &Record{
		ID:       NewRecordID(prim.RNG),
		Password: NewEmptySecretString(prim),
	}
}

// NormalizeGroup collapses a dotted group path per §3: no leading or
// trailing '.', and no empty segments.
func NormalizeGroup(group string) string {
	parts := strings.Split(group, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// TruncateToSecond truncates t to second precision, per the time-field
// invariant in §3.
func TruncateToSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// SetGroup normalizes and stores group.
func (r *Record) SetGroup(group string) {
	r.Group = NormalizeGroup(group)
}

// SetCreateTime stores t truncated to second precision.
func (r *Record) SetCreateTime(t time.Time) { r.CreateTime = TruncateToSecond(t) }

// SetModifyTime stores t truncated to second precision.
func (r *Record) SetModifyTime(t time.Time) { r.ModifyTime = TruncateToSecond(t) }

// SetAccessTime stores t truncated to second precision.
func (r *Record) SetAccessTime(t time.Time) { r.AccessTime = TruncateToSecond(t) }

// SetPassModTime stores t truncated to second precision.
func (r *Record) SetPassModTime(t time.Time) { r.PassModTime = TruncateToSecond(t) }

// Clone returns a deep copy, per §3's "copied on entry and exit of
// RecordList" invariant.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Password != nil {
		cp.Password = r.Password.Clone()
	}
	if r.PassPolicy != nil {
		cp.PassPolicy = append([]byte(nil), r.PassPolicy...)
	}
	if r.UnknownFields != nil {
		cp.UnknownFields = make([]RawField, len(r.UnknownFields))
		for i, f := range r.UnknownFields {
			data := append([]byte(nil), f.Data...)
			cp.UnknownFields[i] = RawField{Type: f.Type, Length: f.Length, Data: data}
		}
	}
	return &cp
}

// Signature returns a stable per-record digest used by
// RecordList.Signature for content-change detection (§4.8). It covers
// every interpreted field of the record; UnknownFields are not
// included.
func (r *Record) Signature(prim *Primitives) [32]byte {
	h := prim.NewHash()
	h.Update(r.ID[:])
	h.Update([]byte(r.Group))
	h.Update([]byte(r.Title))
	h.Update([]byte(r.Username))
	if r.Password != nil {
		units := r.Password.GetChars()
		defer wipeUint16(units)
		for _, u := range units {
			h.Update([]byte{byte(u), byte(u >> 8)})
		}
	}
	h.Update([]byte(r.Notes))
	h.Update([]byte(r.Email))
	h.Update([]byte(r.URL))
	h.Update([]byte(r.Autotype))
	h.Update([]byte(r.History))
	h.Update(r.PassPolicy)
	h.Update([]byte(r.PassPolicyName))
	if r.ProtectedEntry {
		h.Update([]byte{1})
	}
	for _, t := range []time.Time{r.CreateTime, r.ModifyTime, r.AccessTime, r.PassModTime, r.PassLifeTime} {
		u := uint64(t.Unix())
		h.Update([]byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24), byte(u >> 32), byte(u >> 40), byte(u >> 48), byte(u >> 56)})
	}
	e := r.ExpiryInterval
	h.Update([]byte{byte(e), byte(e >> 8), byte(e >> 16), byte(e >> 24)})
	k := r.KeyboardShortcut
	h.Update([]byte{byte(k.Keycode), byte(k.Keycode >> 8), byte(k.Keycode >> 16), byte(k.Keycode >> 24), k.Modifiers})
	h.Update([]byte(r.OwnerSymbols))
	return h.Sum()
}

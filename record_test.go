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
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeGroup(t *testing.T) {
	cases := map[string]string{
		"a.b.c":   "a.b.c",
		".a.b.":   "a.b",
		"a..b":    "a.b",
		"":        "",
		"...":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeGroup(in), "input %q", in)
	}
}

func TestTruncateToSecond(t *testing.T) {
	t1 := time.Date(2026, 7, 31, 12, 0, 0, 500_000_000, time.UTC)
	got := TruncateToSecond(t1)
	assert.Equal(t, 0, got.Nanosecond())
}

func TestRecordCloneIsDeep(t *testing.T) {
	prim := DefaultPrimitives()
	rec := NewRecord(prim)
	rec.Title = "original"
	rec.PassPolicy = []byte{1, 2, 3}
	rec.UnknownFields = []RawField{{Type: 0x20, Length: 1, Data: []byte{9}}}

	clone := rec.Clone()
	clone.Title = "changed"
	clone.PassPolicy[0] = 99
	clone.UnknownFields[0].Data[0] = 77

	assert.Equal(t, "original", rec.Title)
	assert.Equal(t, byte(1), rec.PassPolicy[0])
	assert.Equal(t, byte(9), rec.UnknownFields[0].Data[0])
}

func TestRecordSignatureChangesWithContent(t *testing.T) {
	prim := DefaultPrimitives()
	rec := NewRecord(prim)
	rec.Title = "same title"
	sig1 := rec.Signature(prim)

	rec.Title = "different title"
	sig2 := rec.Signature(prim)
	assert.NotEqual(t, sig1, sig2)

	rec.Title = "same title"
	sig3 := rec.Signature(prim)
	assert.Equal(t, sig1, sig3)
}

// recordFields projects a subset of a Record's plain-data fields. It
// leaves out Password (whose internal representation holds ciphertext
// state not meaningful to compare structurally), PassPolicy,
// OwnerSymbols and the time fields.
type recordFields struct {
	ID                                          RecordID
	Group, Title, Username, Notes               string
	Email, URL, Autotype, History               string
	PassPolicyName                              string
	ProtectedEntry                               bool
	ExpiryInterval                               uint32
	KeyboardShortcut                             KeyboardShortcut
	UnknownFields                                []RawField
}

func projectFields(r *Record) recordFields {
	return recordFields{
		ID: r.ID, Group: r.Group, Title: r.Title, Username: r.Username, Notes: r.Notes,
		Email: r.Email, URL: r.URL, Autotype: r.Autotype, History: r.History,
		PassPolicyName: r.PassPolicyName, ProtectedEntry: r.ProtectedEntry,
		ExpiryInterval: r.ExpiryInterval, KeyboardShortcut: r.KeyboardShortcut,
		UnknownFields: r.UnknownFields,
	}
}

func TestRecordCloneMatchesOriginalFieldByField(t *testing.T) {
	prim := DefaultPrimitives()
	rec := NewRecord(prim)
	rec.Group = "g"
	rec.Title = "t"
	rec.Email = "e@x.com"
	rec.UnknownFields = []RawField{{Type: 1, Length: 1, Data: []byte{5}}}

	clone := rec.Clone()
	if diff := deep.Equal(projectFields(rec), projectFields(clone)); diff != nil {
		t.Fatalf("clone diverged from original: %v", diff)
	}
}

func TestRecordSetters(t *testing.T) {
	prim := DefaultPrimitives()
	rec := NewRecord(prim)
	rec.SetGroup(".a..b.")
	assert.Equal(t, "a.b", rec.Group)

	ts := time.Date(2025, 1, 1, 0, 0, 0, 123, time.UTC)
	rec.SetCreateTime(ts)
	rec.SetModifyTime(ts)
	rec.SetAccessTime(ts)
	rec.SetPassModTime(ts)
	assert.Equal(t, 0, rec.CreateTime.Nanosecond())
	assert.Equal(t, 0, rec.ModifyTime.Nanosecond())
	assert.Equal(t, 0, rec.AccessTime.Nanosecond())
	assert.Equal(t, 0, rec.PassModTime.Nanosecond())
}

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

import "testing"

func TestRecordIDStringParseRoundTrip(t *testing.T) {
	prim := DefaultPrimitives()
	id := NewRecordID(prim.RNG)
	s := id.String()
	parsed, err := ParseRecordID(s)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != id {
		t.Fatalf("round trip mismatch: %s != %s", parsed, id)
	}
}

func TestParseRecordIDBareForm(t *testing.T) {
	prim := DefaultPrimitives()
	id := NewRecordID(prim.RNG)
	bare := id.String()
	bare = bare[1 : len(bare)-1] // strip braces
	parsed, err := ParseRecordID(bare)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != id {
		t.Fatal("bare-form round trip mismatch")
	}
}

func TestParseRecordIDRejectsGarbage(t *testing.T) {
	if _, err := ParseRecordID("not-a-uuid"); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestRecordIDIsZero(t *testing.T) {
	var id RecordID
	if !id.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	prim := DefaultPrimitives()
	if NewRecordID(prim.RNG).IsZero() {
		t.Fatal("a freshly generated id should never be zero")
	}
}

func TestRecordIDVersionBits(t *testing.T) {
	prim := DefaultPrimitives()
	id := NewRecordID(prim.RNG)
	if id[6]&0xf0 != 0x40 {
		t.Fatal("version nibble not set to 4")
	}
	if id[8]&0xc0 != 0x80 {
		t.Fatal("variant bits not set to RFC 4122")
	}
}

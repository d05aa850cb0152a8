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

func TestCBCStreamRoundTrip(t *testing.T) {
	prim := DefaultPrimitives()
	cipher, err := prim.NewCipher(prim.RNG.NextBytes(32))
	if err != nil {
		t.Fatal(err)
	}
	iv := prim.RNG.NextBytes(cipher.BlockSize())

	plain := []byte("0123456789abcdef0123456789abcdef")
	enc := newCBCStream(cipher, iv)
	cipherText := make([]byte, len(plain))
	if err := enc.encrypt(cipherText, plain); err != nil {
		t.Fatal(err)
	}

	dec := newCBCStream(cipher, iv)
	gotPlain := make([]byte, len(plain))
	if err := dec.decrypt(gotPlain, cipherText); err != nil {
		t.Fatal(err)
	}
	if string(gotPlain) != string(plain) {
		t.Fatalf("cbc round trip mismatch: got %q want %q", gotPlain, plain)
	}
}

func TestCBCStreamRejectsDirectionSwitch(t *testing.T) {
	prim := DefaultPrimitives()
	cipher, err := prim.NewCipher(prim.RNG.NextBytes(32))
	if err != nil {
		t.Fatal(err)
	}
	iv := prim.RNG.NextBytes(cipher.BlockSize())

	s := newCBCStream(cipher, iv)
	buf := make([]byte, cipher.BlockSize())
	if err := s.encrypt(buf, buf); err != nil {
		t.Fatal(err)
	}
	err = s.decrypt(buf, buf)
	if err == nil {
		t.Fatal("expected an error switching an encrypting stream to decrypt")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != KindIllegalState {
		t.Fatalf("expected KindIllegalState, got %v", err)
	}
}

func TestCBCStreamRejectsNonBlockMultiple(t *testing.T) {
	prim := DefaultPrimitives()
	cipher, err := prim.NewCipher(prim.RNG.NextBytes(32))
	if err != nil {
		t.Fatal(err)
	}
	iv := prim.RNG.NextBytes(cipher.BlockSize())

	s := newCBCStream(cipher, iv)
	err = s.encrypt(make([]byte, 5), make([]byte, 5))
	if err == nil {
		t.Fatal("expected an error for a non-block-multiple length")
	}
}

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

// Package pwsafe reads, writes, and manipulates encrypted password
// database files compatible with the Password Safe on-disk formats
// V1, V2, and V3 (format definition 3.13).
//
// The package is organised around three subsystems: a file engine
// (header parsing, key derivation, block cipher streaming, field
// framing, integrity verification, and the safe write/swap protocol),
// a record model (a keyed collection of password records with merge
// semantics, group-tree operations, and change notification), and a
// passphrase vault (an in-memory encrypted holder for secret
// strings).
//
// A [File] can be used to load an existing database:
//
//	opts := pwsafe.NewFileOptions(config.Defaults(), adapter.NewFilesystemAdapter())
//	f := pwsafe.NewFile(opts)
//	passphrase := pwsafe.NewSecretString("hunter2", opts.Primitives)
//	err := f.Load("vault.psafe3", passphrase, pwsafe.FormatAny)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, ok := f.Records.Get(someID)
//
// A [File] can also be used to create or update one:
//
//	f := pwsafe.NewFile(opts)
//	f.Records.Add(pwsafe.NewRecord(opts.Primitives))
//	err := f.Save("vault.psafe3", passphrase, false)
//
// Back-end storage, cryptographic primitives, and ordered/filtered
// views over record sets are external collaborators: this package
// consumes a [ResourceAdapter]-shaped interface for storage (see the
// internal/adapter subpackage for concrete implementations) and a
// [BlockCipher]/[Hash]/[Checksum]/[CryptoRandom] set of interfaces for
// cryptography, with a Twofish/SHA-256 default implementation.
package pwsafe

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
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the sentinel failures the core can return, per the
// error handling design: InvalidPassphrase, WrongVersion,
// UnsupportedVersion, CorruptStream, UnexpectedEof, Duplicate,
// NoSuchRecord, IllegalState, Io, and UnsupportedEncoding.
type Kind int

const (
	// KindInvalidPassphrase means the HPM verifier did not match for
	// the dialect that was tried.
	KindInvalidPassphrase Kind = iota + 1

	// KindWrongVersion means a version-restricted open found a file
	// that parses as a different, also-known dialect.
	KindWrongVersion

	// KindUnsupportedVersion means the dialect is unknown, or a
	// strict open targeted a dialect the bytes do not match at all.
	KindUnsupportedVersion

	// KindCorruptStream means framing, length, or block-alignment
	// failed.
	KindCorruptStream

	// KindUnexpectedEof means the underlying stream ended in the
	// middle of a field or block.
	KindUnexpectedEof

	// KindDuplicate means an add() targeted a RecordID already
	// present in the list.
	KindDuplicate

	// KindNoSuchRecord means an update or remove targeted an unknown
	// RecordID.
	KindNoSuchRecord

	// KindIllegalState means an object was used out of order: the
	// header socket was misused (two readers requested, or re-opened
	// after a successful open), a CBC stream switched direction, or a
	// file was saved without a path.
	KindIllegalState

	// KindIo wraps a failure reported by the resource adapter.
	KindIo

	// KindUnsupportedEncoding means a required charset (normally
	// UTF-8) was unavailable in this runtime.
	KindUnsupportedEncoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPassphrase:
		return "invalid passphrase"
	case KindWrongVersion:
		return "wrong version"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindCorruptStream:
		return "corrupt stream"
	case KindUnexpectedEof:
		return "unexpected eof"
	case KindDuplicate:
		return "duplicate entry"
	case KindNoSuchRecord:
		return "no such record"
	case KindIllegalState:
		return "illegal state"
	case KindIo:
		return "io error"
	case KindUnsupportedEncoding:
		return "unsupported encoding"
	default:
		return fmt.Sprintf("kind#%d", int(k))
	}
}

// Error is the concrete error type returned by the core for all
// sentinel failures. Version is set for KindWrongVersion and
// KindInvalidPassphrase; it is zero otherwise.
type Error struct {
	Kind    Kind
	Version Version
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Version != FormatAny {
		msg = fmt.Sprintf("%s (version %s)", msg, e.Version)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so
// callers can write errors.Is(err, pwsafe.ErrInvalidPassphrase) style
// checks against the sentinels below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newVersionErr(kind Kind, v Version, err error) *Error {
	return &Error{Kind: kind, Version: v, Err: err}
}

// Sentinel values usable with errors.Is for each Kind.
var (
	ErrInvalidPassphrase   = &Error{Kind: KindInvalidPassphrase}
	ErrWrongVersion        = &Error{Kind: KindWrongVersion}
	ErrUnsupportedVersion  = &Error{Kind: KindUnsupportedVersion}
	ErrCorruptStream       = &Error{Kind: KindCorruptStream}
	ErrUnexpectedEof       = &Error{Kind: KindUnexpectedEof}
	ErrDuplicate           = &Error{Kind: KindDuplicate}
	ErrNoSuchRecord        = &Error{Kind: KindNoSuchRecord}
	ErrIllegalState        = &Error{Kind: KindIllegalState}
	ErrIo                  = &Error{Kind: KindIo}
	ErrUnsupportedEncoding = &Error{Kind: KindUnsupportedEncoding}
)

// wrapIo wraps an adapter failure as a KindIo *Error, preserving the
// original cause for errors.Cause/errors.Unwrap chains.
func wrapIo(op string, err error) error {
	if err == nil {
		return nil
	}
	return newErr(KindIo, errors.Wrapf(err, "pwsafe: %s", op))
}

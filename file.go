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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"

	"github.com/kse2/pwsafe/internal/adapter"
	"github.com/kse2/pwsafe/internal/config"
	"github.com/kse2/pwsafe/internal/metrics"
)

const tempSuffix = ".temp"
const oldSuffix = ".old"

// FileOptions are the construction-time tunables a File needs, kept
// as explicit fields rather than package-level state (§4.9's "global
// singletons become explicit configuration" note).
type FileOptions struct {
	Primitives        *Primitives
	Adapter           adapter.ResourceAdapter
	DefaultIterations uint32
	MaxIterations      uint32
	DefaultCharset    string
	Log               *logrus.Entry
}

// NewFileOptions builds FileOptions from cfg, defaulting Primitives to
// the reference implementation and Log to logrus' standard logger.
func NewFileOptions(cfg config.FileFacadeOptions, ra adapter.ResourceAdapter) FileOptions {
	return FileOptions{
		Primitives:        DefaultPrimitives(),
		Adapter:           ra,
		DefaultIterations: cfg.DefaultIterations,
		MaxIterations:     cfg.MaxIterations,
		DefaultCharset:    cfg.DefaultCharset,
		Log:               logrus.NewEntry(logrus.StandardLogger()),
	}
}

// File is the top-level facade (§4.9): it owns a RecordList, the
// on-disk path it was loaded from or will save to, the dialect and
// tunables it was opened with, and orchestrates the safe-swap save
// protocol over a ResourceAdapter.
type File struct {
	opts FileOptions

	Records *RecordList

	path       string
	version    Version
	iterations uint32
	options    string
	charset    string
	headerFields *HeaderFieldList

	// ChecksumOK reports whether the V3 trailer digest matched on the
	// last Load. Always true for V1/V2, which carry no trailer, and
	// for a File that has never been loaded.
	ChecksumOK bool
}

// NewFile returns an empty File ready for Save, defaulting to V3 at
// opts.DefaultIterations.
func NewFile(opts FileOptions) *File {
	return &File{
		opts:       opts,
		Records:    NewRecordList(opts.Primitives),
		version:    FormatV3,
		iterations: opts.DefaultIterations,
		charset:    opts.DefaultCharset,
		ChecksumOK: true,
	}
}

// Version returns the dialect the File was loaded as, or will save
// as.
func (f *File) Version() Version { return f.version }

// SetVersion changes the dialect used by the next Save. Changing away
// from FormatV3 drops header fields and options that have no V1/V2
// counterpart.
func (f *File) SetVersion(v Version) {
	f.version = v
	if v != FormatV3 {
		f.headerFields = nil
	}
	if v == FormatV1 {
		f.options = ""
	}
}

// Iterations returns the key-stretch iteration count in effect.
func (f *File) Iterations() uint32 { return f.iterations }

// SetIterations sets the key-stretch iteration count used by the next
// Save, clamped to [minIterations, opts.MaxIterations].
func (f *File) SetIterations(n uint32) {
	if n < minIterations {
		n = minIterations
	}
	if f.opts.MaxIterations != 0 && n > f.opts.MaxIterations {
		n = f.opts.MaxIterations
	}
	f.iterations = n
}

// Options returns the V2 option string, empty for V1/V3.
func (f *File) Options() string { return f.options }

// SetOptions sets the V2 option string; see resolveV2Charset for how
// it selects the on-disk charset.
func (f *File) SetOptions(options string) { f.options = options }

// HeaderFields returns the V3 header field list, creating an empty
// one if none exists yet. nil for a File currently set to V1/V2.
func (f *File) HeaderFields() *HeaderFieldList {
	if f.version != FormatV3 {
		return nil
	}
	if f.headerFields == nil {
		f.headerFields = NewHeaderFieldList()
	}
	return f.headerFields
}

func (f *File) charsetEncoding() encoding.Encoding {
	if f.version == FormatV3 {
		return nil
	}
	if f.version == FormatV2 {
		return ResolveEncoding(resolveV2Charset(f.options))
	}
	return nil
}

// Load reads path through the adapter, attempting to open it as
// version (FormatAny to detect), and replaces f's RecordList and
// metadata on success. The resource is released on every exit path.
func (f *File) Load(path string, passphrase *SecretString, version Version) (err error) {
	start := time.Now()
	ok := false
	defer func() {
		metrics.ObserveLoad(f.version.String(), ok, time.Since(start))
	}()

	src, openErr := f.opts.Adapter.OpenRead(path)
	if openErr != nil {
		return wrapIo("open for load", openErr)
	}
	defer src.Close()

	socket := NewHeaderSocket(src, f.opts.Primitives)
	open, err := socket.AttemptOpen(passphrase, version)
	if err != nil {
		return err
	}

	codec := NewRecordCodec(open.Version, f.opts.Primitives, resolveCharsetEncoding(open.Version, open.Charset), f.opts.Log)
	fr, err := socket.FieldReader()
	if err != nil {
		return err
	}

	list := NewRecordList(f.opts.Primitives)
	for {
		rec, more, err := codec.ReadRecord(fr)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if addErr := list.Add(rec); addErr != nil {
			f.opts.Log.WithError(addErr).WithField("record", rec.ID.String()).Warn("duplicate record id on load, skipping")
		}
	}
	list.ClearModified()

	checksumOK, err := socket.VerifyTrailer()
	if err != nil {
		return err
	}

	f.path = path
	f.version = open.Version
	f.iterations = open.Iterations
	f.options = open.Options
	f.charset = open.Charset
	f.headerFields = open.HeaderFields
	f.Records = list
	f.ChecksumOK = checksumOK

	ok = true
	return nil
}

func resolveCharsetEncoding(version Version, charset string) encoding.Encoding {
	if version != FormatV2 {
		return nil
	}
	return ResolveEncoding(charset)
}

// Save writes f to path (or f's current path, if path is empty)
// through the safe-swap protocol of §4.9: write to a temp file, then
// either rename it over the target or, if rename fails, copy and
// delete. preserveOld, or a save whose target format differs from
// what is already on disk, first renames the existing target to
// {target}.old.
func (f *File) Save(path string, passphrase *SecretString, preserveOld bool) (err error) {
	start := time.Now()
	ok := false
	defer func() {
		metrics.ObserveSave(f.version.String(), ok, time.Since(start))
	}()

	if path == "" {
		path = f.path
	}
	if path == "" {
		return newErr(KindIllegalState, fmt.Errorf("pwsafe: save requires a target path"))
	}
	ra := f.opts.Adapter

	formatChanged := f.sourceFormatDiffers(path)
	if (preserveOld || formatChanged) && ra.Exists(path) {
		oldPath := path + oldSuffix
		ra.Delete(oldPath)
		if !ra.Rename(path, oldPath) {
			return newErr(KindIo, fmt.Errorf("pwsafe: could not preserve previous file at %s", oldPath))
		}
	}

	tempPath := path + tempSuffix
	if writeErr := f.writeTo(tempPath, passphrase); writeErr != nil {
		ra.Delete(tempPath)
		return writeErr
	}

	if ra.Exists(path) {
		if !ra.CanDelete(path) {
			return newErr(KindIo, fmt.Errorf("pwsafe: cannot delete existing target %s", path))
		}
		ra.Delete(path)
	}
	if !ra.Rename(tempPath, path) {
		if !copyViaAdapter(ra, tempPath, path) {
			return newErr(KindIo, fmt.Errorf("pwsafe: could not move %s into place at %s", tempPath, path))
		}
		ra.Delete(tempPath)
	}

	f.path = path
	f.Records.ClearModified()
	ok = true
	return nil
}

// sourceFormatDiffers reports whether path currently exists as a
// format other than f.version, by peeking its header. A read failure
// is treated as "does not differ" so Save proceeds normally and lets
// the write path surface any real problem.
func (f *File) sourceFormatDiffers(path string) bool {
	if !f.opts.Adapter.Exists(path) {
		return false
	}
	src, err := f.opts.Adapter.OpenRead(path)
	if err != nil {
		return false
	}
	defer src.Close()

	probe := NewHeaderSocket(src, f.opts.Primitives)
	open, err := probe.AttemptOpen(emptyProbePassphrase(f.opts.Primitives), FormatAny)
	if err != nil {
		if perr, ok := err.(*Error); ok && perr.Kind == KindInvalidPassphrase {
			return perr.Version != FormatAny && perr.Version != f.version
		}
		return false
	}
	return open.Version != f.version
}

func emptyProbePassphrase(prim *Primitives) *SecretString {
	return NewEmptySecretString(prim)
}

func (f *File) writeTo(path string, passphrase *SecretString) error {
	dst, err := f.opts.Adapter.OpenWrite(path)
	if err != nil {
		return wrapIo("open for save", err)
	}
	defer dst.Close()

	var hw *HeaderWriter
	switch f.version {
	case FormatV3:
		hw, err = NewV3HeaderWriter(dst, f.opts.Primitives, passphrase, f.iterations, f.HeaderFields())
	case FormatV2, FormatV1:
		hw, err = NewClassicalHeaderWriter(dst, f.opts.Primitives, passphrase, f.version, f.iterations, f.options)
	default:
		err = newErr(KindUnsupportedVersion, fmt.Errorf("pwsafe: cannot save as %s", f.version))
	}
	if err != nil {
		return err
	}

	codec := NewRecordCodec(f.version, f.opts.Primitives, f.charsetEncoding(), f.opts.Log)
	fw := hw.FieldWriter()
	for _, rec := range f.Records.Iterator() {
		if err := codec.WriteRecord(fw, rec); err != nil {
			return err
		}
	}
	if f.version == FormatV3 {
		if err := fw.WriteEndOfRecord(); err != nil {
			return err
		}
	}
	return hw.WriteTrailer()
}

// copyViaAdapter falls back to a read-then-write copy when the
// adapter's Rename cannot move a temp file directly over its target
// (§4.9 step 3), e.g. across filesystems or buckets.
func copyViaAdapter(ra adapter.ResourceAdapter, from, to string) bool {
	src, err := ra.OpenRead(from)
	if err != nil {
		return false
	}
	defer src.Close()
	dst, err := ra.OpenWrite(to)
	if err != nil {
		return false
	}
	defer dst.Close()

	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return false
			}
		}
		if readErr != nil {
			return errors.Is(readErr, io.EOF)
		}
	}
}

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
	"encoding/binary"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
)

// Canonical record field-type registry (§6.5): 0x01..0x19 plus the
// 0xFF end-of-record marker from rawfield.go. 0x0b and 0x10 are fixed
// by §4.7 (legacy and "modern" password policy); the rest are this
// module's own assignment within the canonical range.
const (
	recFieldUUID             uint8 = 0x01
	recFieldGroup            uint8 = 0x02
	recFieldTitle            uint8 = 0x03
	recFieldUsername         uint8 = 0x04
	recFieldNotes            uint8 = 0x05
	recFieldPassword         uint8 = 0x06
	recFieldCreateTime       uint8 = 0x07
	recFieldPassModTime      uint8 = 0x08
	recFieldAccessTime       uint8 = 0x09
	recFieldPassLifeTime     uint8 = 0x0a
	recFieldPolicyOld        uint8 = 0x0b
	recFieldExpiryInterval   uint8 = 0x0c
	recFieldModifyTime       uint8 = 0x0d
	recFieldURL              uint8 = 0x0e
	recFieldAutotype         uint8 = 0x0f
	recFieldPolicyModern     uint8 = 0x10
	recFieldEmail            uint8 = 0x11
	recFieldHistory          uint8 = 0x12
	recFieldPolicyName       uint8 = 0x13
	recFieldProtectedEntry   uint8 = 0x14
	recFieldKeyboardShortcut uint8 = 0x15
	recFieldOwnerSymbols     uint8 = 0x16
)

// v1FieldSeparator is the literal five-codepoint sequence §4.7
// requires between title and username in a V1 record's combined
// first field: two spaces, a soft hyphen, two spaces.
const v1FieldSeparator = "  ­  "

// RecordCodec maps Records to and from the field stream for one
// dialect (§4.7).
type RecordCodec struct {
	version Version
	prim    *Primitives
	charset encoding.Encoding
	log     *logrus.Entry
}

// NewRecordCodec builds a codec for version, encoding text fields with
// charset (ignored for V3, which is always UTF-8 internally).
func NewRecordCodec(version Version, prim *Primitives, charset encoding.Encoding, log *logrus.Entry) *RecordCodec {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RecordCodec{version: version, prim: prim, charset: charset, log: log}
}

// ReadRecord consumes one record's fields from fr, up to and including
// its end-of-record marker. ok is false if fr was already at the end
// of the stream (no more records). V1/V2 carry no trailing
// end-of-record marker after the last record, so those dialects are
// read to exhaustion via FieldStreamReader.AtEOF rather than a marker.
func (c *RecordCodec) ReadRecord(fr *FieldStreamReader) (rec *Record, ok bool, err error) {
	if c.version != FormatV3 {
		atEOF, err := fr.AtEOF()
		if err != nil {
			return nil, false, err
		}
		if atEOF {
			return nil, false, nil
		}
	}
	switch c.version {
	case FormatV1:
		return c.readV1(fr)
	default:
		return c.readV2V3(fr)
	}
}

func (c *RecordCodec) readV1(fr *FieldStreamReader) (*Record, bool, error) {
	first, end, err := fr.Next()
	if err != nil {
		return nil, false, err
	}
	if end {
		return nil, false, nil
	}
	titleUser := c.decodeText(first.Payload())

	pwField, end, err := fr.Next()
	if err != nil {
		return nil, false, err
	}
	if end {
		return nil, false, newErr(KindCorruptStream, errV1ShortRecord)
	}
	notesField, end, err := fr.Next()
	if err != nil {
		return nil, false, err
	}
	if end {
		return nil, false, newErr(KindCorruptStream, errV1ShortRecord)
	}
	if _, end, err := fr.Next(); err != nil {
		return nil, false, err
	} else if !end {
		return nil, false, newErr(KindCorruptStream, errV1TooManyFields)
	}

	rec := &Record{ID: NewRecordID(c.prim.RNG)}
	title := titleUser
	user := ""
	if idx := indexOf(titleUser, v1FieldSeparator); idx >= 0 {
		title = titleUser[:idx]
		user = titleUser[idx+len(v1FieldSeparator):]
	}
	rec.Title = title
	rec.Username = user
	rec.Password = NewSecretString(c.decodeText(pwField.Payload()), c.prim)
	rec.Notes = c.decodeText(notesField.Payload())
	return rec, true, nil
}

func (c *RecordCodec) readV2V3(fr *FieldStreamReader) (*Record, bool, error) {
	rec := &Record{Password: NewEmptySecretString(c.prim)}
	sawAny := false
	sawID := false
	sawModernPolicy := false

	for {
		f, end, err := fr.Next()
		if err != nil {
			return nil, false, err
		}
		if end {
			break
		}
		sawAny = true
		switch f.Type {
		case recFieldUUID:
			id, ok := decodeRecordID(f.Payload())
			if !ok {
				c.log.Warn("bad record UUID, regenerating")
				id = NewRecordID(c.prim.RNG)
			}
			rec.ID = id
			sawID = true
		case recFieldGroup:
			rec.Group = NormalizeGroup(c.decodeText(f.Payload()))
		case recFieldTitle:
			rec.Title = c.decodeText(f.Payload())
		case recFieldUsername:
			rec.Username = c.decodeText(f.Payload())
		case recFieldNotes:
			rec.Notes = c.decodeText(f.Payload())
		case recFieldPassword:
			rec.Password = NewSecretString(c.decodeText(f.Payload()), c.prim)
		case recFieldCreateTime:
			rec.CreateTime = decodeTimeField(f.Payload())
		case recFieldModifyTime:
			rec.ModifyTime = decodeTimeField(f.Payload())
		case recFieldAccessTime:
			rec.AccessTime = decodeTimeField(f.Payload())
		case recFieldPassModTime:
			rec.PassModTime = decodeTimeField(f.Payload())
		case recFieldPassLifeTime:
			rec.PassLifeTime = decodeTimeField(f.Payload())
		case recFieldExpiryInterval:
			if len(f.Payload()) >= 4 {
				rec.ExpiryInterval = binary.LittleEndian.Uint32(f.Payload())
			}
		case recFieldPolicyOld:
			if !sawModernPolicy {
				rec.PassPolicy = append([]byte(nil), f.Payload()...)
			}
		case recFieldPolicyModern:
			rec.PassPolicy = append([]byte(nil), f.Payload()...)
			sawModernPolicy = true
		case recFieldPolicyName:
			if rec.PassPolicyName == "" {
				rec.PassPolicyName = c.decodeText(f.Payload())
			}
		case recFieldEmail:
			rec.Email = c.decodeText(f.Payload())
		case recFieldURL:
			rec.URL = c.decodeText(f.Payload())
		case recFieldAutotype:
			rec.Autotype = c.decodeText(f.Payload())
		case recFieldHistory:
			rec.History = c.decodeText(f.Payload())
		case recFieldProtectedEntry:
			rec.ProtectedEntry = true
		case recFieldKeyboardShortcut:
			p := f.Payload()
			if len(p) >= 5 {
				rec.KeyboardShortcut = KeyboardShortcut{
					Keycode:   binary.LittleEndian.Uint32(p[0:4]),
					Modifiers: p[4],
				}
			}
		case recFieldOwnerSymbols:
			rec.OwnerSymbols = c.decodeText(f.Payload())
		default:
			rec.UnknownFields = append(rec.UnknownFields, RawField{
				Type: f.Type, Length: f.Length, Data: append([]byte(nil), f.Payload()...),
			})
		}
	}

	if !sawAny {
		return nil, false, nil
	}
	if !sawID {
		c.log.Warn("record missing UUID, regenerating")
		rec.ID = NewRecordID(c.prim.RNG)
	}
	return rec, true, nil
}

// WriteRecord serialises rec through fw, per this codec's dialect.
func (c *RecordCodec) WriteRecord(fw *FieldStreamWriter, rec *Record) error {
	switch c.version {
	case FormatV1:
		return c.writeV1(fw, rec)
	default:
		return c.writeV2V3(fw, rec)
	}
}

func (c *RecordCodec) writeV1(fw *FieldStreamWriter, rec *Record) error {
	titleUser := rec.Title + v1FieldSeparator + rec.Username
	fields := []RawField{
		c.textField(0, titleUser),
		c.textField(0, rec.Password.String()),
		c.textField(0, rec.Notes),
	}
	for _, f := range fields {
		if err := fw.WriteField(f); err != nil {
			return err
		}
	}
	return fw.WriteEndOfRecord()
}

func (c *RecordCodec) writeV2V3(fw *FieldStreamWriter, rec *Record) error {
	write := func(typ uint8, payload []byte) error {
		if len(payload) == 0 {
			return nil
		}
		return fw.WriteField(RawField{Type: typ, Length: uint32(len(payload)), Data: payload})
	}

	if err := fw.WriteField(RawField{Type: recFieldUUID, Length: 16, Data: rec.ID[:]}); err != nil {
		return err
	}
	if err := write(recFieldGroup, c.encodeText(rec.Group)); err != nil {
		return err
	}
	if err := write(recFieldTitle, c.encodeText(rec.Title)); err != nil {
		return err
	}
	if err := write(recFieldUsername, c.encodeText(rec.Username)); err != nil {
		return err
	}
	if err := write(recFieldNotes, c.encodeText(rec.Notes)); err != nil {
		return err
	}
	if err := fw.WriteField(c.textField(recFieldPassword, rec.Password.String())); err != nil {
		return err
	}
	if err := write(recFieldCreateTime, encodeTimeField(rec.CreateTime)); err != nil {
		return err
	}
	if err := write(recFieldModifyTime, encodeTimeField(rec.ModifyTime)); err != nil {
		return err
	}
	if err := write(recFieldAccessTime, encodeTimeField(rec.AccessTime)); err != nil {
		return err
	}
	if err := write(recFieldPassModTime, encodeTimeField(rec.PassModTime)); err != nil {
		return err
	}
	if err := write(recFieldPassLifeTime, encodeTimeField(rec.PassLifeTime)); err != nil {
		return err
	}
	if c.version != FormatV3 && len(rec.PassPolicy) > 0 {
		if err := write(recFieldPolicyOld, rec.PassPolicy); err != nil {
			return err
		}
	}

	if c.version == FormatV3 {
		if err := write(recFieldExpiryInterval, encodeU32(rec.ExpiryInterval)); err != nil {
			return err
		}
		if err := write(recFieldURL, c.encodeText(rec.URL)); err != nil {
			return err
		}
		if err := write(recFieldEmail, c.encodeText(rec.Email)); err != nil {
			return err
		}
		if err := write(recFieldAutotype, c.encodeText(rec.Autotype)); err != nil {
			return err
		}
		if err := write(recFieldHistory, c.encodeText(rec.History)); err != nil {
			return err
		}
		if err := write(recFieldPolicyModern, rec.PassPolicy); err != nil {
			return err
		}
		if err := write(recFieldPolicyName, c.encodeText(rec.PassPolicyName)); err != nil {
			return err
		}
		if rec.ProtectedEntry {
			if err := fw.WriteField(RawField{Type: recFieldProtectedEntry, Length: 1, Data: []byte{0xFF}}); err != nil {
				return err
			}
		}
		if rec.KeyboardShortcut.Keycode != 0 || rec.KeyboardShortcut.Modifiers != 0 {
			payload := make([]byte, 6)
			binary.LittleEndian.PutUint32(payload[0:4], rec.KeyboardShortcut.Keycode)
			payload[4] = rec.KeyboardShortcut.Modifiers
			if err := fw.WriteField(RawField{Type: recFieldKeyboardShortcut, Length: 6, Data: payload}); err != nil {
				return err
			}
		}
		if err := write(recFieldOwnerSymbols, c.encodeText(rec.OwnerSymbols)); err != nil {
			return err
		}
	}

	for _, f := range rec.UnknownFields {
		if err := fw.WriteField(f); err != nil {
			return err
		}
	}
	return fw.WriteEndOfRecord()
}

func (c *RecordCodec) decodeText(data []byte) string {
	if c.charset == nil || len(data) == 0 {
		return string(data)
	}
	out, err := c.charset.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func (c *RecordCodec) encodeText(s string) []byte {
	if s == "" {
		return nil
	}
	if c.charset == nil {
		return []byte(s)
	}
	out, err := c.charset.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

func (c *RecordCodec) textField(typ uint8, s string) RawField {
	b := c.encodeText(s)
	return RawField{Type: typ, Length: uint32(len(b)), Data: b}
}

func decodeRecordID(data []byte) (RecordID, bool) {
	var id RecordID
	if len(data) != 16 {
		return id, false
	}
	copy(id[:], data)
	return id, true
}

func decodeTimeField(data []byte) time.Time {
	switch len(data) {
	case 4:
		return time.Unix(int64(binary.LittleEndian.Uint32(data)), 0).UTC()
	case 8:
		return time.Unix(int64(binary.LittleEndian.Uint64(data)), 0).UTC()
	default:
		return time.Time{}
	}
}

func encodeTimeField(t time.Time) []byte {
	if t.IsZero() {
		return nil
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(t.Unix()))
	return out
}

func encodeU32(v uint32) []byte {
	if v == 0 {
		return nil
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

var (
	errV1ShortRecord   = recordCodecError("pwsafe: V1 record ended before three fields were read")
	errV1TooManyFields = recordCodecError("pwsafe: V1 record has more than three fields")
)

type recordCodecError string

func (e recordCodecError) Error() string { return string(e) }

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
	"crypto/sha256"
	"strings"

	"golang.org/x/exp/slices"
)

// EventKind enumerates the FileEvent kinds a RecordList emits (§4.8).
type EventKind int

const (
	EventRecordAdded EventKind = iota
	EventRecordUpdated
	EventRecordRemoved
	EventListCleared
	EventListUpdated
	EventListSaved
	EventContentAltered
	EventTargetAltered
	EventPassphraseAltered
)

// FileEvent is delivered to every registered listener for each
// mutation (§4.8). Record is nil for list-wide events.
type FileEvent struct {
	Source *RecordList
	Kind   EventKind
	Record *Record
}

// Listener receives FileEvents from a RecordList.
type Listener func(FileEvent)

// MergeMode is a bitset of conflict-resolution criteria for
// RecordList.Merge (§4.8).
type MergeMode int

const (
	MergePlain        MergeMode = 0
	MergeModified      MergeMode = 1 << 0
	MergePassAccessed  MergeMode = 1 << 1
	MergePassModified  MergeMode = 1 << 2
	MergeExpiry        MergeMode = 1 << 3
	MergeInclude       MergeMode = 1 << 4
)

// ImportStatus marks how a record entered the list via Merge.
type ImportStatus int

const (
	ImportNone ImportStatus = iota
	ImportImported
	ImportImportedConflict
)

// MergeResult reports the outcome of RecordList.Merge. Imported holds
// every RecordID that ended up copied into the list, whether it was a
// plain addition or a conflict resolved in the incoming record's
// favor; Statuses breaks that down per §4.8 (ImportImported for the
// former, ImportImportedConflict for the latter).
type MergeResult struct {
	Imported []RecordID
	Failed   []RecordID
	Statuses map[RecordID]ImportStatus
}

// RecordList is a keyed collection of Records (§4.8): mapping
// RecordID → Record, kept in a UUID-sorted internal structure, with
// its own identity, a modification flag, and an event listener set.
type RecordList struct {
	id       RecordID
	prim     *Primitives
	byID     map[RecordID]*Record
	order    []RecordID // sorted by RecordID
	modified bool

	listeners []Listener
	paused    bool
	pendingUpdate bool
}

// NewRecordList returns an empty list carrying a fresh identity.
func NewRecordList(prim *Primitives) *RecordList {
	return &RecordList{
		id:   NewRecordID(prim.RNG),
		prim: prim,
		byID: make(map[RecordID]*Record),
	}
}

// ID returns the list's own identifier.
func (l *RecordList) ID() RecordID { return l.id }

// Modified reports whether the list has been mutated since creation
// or the last ClearModified call.
func (l *RecordList) Modified() bool { return l.modified }

// ClearModified resets the modification flag, normally called right
// after a successful save.
func (l *RecordList) ClearModified() { l.modified = false }

// AddListener registers a listener for future FileEvents.
func (l *RecordList) AddListener(fn Listener) {
	l.listeners = append(l.listeners, fn)
}

// SetEventPause batches mutations: while paused, individual events are
// suppressed; turning pause back off fires one summary
// EventListUpdated if anything changed meanwhile.
func (l *RecordList) SetEventPause(paused bool) {
	if l.paused == paused {
		return
	}
	l.paused = paused
	if !paused && l.pendingUpdate {
		l.pendingUpdate = false
		l.emit(FileEvent{Source: l, Kind: EventListUpdated})
	}
}

func (l *RecordList) emit(ev FileEvent) {
	if l.paused {
		l.pendingUpdate = true
		return
	}
	for _, fn := range l.listeners {
		fn(ev)
	}
}

func (l *RecordList) insertSorted(id RecordID) {
	i, _ := slices.BinarySearchFunc(l.order, id, func(a, b RecordID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	l.order = slices.Insert(l.order, i, id)
}

func (l *RecordList) removeFromOrder(id RecordID) {
	i, found := slices.BinarySearchFunc(l.order, id, func(a, b RecordID) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	if found {
		l.order = slices.Delete(l.order, i, i+1)
	}
}

// Add stores a deep copy of rec under its RecordID, failing if that
// id is already present (§4.8).
func (l *RecordList) Add(rec *Record) error {
	if _, exists := l.byID[rec.ID]; exists {
		return newErr(KindDuplicate, errDuplicateRecord)
	}
	l.byID[rec.ID] = rec.Clone()
	l.insertSorted(rec.ID)
	l.modified = true
	l.emit(FileEvent{Source: l, Kind: EventRecordAdded, Record: rec})
	l.emit(FileEvent{Source: l, Kind: EventContentAltered})
	return nil
}

// Update replaces the stored record with the same RecordID, failing
// if no such record exists.
func (l *RecordList) Update(rec *Record) error {
	existing, ok := l.byID[rec.ID]
	if !ok {
		return newErr(KindNoSuchRecord, errNoSuchRecord)
	}
	changed := existing.Signature(l.prim) != rec.Signature(l.prim)
	l.byID[rec.ID] = rec.Clone()
	if changed {
		l.modified = true
		l.emit(FileEvent{Source: l, Kind: EventRecordUpdated, Record: rec})
		l.emit(FileEvent{Source: l, Kind: EventContentAltered})
	}
	return nil
}

// Remove deletes the record with id, if present.
func (l *RecordList) Remove(id RecordID) {
	rec, ok := l.byID[id]
	if !ok {
		return
	}
	delete(l.byID, id)
	l.removeFromOrder(id)
	l.modified = true
	l.emit(FileEvent{Source: l, Kind: EventRecordRemoved, Record: rec})
	l.emit(FileEvent{Source: l, Kind: EventContentAltered})
}

// Get returns a deep copy of the record with id, if present.
func (l *RecordList) Get(id RecordID) (*Record, bool) {
	rec, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Len returns the number of records.
func (l *RecordList) Len() int { return len(l.byID) }

// Iterator returns deep copies of all records, ordered by RecordID, as
// of the call time (§4.8's "snapshot of ids at call time").
func (l *RecordList) Iterator() []*Record {
	out := make([]*Record, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id].Clone())
	}
	return out
}

// Clear removes every record.
func (l *RecordList) Clear() {
	if len(l.byID) == 0 {
		return
	}
	l.byID = make(map[RecordID]*Record)
	l.order = nil
	l.modified = true
	l.emit(FileEvent{Source: l, Kind: EventListCleared})
}

// Grouped returns deep copies of records whose group matches prefix.
// exact=true requires rec.Group == prefix or a "prefix." sub-group;
// an empty prefix matches everything.
func (l *RecordList) Grouped(prefix string, exact bool) []*Record {
	var out []*Record
	for _, id := range l.order {
		rec := l.byID[id]
		if groupMatches(rec.Group, prefix, exact) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func groupMatches(group, prefix string, exact bool) bool {
	if prefix == "" {
		return true
	}
	if !exact {
		return strings.HasPrefix(group, prefix)
	}
	return group == prefix || strings.HasPrefix(group, prefix+".")
}

// RenameGroup replaces the leading `from` segment of every matching
// record's group with `to`.
func (l *RecordList) RenameGroup(from, to string) {
	changed := false
	for _, id := range l.order {
		rec := l.byID[id]
		if rec.Group == from {
			rec.Group = to
			changed = true
		} else if strings.HasPrefix(rec.Group, from+".") {
			rec.Group = to + rec.Group[len(from):]
			changed = true
		}
	}
	if changed {
		l.modified = true
		l.emit(FileEvent{Source: l, Kind: EventContentAltered})
	}
}

// RemoveGroup removes every record grouped under g (exact match
// semantics, per Grouped).
func (l *RecordList) RemoveGroup(g string) {
	var toRemove []RecordID
	for _, id := range l.order {
		if groupMatches(l.byID[id].Group, g, true) {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		l.Remove(id)
	}
}

// Merge imports every record of other into l, per the MergeMode
// conflict rules of §4.8. allowInvalids, when false (the default),
// excludes records whose RecordID is already zero.
func (l *RecordList) Merge(other *RecordList, modus MergeMode, allowInvalids bool) MergeResult {
	result := MergeResult{Statuses: make(map[RecordID]ImportStatus)}
	for _, id := range other.order {
		incoming := other.byID[id]
		if !allowInvalids && incoming.ID.IsZero() {
			result.Failed = append(result.Failed, id)
			continue
		}
		existing, conflict := l.byID[id]
		if !conflict {
			l.byID[id] = incoming.Clone()
			l.insertSorted(id)
			l.modified = true
			result.Imported = append(result.Imported, id)
			result.Statuses[id] = ImportImported
			l.emit(FileEvent{Source: l, Kind: EventRecordAdded, Record: incoming})
			continue
		}
		if modus&MergeInclude != 0 || prefersIncoming(modus, existing, incoming) {
			l.byID[id] = incoming.Clone()
			l.modified = true
			result.Imported = append(result.Imported, id)
			result.Statuses[id] = ImportImportedConflict
			l.emit(FileEvent{Source: l, Kind: EventRecordUpdated, Record: incoming})
		} else {
			result.Failed = append(result.Failed, id)
		}
	}
	if len(result.Imported) > 0 {
		l.emit(FileEvent{Source: l, Kind: EventContentAltered})
	}
	return result
}

func prefersIncoming(modus MergeMode, existing, incoming *Record) bool {
	if modus == MergePlain {
		return false
	}
	if modus&MergeModified != 0 && incoming.ModifyTime.After(existing.ModifyTime) {
		return true
	}
	if modus&MergePassAccessed != 0 && incoming.AccessTime.After(existing.AccessTime) {
		return true
	}
	if modus&MergePassModified != 0 && incoming.PassModTime.After(existing.PassModTime) {
		return true
	}
	if modus&MergeExpiry != 0 && incoming.ExpiryInterval > existing.ExpiryInterval {
		return true
	}
	return false
}

// Signature returns SHA-256 over each record's individual signature,
// iterated in RecordID order (§4.8), for content-change detection.
func (l *RecordList) Signature() [32]byte {
	h := sha256.New()
	for _, id := range l.order {
		sig := l.byID[id].Signature(l.prim)
		h.Write(sig[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

var (
	errDuplicateRecord = recordCodecError("pwsafe: record id already present")
	errNoSuchRecord    = recordCodecError("pwsafe: no record with that id")
)

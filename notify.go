// Copyright (C) 2024, sectorkit contributors
//
// sectorkit is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// sectorkit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sectorkit.  If not, see <https://www.gnu.org/licenses/>.

// notify.go defines the typed change-notification surface from spec §6.
// VigilantBSP has no observer of its own - it is a batch tool with no
// outer UI to notify - but the spec explicitly calls for one, so this is
// modeled as a plain Go interface (the idiomatic stand-in for the "typed
// notification sink" the spec's design notes ask for) rather than a
// generic event bus.
package sectorkit

// ChangeKind tags which field of a Change is populated.
type ChangeKind int

const (
	VertexAdded ChangeKind = iota
	VertexRemoved
	LineAdded
	LineRemoved
	SectorAdded
	SectorRemoved
	ThingAdded
	ThingRemoved
	SideChanged
	FlagsChanged
	SectorChanged
	MetadataChanged
	SectorsRebuilt
	Selected
	Deselected
)

// Change is the single payload type delivered to a NotifySink. Only the
// fields relevant to Kind are populated; the rest are zero.
type Change struct {
	Kind ChangeKind

	Vertex *Vertex
	Line   *Line
	Sector *Sector
	Thing  *Thing

	// Property/IsFront/Value describe a SideChanged, FlagsChanged,
	// SectorChanged, or MetadataChanged event.
	Property string
	IsFront  bool
	Value    interface{}

	// Sectors is populated for SectorsRebuilt, listing every sector
	// created by that rebuild.
	Sectors []*Sector

	// Selection is populated for Selected.
	Selection []int64
}

// NotifySink receives change notifications synchronously, in the order the
// corresponding mutation completed. A NotifySink MUST NOT call back into
// the Map that is notifying it (spec §5: "observers ... MUST NOT mutate the
// map from within a notification").
type NotifySink interface {
	Notify(m *Map, c Change)
}

// NotifyFunc adapts a plain function to NotifySink.
type NotifyFunc func(m *Map, c Change)

func (f NotifyFunc) Notify(m *Map, c Change) { f(m, c) }

// RecordingSink is a NotifySink test double that appends every
// notification it receives, for assertions in tests.
type RecordingSink struct {
	Changes []Change

	// reentrant counts active Notify calls, for InCallback.
	reentrant int
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Notify(m *Map, c Change) {
	s.reentrant++
	defer func() { s.reentrant-- }()
	s.Changes = append(s.Changes, c)
}

// InCallback reports whether this sink is currently inside a Notify call.
func (s *RecordingSink) InCallback() bool { return s.reentrant > 0 }

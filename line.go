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

package sectorkit

import "fmt"

// Flags carries the seven boolean linedef attributes the spec lists.
// Plain record, no inheritance - per the spec's design notes on "private
// inner classes".
type Flags struct {
	Impassable     bool
	TwoSided       bool
	UpperUnpegged  bool
	LowerUnpegged  bool
	Secret         bool
	BlockSound     bool
	DontDraw       bool
}

// Side is the attribute bundle carried on one side of a Line. Sector is the
// durable reference, set by face recovery; sectorOld/sectorOverride are
// scratch fields only meaningful during a single Rebuild call (spec §4.5,
// §9) and MUST be nil outside of one - invariant 6.
type Side struct {
	Sector *Sector

	sectorOld      *Sector
	sectorOverride *Sector

	UpperTexture  string
	MiddleTexture string
	LowerTexture  string
	OffsetX       int
	OffsetY       int
}

// Line is an undirected segment between two distinct vertices, canonically
// keyed by its lexicographically ordered endpoint pair (spec §3, §6).
// Front is the side left of V0->V1, Back is the side right of it.
type Line struct {
	id         int64
	V0, V1     *Vertex
	Front, Back Side
	Flags      Flags
}

// ID returns the line's stable handle.
func (l *Line) ID() int64 { return l.id }

// Key returns the line's canonical "x0,y0:x1,y1" map key with endpoints in
// lexicographic order, independent of which endpoint is V0 vs V1.
func (l *Line) Key() string {
	return LineKey(l.V0.X, l.V0.Y, l.V1.X, l.V1.Y)
}

// LineKey canonicalizes an endpoint pair into the spec's stable line key:
// smaller X first, ties broken by smaller Y.
func LineKey(x0, y0, x1, y1 int) string {
	if lineLess(x1, y1, x0, y0) {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	return fmt.Sprintf("%d,%d:%d,%d", x0, y0, x1, y1)
}

// lineLess implements the canonical endpoint ordering: smaller x first,
// ties by smaller y.
func lineLess(x0, y0, x1, y1 int) bool {
	if x0 != x1 {
		return x0 < x1
	}
	return y0 < y1
}

// CanonicalEndpoints returns the two endpoints of the line in the same
// lexicographic order Key() uses, regardless of how V0/V1 are assigned
// internally.
func (l *Line) CanonicalEndpoints() (a, b *Vertex) {
	if lineLess(l.V1.X, l.V1.Y, l.V0.X, l.V0.Y) {
		return l.V1, l.V0
	}
	return l.V0, l.V1
}

// Other returns the endpoint of the line that is not v. Panics if v is
// neither endpoint - that is an invariant violation at the call site, not a
// condition this method should paper over.
func (l *Line) Other(v *Vertex) *Vertex {
	switch v {
	case l.V0:
		return l.V1
	case l.V1:
		return l.V0
	default:
		panic("sectorkit: Line.Other called with a vertex that is not an endpoint of this line")
	}
}

// SideFor returns a pointer to the Side struct that sits on the given
// direction of traversal: front if walking V0->V1 left-hand, i.e. the
// literal Front field; back otherwise. forward indicates whether the
// directed edge being evaluated runs V0->V1 (true) or V1->V0 (false).
func (l *Line) SideFor(forward bool) *Side {
	if forward {
		return &l.Front
	}
	return &l.Back
}

// HasSector reports whether either side of the line currently references s.
func (l *Line) HasSector(s *Sector) bool {
	return l.Front.Sector == s || l.Back.Sector == s
}

// ReplaceSector swaps every side reference to old with replacement across
// both sides of the line - used when a sector is removed and its open
// sides must fall back to its parent (spec §4.6).
func (l *Line) ReplaceSector(old, replacement *Sector) {
	if l.Front.Sector == old {
		l.Front.Sector = replacement
	}
	if l.Back.Sector == old {
		l.Back.Sector = replacement
	}
}

// Bounds returns the line's axis-aligned bounding box as (minX, minY, maxX,
// maxY), used by the spatial grid and by add_line's bounds-overlap
// prefilter before exact intersection tests.
func (l *Line) Bounds() (minX, minY, maxX, maxY int) {
	minX, maxX = l.V0.X, l.V0.X
	minY, maxY = l.V0.Y, l.V0.Y
	if l.V1.X < minX {
		minX = l.V1.X
	}
	if l.V1.X > maxX {
		maxX = l.V1.X
	}
	if l.V1.Y < minY {
		minY = l.V1.Y
	}
	if l.V1.Y > maxY {
		maxY = l.V1.Y
	}
	return
}

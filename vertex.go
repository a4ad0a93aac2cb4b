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

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Vertex is an integer-coordinate point in the planar subdivision. Identity
// is by (X,Y): a Map never holds two vertices at the same coordinate.
//
// Lines holds the vertex's incidence list in insertion order - the back
// references VigilantBSP's NodeVertex avoids needing (it bakes a static
// seg list once per build) but an interactively edited map must maintain
// live, since splitting/merging/removal all walk "every line touching this
// vertex".
//
// id is a monotonic handle assigned by the owning Map, used as the
// identity for undo coalescing and equality checks - see history.go - in
// place of pointer identity. Handles are never reused: the vertex that
// Map.MoveVertex creates at the destination gets a new handle.
type Vertex struct {
	id    int64
	X, Y  int
	Lines []*Line
}

// ID returns the vertex's stable handle.
func (v *Vertex) ID() int64 { return v.id }

// Point returns the vertex position as a float64 geometry point, for use
// with the geom.go primitives.
func (v *Vertex) Point() r2.Point {
	return r2.Point{X: float64(v.X), Y: float64(v.Y)}
}

// Key returns the vertex's canonical map key, "x,y", per the spec's
// external-interface key format.
func (v *Vertex) Key() string {
	return VertexKey(v.X, v.Y)
}

// Bounds returns a degenerate (zero-area) bounding box at the vertex's
// position, for spatial grid registration.
func (v *Vertex) Bounds() (minX, minY, maxX, maxY int) {
	return v.X, v.Y, v.X, v.Y
}

// VertexKey formats the canonical "x,y" vertex key without requiring a
// constructed Vertex.
func VertexKey(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

// addIncidentLine appends l to the vertex's incidence list. Callers (Line
// construction/removal) are responsible for keeping both endpoints'
// incidence lists consistent; see invariant 3 in the spec.
func (v *Vertex) addIncidentLine(l *Line) {
	v.Lines = append(v.Lines, l)
}

// removeIncidentLine deletes l from the incidence list, preserving the
// relative order of the remaining lines. Returns false if l was not present,
// which the caller should treat as an invariant violation.
func (v *Vertex) removeIncidentLine(l *Line) bool {
	for i, other := range v.Lines {
		if other == l {
			v.Lines = append(v.Lines[:i], v.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// IncidentLines returns a snapshot copy of the vertex's incidence list, so
// callers iterating it may safely trigger further mutation (e.g.
// RemoveVertex removing each incident line in turn) without corrupting the
// slice being walked - the same snapshot-before-mutate pattern the spec's
// concurrency section requires for iterate_* callbacks.
func (v *Vertex) IncidentLines() []*Line {
	out := make([]*Line, len(v.Lines))
	copy(out, v.Lines)
	return out
}

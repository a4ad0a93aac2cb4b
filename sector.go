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

// Properties is a sector's editable attribute bundle. Plain record per the
// spec's design notes, same treatment as Flags on Line.
type Properties struct {
	FloorHeight   int
	CeilHeight    int
	FloorTexture  string
	CeilTexture   string
	LightLevel    int
	Tag           int
	Special       int
}

// BoundaryEdge names one directed step of a sector's CCW traversal loop:
// the Line walked, and whether that step was the line's forward (V0->V1)
// direction. Forward also selects which Side of the Line is this sector's
// interior for that step, matching §4.5 step 5 ("left side of each directed
// edge is front if forward, else back").
type BoundaryEdge struct {
	Line    *Line
	Forward bool
}

// Sector is a closed CCW face of the planar subdivision. Sectors are
// recreated wholesale on every Rebuild - identity is plain object identity,
// never reused across rebuilds, per spec §3 ("sectors are recreated on each
// rebuild").
type Sector struct {
	id         int64
	Boundary   []BoundaryEdge
	FlatXY     []float64
	Properties Properties
	Parent     *Sector
	Children   []*Sector
}

// ID returns the sector's stable handle, assigned once at creation and
// never reused even though the Sector itself is ephemeral across rebuilds.
func (s *Sector) ID() int64 { return s.id }

// ChildOf walks the parent chain and reports whether p is a (possibly
// indirect) ancestor of s.
func (s *Sector) ChildOf(p *Sector) bool {
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if cur == p {
			return true
		}
	}
	return false
}

// removeChild deletes c from s's direct children list.
func (s *Sector) removeChild(c *Sector) {
	if s == nil {
		return
	}
	for i, ch := range s.Children {
		if ch == c {
			s.Children = append(s.Children[:i], s.Children[i+1:]...)
			return
		}
	}
}

// depth counts how many ancestors s has; used to decide "more nested" when
// comparing two containing-candidate sectors in sectortree.go.
func (s *Sector) depth() int {
	d := 0
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}

// sideOf reports, for a boundary edge's line, whether this sector is on the
// Front or Back side of it (i.e. which Side struct on the line names s).
func (be BoundaryEdge) sideOf() *Side {
	return be.Line.SideFor(be.Forward)
}

// Bounds returns the sector's axis-aligned bounding box, computed from
// FlatXY, for spatial grid registration and for the bounding-box prefilter
// in sectortree.go.
func (s *Sector) Bounds() (minX, minY, maxX, maxY int) {
	if len(s.FlatXY) < 2 {
		return 0, 0, 0, 0
	}
	minXf, minYf := s.FlatXY[0], s.FlatXY[1]
	maxXf, maxYf := minXf, minYf
	for i := 2; i < len(s.FlatXY); i += 2 {
		x, y := s.FlatXY[i], s.FlatXY[i+1]
		if x < minXf {
			minXf = x
		}
		if x > maxXf {
			maxXf = x
		}
		if y < minYf {
			minYf = y
		}
		if y > maxYf {
			maxYf = y
		}
	}
	return roundCoord(minXf), roundCoord(minYf), roundCoord(maxXf), roundCoord(maxYf)
}

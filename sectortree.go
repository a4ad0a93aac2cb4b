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

// sectortree.go maintains the sector parent/child forest (spec §4.6). The
// teacher has no analog - VigilantBSP's Doom sectors never nest - so this
// is built from the spec's own description, using the same bounding-box
// prefilter before exact polygon containment that diffgeometry.go/blockity.go
// use elsewhere in the teacher's pipeline.
package sectorkit

// boundsContains reports whether outer's box fully contains inner's box.
func boundsContains(outerMinX, outerMinY, outerMaxX, outerMaxY, innerMinX, innerMinY, innerMaxX, innerMaxY int) bool {
	return outerMinX <= innerMinX && outerMinY <= innerMinY && outerMaxX >= innerMaxX && outerMaxY >= innerMaxY
}

// addToMap implements spec §4.6's add_to_map: registers s, finds its
// parent (the most-nested sector that fully contains it), adopts any
// sibling fully contained within s, and patches s's own open sides to
// point at its parent.
func (m *Map) addToMap(s *Sector) {
	var parent *Sector
	sMinX, sMinY, sMaxX, sMaxY := s.Bounds()
	for _, p := range m.sectors {
		if p == s {
			continue
		}
		pMinX, pMinY, pMaxX, pMaxY := p.Bounds()
		if !boundsContains(pMinX, pMinY, pMaxX, pMaxY, sMinX, sMinY, sMaxX, sMaxY) {
			continue
		}
		if !PolygonContainsAllVertices(s.FlatXY, p.FlatXY) {
			continue
		}
		if parent == nil || p.ChildOf(parent) {
			parent = p
		}
	}
	s.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}

	m.sectors = append(m.sectors, s)
	m.sectorGrid.Insert(s)
	m.notify(Change{Kind: SectorAdded, Sector: s})

	// Adopt any former sibling now fully contained within s.
	var siblings []*Sector
	if parent != nil {
		siblings = parent.Children
	} else {
		for _, o := range m.sectors {
			if o != s && o.Parent == nil {
				siblings = append(siblings, o)
			}
		}
	}
	for _, q := range siblings {
		if q == s {
			continue
		}
		qMinX, qMinY, qMaxX, qMaxY := q.Bounds()
		if !boundsContains(sMinX, sMinY, sMaxX, sMaxY, qMinX, qMinY, qMaxX, qMaxY) {
			continue
		}
		if !PolygonContainsAllVertices(q.FlatXY, s.FlatXY) {
			continue
		}
		if parent != nil {
			parent.removeChild(q)
		}
		q.Parent = s
		s.Children = append(s.Children, q)
	}

	// Patch open sides: the side opposite s on each of s's boundary lines
	// inherits s's parent if it was null.
	for _, be := range s.Boundary {
		l := be.Line
		if be.Forward {
			if l.Back.Sector == nil {
				l.Back.Sector = parent
			}
		} else if l.Front.Sector == nil {
			l.Front.Sector = parent
		}
	}
}

// removeSectorInternal implements spec §4.6's sector removal: every
// boundary side still pointing at s falls back to s's parent, every child
// of s is reparented to s's parent, and s is dropped from the registry.
// Sector add/remove is never a history step (sectors are derived state),
// per spec §4.3.
func (m *Map) removeSectorInternal(s *Sector) {
	for _, be := range s.Boundary {
		be.Line.ReplaceSector(s, s.Parent)
	}
	for _, c := range s.Children {
		c.Parent = s.Parent
		if s.Parent != nil {
			s.Parent.Children = append(s.Parent.Children, c)
		}
	}
	s.Children = nil
	if s.Parent != nil {
		s.Parent.removeChild(s)
	}

	for i, o := range m.sectors {
		if o == s {
			m.sectors = append(m.sectors[:i], m.sectors[i+1:]...)
			break
		}
	}
	m.sectorGrid.Remove(s)
	m.notify(Change{Kind: SectorRemoved, Sector: s})
}

// MergeChildVectors implements spec §4.6's merge_child_vectors: traces
// continuous boundary loops between s and each of its direct children,
// one CCW flat polygon per connected boundary component. Used only by
// external renderers that want a sector's interior minus its children as
// a single outline; correctness depends on each boundary line being
// visited at most once, which the per-pair adjacency walk below preserves
// since every directed (from,to) step is marked visited as it is taken.
func (m *Map) MergeChildVectors(s *Sector) [][]float64 {
	children := make(map[*Sector]bool, len(s.Children))
	for _, c := range s.Children {
		children[c] = true
	}

	adjacency := make(map[*Vertex][]*Vertex)
	for _, l := range m.lines {
		sOnFront := l.Front.Sector == s
		sOnBack := l.Back.Sector == s
		if !sOnFront && !sOnBack {
			continue
		}
		var other *Sector
		if sOnFront {
			other = l.Back.Sector
		} else {
			other = l.Front.Sector
		}
		if other == nil || !children[other] {
			continue
		}
		// Orient a->b so that walking forward keeps s on the left, i.e.
		// v0->v1 when s is on Front, v1->v0 when s is on Back.
		a, b := l.V0, l.V1
		if !sOnFront {
			a, b = l.V1, l.V0
		}
		adjacency[a] = append(adjacency[a], b)
	}

	visited := make(map[[2]*Vertex]bool)
	var polys [][]float64
	for start, outs := range adjacency {
		for _, first := range outs {
			if visited[[2]*Vertex{start, first}] {
				continue
			}
			var flat []float64
			cur, next := start, first
			for {
				visited[[2]*Vertex{cur, next}] = true
				p := cur.Point()
				flat = append(flat, p.X, p.Y)
				cur = next
				if cur == start {
					break
				}
				outs2 := adjacency[cur]
				if len(outs2) == 0 {
					break
				}
				next = outs2[0]
			}
			if len(flat) >= 6 {
				polys = append(polys, flat)
			}
		}
	}
	return polys
}

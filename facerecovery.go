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

// facerecovery.go implements rebuild_sectors (spec §4.5): the CCW
// half-edge tracing that recovers closed interior faces from a local
// working set of modified edges. The tracing rule itself - at each
// arrival vertex, take the outgoing edge with the smallest positive CCW
// turn from the reverse of the incoming edge - is selfref.go's
// getPerimeter angle-delta walk, generalized from a fixed self-referencing
// sector's own boundary to an arbitrary local edge set.
package sectorkit

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/sectorkit/sectorkit/internal/mlog"
)

// dirEdge is one directed half of a Line: forward means v0->v1.
type dirEdge struct {
	line    *Line
	forward bool
}

func (e *dirEdge) from() *Vertex {
	if e.forward {
		return e.line.V0
	}
	return e.line.V1
}

func (e *dirEdge) to() *Vertex {
	if e.forward {
		return e.line.V1
	}
	return e.line.V0
}

// angleEpsilon is the tolerance used to detect the next_left degenerate
// fallback (spec §9 Open Question): a strictly-zero CCW delta to a
// candidate other than the edge being backtracked along.
const angleEpsilon = 1e-9

// Rebuild implements rebuild_sectors. It is a no-op returning (nil, nil)
// if modifiedLines is empty. Otherwise it recovers every interior CCW face
// touching the working set, replacing the sectors that used to occupy
// that region. A RebuildError aborts only the one loop it names; Rebuild
// still returns every sector successfully recovered alongside the
// collected errors, matching §7's "abort that loop only" rule.
func (m *Map) Rebuild() ([]*Sector, []RebuildError) {
	if m.modifiedLines.Size() == 0 {
		return nil, nil
	}
	if err := m.checkCorrupt(); err != nil {
		return nil, nil
	}

	// Step 1: working set L = modifiedLines expanded to the incidence
	// closure of their endpoints.
	seedVerts := mapset.New[*Vertex]()
	m.modifiedLines.Each(func(l *Line) {
		seedVerts.Put(l.V0)
		seedVerts.Put(l.V1)
	})
	working := mapset.New[*Line]()
	m.modifiedLines.Each(func(l *Line) { working.Put(l) })
	seedVerts.Each(func(v *Vertex) {
		for _, l := range v.Lines {
			working.Put(l)
		}
	})

	// Step 2: invalidate every sector touching L, remembering it as a
	// rebuild template via sector_old, then remove it from the map.
	invalidated := mapset.New[*Sector]()
	working.Each(func(l *Line) {
		if s := l.Front.Sector; s != nil {
			l.Front.sectorOld = s
			invalidated.Put(s)
		}
		if s := l.Back.Sector; s != nil {
			l.Back.sectorOld = s
			invalidated.Put(s)
		}
	})
	// A sector's far boundary edges need not share an endpoint with the
	// lines that invalidated it (e.g. splitting one edge of a box touches
	// only two of its four corners). Pull in every invalidated sector's
	// full boundary, so traces also start from those lines and step 6
	// clears their transients.
	invalidated.Each(func(s *Sector) {
		for _, be := range s.Boundary {
			working.Put(be.Line)
		}
	})
	invalidated.Each(func(s *Sector) { m.removeSectorInternal(s) })

	// Step 3: build directed edges for every line of the map, bucketed by
	// origin vertex, sorted by absolute polar angle. A face touching L is
	// usually also bounded by lines outside L (the fourth side of a box
	// whose last side was just added), so a trace must be able to follow
	// any line; step 4 only starts traces from edges of lines in L.
	edgesByOrigin := make(map[*Vertex][]*dirEdge)
	reverseOf := make(map[*dirEdge]*dirEdge)
	for _, l := range m.lines {
		fwd := &dirEdge{line: l, forward: true}
		bwd := &dirEdge{line: l, forward: false}
		reverseOf[fwd] = bwd
		reverseOf[bwd] = fwd
		edgesByOrigin[l.V0] = append(edgesByOrigin[l.V0], fwd)
		edgesByOrigin[l.V1] = append(edgesByOrigin[l.V1], bwd)
	}
	for v, edges := range edgesByOrigin {
		sortEdgesByAngle(v, edges)
	}

	// Step 4: trace every CCW loop. A RebuildError (guard limit exceeded)
	// aborts only the one loop it names. An InvariantError (next_left has
	// no well-defined candidate, spec §9) is fatal: it marks the map
	// corrupt and aborts the whole rebuild, since the edge set itself is
	// no longer trustworthy.
	origins := make([]*Vertex, 0, len(edgesByOrigin))
	for v := range edgesByOrigin {
		origins = append(origins, v)
	}
	sort.Slice(origins, func(i, j int) bool {
		if origins[i].X != origins[j].X {
			return origins[i].X < origins[j].X
		}
		return origins[i].Y < origins[j].Y
	})

	visited := make(map[*dirEdge]bool)
	var kept [][]*dirEdge
	var errs []RebuildError
stepFour:
	for _, v := range origins {
		for _, start := range edgesByOrigin[v] {
			if visited[start] || !working.Has(start.line) {
				continue
			}
			loop, err := m.traceLoop(start, edgesByOrigin, reverseOf, visited)
			if err != nil {
				if ierr, ok := err.(*InvariantError); ok {
					m.fail(ierr)
					break stepFour
				}
				errs = append(errs, RebuildError{
					StartEdge: edgeLabel(start),
					Reason:    err.Error(),
				})
				continue
			}
			if signedAreaOfLoop(loop) > 0 {
				kept = append(kept, loop)
			}
		}
	}
	if m.corrupt != nil {
		return nil, errs
	}

	// Step 5: assign sectors from kept loops.
	var recovered []*Sector
	for _, loop := range kept {
		s := m.buildSectorFromLoop(loop)
		m.addToMap(s)
		recovered = append(recovered, s)
	}

	// Step 6: clear transients.
	working.Each(func(l *Line) {
		l.Front.sectorOld, l.Front.sectorOverride = nil, nil
		l.Back.sectorOld, l.Back.sectorOverride = nil, nil
	})
	m.modifiedLines = mapset.New[*Line]()

	mlog.Log.Verbosef(2, "Rebuild: %d sector(s) recovered, %d loop(s) aborted", len(recovered), len(errs))
	m.notify(Change{Kind: SectorsRebuilt, Sectors: recovered})
	return recovered, errs
}

func sortEdgesByAngle(origin *Vertex, edges []*dirEdge) {
	op := origin.Point()
	angle := func(e *dirEdge) float64 { return float64(AngleTo(op, e.to().Point())) }
	// Small buckets; insertion sort keeps this allocation-free and stable.
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && angle(edges[j-1]) > angle(edges[j]); j-- {
			edges[j-1], edges[j] = edges[j], edges[j-1]
		}
	}
}

// nextLeft implements the next_left rule: the outgoing edge at
// incoming.to() whose CCW turn from the reverse of incoming is the
// smallest strictly-positive delta, excluding the reverse of incoming
// itself. If any other outgoing edge lies at a zero delta (it runs along
// the reverse of incoming), that is the degenerate condition flagged in
// SPEC_FULL §9 and is raised as an InvariantError rather than silently
// continuing. A vertex with no other
// outgoing edge at all (a dead end) falls back to backtracking along the
// reverse of incoming.
func (m *Map) nextLeft(edgesByOrigin map[*Vertex][]*dirEdge, reverseOf map[*dirEdge]*dirEdge, incoming *dirEdge) (*dirEdge, error) {
	v := incoming.to()
	rev := reverseOf[incoming]
	refAngle := AngleTo(v.Point(), incoming.from().Point())

	var best *dirEdge
	bestDelta := float64(fullCircle) + 1
	for _, c := range edgesByOrigin[v] {
		if c == rev {
			continue
		}
		delta := float64(AngleCCW(refAngle, AngleTo(v.Point(), c.to().Point())))
		if delta < angleEpsilon {
			return nil, newInvariantError("next-left-degenerate",
				"zero CCW delta at vertex (%d,%d)", v.X, v.Y)
		}
		if delta < bestDelta {
			bestDelta = delta
			best = c
		}
	}
	if best == nil {
		return rev, nil
	}
	return best, nil
}

func (m *Map) traceLoop(start *dirEdge, edgesByOrigin map[*Vertex][]*dirEdge, reverseOf map[*dirEdge]*dirEdge, visited map[*dirEdge]bool) ([]*dirEdge, error) {
	loop := []*dirEdge{start}
	visited[start] = true
	cur := start
	for step := 0; ; step++ {
		if step >= m.cfg.MaxTraceSteps {
			return nil, &RebuildError{StartEdge: edgeLabel(start), Reason: "guard limit exceeded"}
		}
		next, err := m.nextLeft(edgesByOrigin, reverseOf, cur)
		if err != nil {
			return nil, err
		}
		if next == start {
			return loop, nil
		}
		loop = append(loop, next)
		visited[next] = true
		cur = next
	}
}

func signedAreaOfLoop(loop []*dirEdge) float64 {
	flat := make([]float64, 0, len(loop)*2)
	for _, e := range loop {
		p := e.from().Point()
		flat = append(flat, p.X, p.Y)
	}
	return SignedArea2D(flat)
}

func edgeLabel(e *dirEdge) string {
	if e.forward {
		return LineKey(e.line.V0.X, e.line.V0.Y, e.line.V1.X, e.line.V1.Y) + ":fwd"
	}
	return LineKey(e.line.V0.X, e.line.V0.Y, e.line.V1.X, e.line.V1.Y) + ":bwd"
}

// buildSectorFromLoop implements §4.5 step 5: assign the loop's directed
// edges as the new sector's boundary, with the left-side rule (front if
// forward, else back), and copy properties from whichever template -
// sector_override first, then sector_old - the loop's edges carry.
func (m *Map) buildSectorFromLoop(loop []*dirEdge) *Sector {
	boundary := make([]BoundaryEdge, len(loop))
	flat := make([]float64, 0, len(loop)*2)
	var template *Sector
	for i, e := range loop {
		boundary[i] = BoundaryEdge{Line: e.line, Forward: e.forward}
		p := e.from().Point()
		flat = append(flat, p.X, p.Y)
		side := e.line.SideFor(e.forward)
		if template == nil {
			if side.sectorOverride != nil {
				template = side.sectorOverride
			} else if side.sectorOld != nil {
				template = side.sectorOld
			}
		}
	}
	s := &Sector{id: m.allocHandle(), Boundary: boundary, FlatXY: flat}
	if template != nil {
		s.Properties = template.Properties
	}
	for _, be := range boundary {
		be.sideOf().Sector = s
	}
	return s
}

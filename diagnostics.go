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

// diagnostics.go adds Map.Validate and Map.Stats - not named in the
// distilled spec, but a natural extension of VigilantBSP's own habit of
// pervasive internal self-checks (convexity.go's assertions,
// superblocks_test.go's const cross-checks), repurposed here into a
// caller-facing health check rather than a build-time panic.
package sectorkit

// Validate walks the invariants from §3 of the design document and
// returns every one it finds broken; a nil/empty result means the map is
// internally consistent.
func (m *Map) Validate() []error {
	var errs []error

	for key, v := range m.vertexByKey {
		if v.Key() != key {
			errs = append(errs, newInvariantError("vertex-map-bijective", "key %q maps to vertex keyed %q", key, v.Key()))
		}
	}
	seenVertex := make(map[*Vertex]bool)
	for _, v := range m.vertices {
		if seenVertex[v] {
			errs = append(errs, newInvariantError("vertex-map-bijective", "vertex %d appears twice in vertices", v.id))
		}
		seenVertex[v] = true
		if m.vertexByKey[v.Key()] != v {
			errs = append(errs, newInvariantError("vertex-map-bijective", "vertex %d missing from vertex_map", v.id))
		}
	}

	lineKeys := make(map[string]bool)
	for _, l := range m.lines {
		if l.V0 == l.V1 {
			errs = append(errs, newInvariantError("no-zero-length-line", "line %d has equal endpoints", l.id))
		}
		key := l.Key()
		if lineKeys[key] {
			errs = append(errs, newInvariantError("no-duplicate-line-key", "line key %q appears more than once", key))
		}
		lineKeys[key] = true
		if m.lineByKey[key] != l {
			errs = append(errs, newInvariantError("line-map-bijective", "line %d missing from line_map", l.id))
		}
		if !vertexHasIncidentLineOnce(l.V0, l) {
			errs = append(errs, newInvariantError("incidence-consistent", "line %d missing from v0's incidence list", l.id))
		}
		if !vertexHasIncidentLineOnce(l.V1, l) {
			errs = append(errs, newInvariantError("incidence-consistent", "line %d missing from v1's incidence list", l.id))
		}
		if m.modifiedLines.Size() == 0 {
			if l.Front.sectorOld != nil || l.Front.sectorOverride != nil || l.Back.sectorOld != nil || l.Back.sectorOverride != nil {
				errs = append(errs, newInvariantError("transients-cleared", "line %d still carries scratch sector fields outside a rebuild", l.id))
			}
		}
	}

	for _, s := range m.sectors {
		if SignedArea2D(s.FlatXY) <= 0 {
			errs = append(errs, newInvariantError("ccw-sector", "sector %d has non-positive signed area", s.id))
		}
		for _, be := range s.Boundary {
			if be.sideOf().Sector != s {
				errs = append(errs, newInvariantError("boundary-sector-consistent", "sector %d boundary line %d does not point back to it", s.id, be.Line.id))
			}
		}
	}

	for _, v := range m.vertices {
		if !gridHoldsExactly[*Vertex](m.vertexGrid, v) {
			errs = append(errs, newInvariantError("grid-consistent", "vertex %d not registered in exactly the cells its bounds overlap", v.id))
		}
	}
	for _, l := range m.lines {
		if !gridHoldsExactly[*Line](m.lineGrid, l) {
			errs = append(errs, newInvariantError("grid-consistent", "line %d not registered in exactly the cells its bounds overlap", l.id))
		}
	}

	return errs
}

func vertexHasIncidentLineOnce(v *Vertex, l *Line) bool {
	count := 0
	for _, o := range v.Lines {
		if o == l {
			count++
		}
	}
	return count == 1
}

func gridHoldsExactly[T Bounded](g *SpatialGrid[T], e T) bool {
	minX, minY, maxX, maxY := e.Bounds()
	cx0, cy0, cx1, cy1 := g.cellRange(minX, minY, maxX, maxY)
	for cx := cx0; cx <= cx1; cx++ {
		for cy := cy0; cy <= cy1; cy++ {
			if !g.Contains(cx, cy, e) {
				return false
			}
		}
	}
	for cx, col := range g.columns {
		for cy, cell := range col.cells {
			if (cx < cx0 || cx > cx1 || cy < cy0 || cy > cy1) && cell.Has(e) {
				return false
			}
		}
	}
	return true
}

// Stats summarizes map size and structure, for the CLI harness and tests.
type Stats struct {
	VertexCount     int
	LineCount       int
	SectorCount     int
	ThingCount      int
	MaxSectorDepth  int
	VertexGridCells int
	LineGridCells   int
	SectorGridCells int
	ThingGridCells  int
	UndoDepth       int
}

// Stats computes a structural snapshot, repurposing the kind of progress
// counters VigilantBSP prints via Log.Printf during DoLevel into a
// returned value instead of stdout lines.
func (m *Map) Stats() Stats {
	maxDepth := 0
	for _, s := range m.sectors {
		if d := s.depth(); d > maxDepth {
			maxDepth = d
		}
	}
	return Stats{
		VertexCount:     len(m.vertices),
		LineCount:       len(m.lines),
		SectorCount:     len(m.sectors),
		ThingCount:      len(m.things),
		MaxSectorDepth:  maxDepth,
		VertexGridCells: m.vertexGrid.CellCount(),
		LineGridCells:   m.lineGrid.CellCount(),
		SectorGridCells: m.sectorGrid.CellCount(),
		ThingGridCells:  m.thingGrid.CellCount(),
		UndoDepth:       m.History.UndoDepth(),
	}
}

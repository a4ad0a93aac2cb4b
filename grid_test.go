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

import "testing"

func TestSpatialGridInsertQueryRemove(t *testing.T) {
	g := NewSpatialGrid[*Vertex](128)
	v1 := &Vertex{id: 1, X: 10, Y: 10}
	v2 := &Vertex{id: 2, X: 500, Y: 500}
	g.Insert(v1)
	g.Insert(v2)

	var found []*Vertex
	g.Query(0, 0, 50, 50, func(v *Vertex) bool {
		found = append(found, v)
		return true
	})
	if len(found) != 1 || found[0] != v1 {
		t.Errorf("expected only v1 in range [0,0]-[50,50], got %v", found)
	}

	g.Remove(v1)
	found = nil
	g.Query(0, 0, 50, 50, func(v *Vertex) bool {
		found = append(found, v)
		return true
	})
	if len(found) != 0 {
		t.Errorf("expected no vertices after removing v1, got %v", found)
	}
	if g.CellCount() != 1 {
		t.Errorf("expected only v2's cell to remain, got %d cells", g.CellCount())
	}
}

func TestSpatialGridLineSpansMultipleCells(t *testing.T) {
	g := NewSpatialGrid[*Line](128)
	v0 := &Vertex{id: 1, X: 0, Y: 0}
	v1 := &Vertex{id: 2, X: 300, Y: 0}
	l := &Line{id: 1, V0: v0, V1: v1}
	g.Insert(l)

	if !g.Contains(0, 0, l) {
		t.Errorf("expected line to be registered in cell (0,0)")
	}
	if !g.Contains(2, 0, l) {
		t.Errorf("expected line to be registered in cell (2,0), its far end's cell")
	}
	if g.Contains(5, 5, l) {
		t.Errorf("line should not be registered in an unrelated cell")
	}
}

func TestSpatialGridQueryExcludesPartialOverlap(t *testing.T) {
	g := NewSpatialGrid[*Line](128)
	v0 := &Vertex{id: 1, X: 0, Y: 0}
	v1 := &Vertex{id: 2, X: 300, Y: 0}
	l := &Line{id: 1, V0: v0, V1: v1}
	g.Insert(l)

	var found []*Line
	// Query range overlaps the line's starting cell but the line's own
	// bounds are not a subset of the query rectangle, so it must not be
	// yielded.
	g.Query(0, 0, 128, 128, func(ln *Line) bool {
		found = append(found, ln)
		return true
	})
	if len(found) != 0 {
		t.Errorf("expected no results: line bounds exceed the query rectangle, got %v", found)
	}

	found = nil
	g.Query(-1, -1, 301, 1, func(ln *Line) bool {
		found = append(found, ln)
		return true
	})
	if len(found) != 1 {
		t.Errorf("expected the line once the query rectangle fully contains its bounds, got %v", found)
	}
}

func TestFloorDivNegative(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{-1, 128, -1},
		{-128, 128, -1},
		{-129, 128, -2},
		{127, 128, 0},
		{0, 128, 0},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Errorf("floorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

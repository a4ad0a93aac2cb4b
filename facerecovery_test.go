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

// TestRebuildBoxProducesOneSector is scenario S1.
func TestRebuildBoxProducesOneSector(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)

	if len(m.vertices) != 4 {
		t.Fatalf("vertices = %d, want 4", len(m.vertices))
	}
	if len(m.lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(m.lines))
	}
	if len(m.sectors) != 1 {
		t.Fatalf("sectors = %d, want 1", len(m.sectors))
	}
	s := m.sectors[0]
	if s.Parent != nil {
		t.Errorf("expected no parent, got one")
	}
	if SignedArea2D(s.FlatXY) <= 0 {
		t.Errorf("expected CCW (positive) signed area, got %v", s.FlatXY)
	}
}

// TestRebuildSplitOnVertexInsert is scenario S2.
func TestRebuildSplitOnVertexInsert(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)

	if _, err := m.AddVertex(50, 0, false); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if _, ok := m.lineByKey[LineKey(0, 0, 100, 0)]; ok {
		t.Errorf("expected the original line to be split away")
	}
	if _, ok := m.lineByKey[LineKey(0, 0, 50, 0)]; !ok {
		t.Errorf("expected first half of the split line")
	}
	if _, ok := m.lineByKey[LineKey(50, 0, 100, 0)]; !ok {
		t.Errorf("expected second half of the split line")
	}
	if len(m.sectors) != 1 {
		t.Fatalf("sectors = %d, want 1", len(m.sectors))
	}
	if n := len(m.sectors[0].Boundary); n != 5 {
		t.Errorf("boundary length = %d, want 5", n)
	}
}

// TestRebuildProperIntersection is scenario S3.
func TestRebuildProperIntersection(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 100)
	mustAddLine(t, m, 0, 100, 100, 0)

	if _, ok := m.vertexByKey[VertexKey(50, 50)]; !ok {
		t.Fatalf("expected a vertex at the crossing point (50,50)")
	}
	if len(m.lines) != 4 {
		t.Errorf("lines = %d, want 4 (each diagonal split in two)", len(m.lines))
	}
	if len(m.sectors) != 0 {
		t.Errorf("sectors = %d, want 0 (no enclosing box)", len(m.sectors))
	}
}

// TestRebuildParentChild is scenario S5.
func TestRebuildParentChild(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 1000, 0)
	mustAddLine(t, m, 1000, 0, 1000, 1000)
	mustAddLine(t, m, 1000, 1000, 0, 1000)
	mustAddLine(t, m, 0, 1000, 0, 0)

	mustAddLine(t, m, 100, 100, 200, 100)
	mustAddLine(t, m, 200, 100, 200, 200)
	mustAddLine(t, m, 200, 200, 100, 200)
	mustAddLine(t, m, 100, 200, 100, 100)

	if len(m.sectors) != 2 {
		t.Fatalf("sectors = %d, want 2", len(m.sectors))
	}
	var inner, outer *Sector
	for _, s := range m.sectors {
		if s.Parent != nil {
			inner = s
		} else {
			outer = s
		}
	}
	if inner == nil || outer == nil {
		t.Fatalf("expected one parented and one unparented sector")
	}
	if inner.Parent != outer {
		t.Errorf("inner.Parent != outer")
	}
	found := false
	for _, c := range outer.Children {
		if c == inner {
			found = true
		}
	}
	if !found {
		t.Errorf("outer.Children does not contain inner")
	}
}

func mustAddLine(t *testing.T, m *Map, x0, y0, x1, y1 int) {
	t.Helper()
	if _, err := m.AddLine(x0, y0, x1, y1, false); err != nil {
		t.Fatalf("AddLine(%d,%d,%d,%d): %v", x0, y0, x1, y1, err)
	}
}

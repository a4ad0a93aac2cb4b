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

func TestChildOfWalksAncestorChain(t *testing.T) {
	grandparent := &Sector{id: 1}
	parent := &Sector{id: 2, Parent: grandparent}
	child := &Sector{id: 3, Parent: parent}

	if !child.ChildOf(parent) {
		t.Errorf("expected child.ChildOf(parent)")
	}
	if !child.ChildOf(grandparent) {
		t.Errorf("expected child.ChildOf(grandparent) via the ancestor chain")
	}
	if grandparent.ChildOf(child) {
		t.Errorf("grandparent must not be ChildOf its own descendant")
	}
}

func TestMergeChildVectorsSingleLoop(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 1000, 0)
	mustAddLine(t, m, 1000, 0, 1000, 1000)
	mustAddLine(t, m, 1000, 1000, 0, 1000)
	mustAddLine(t, m, 0, 1000, 0, 0)

	mustAddLine(t, m, 100, 100, 200, 100)
	mustAddLine(t, m, 200, 100, 200, 200)
	mustAddLine(t, m, 200, 200, 100, 200)
	mustAddLine(t, m, 100, 200, 100, 100)

	var outer *Sector
	for _, s := range m.sectors {
		if s.Parent == nil {
			outer = s
		}
	}
	if outer == nil {
		t.Fatalf("expected an unparented outer sector")
	}
	loops := m.MergeChildVectors(outer)
	if len(loops) != 1 {
		t.Fatalf("MergeChildVectors: got %d loops, want 1", len(loops))
	}
	if len(loops[0]) != 8 {
		t.Errorf("loop has %d coordinates, want 8 (4 vertices)", len(loops[0]))
	}
}

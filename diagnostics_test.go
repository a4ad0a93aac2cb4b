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

func TestValidateCleanAfterBoxBuild(t *testing.T) {
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)

	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
	stats := m.Stats()
	if stats.VertexCount != 4 || stats.LineCount != 4 || stats.SectorCount != 1 {
		t.Errorf("Stats() = %+v, want 4 vertices, 4 lines, 1 sector", stats)
	}
}

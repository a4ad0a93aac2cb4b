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
	"testing"

	"github.com/cheekybits/is"
)

// TestScenarioS4CollinearMergeAfterDelete covers §8 S4: two collinear
// lines sharing identical attributes, then a remove_vertex at the shared
// point, then a re-add across the gap - the merge pass lives only on the
// add_line path, matching the Open Question decision in SPEC_FULL §9. The
// two lines come from splitting one line with add_vertex at (50,0): two
// separate add_line calls would already merge into a single line.
func TestScenarioS4CollinearMergeAfterDelete(t *testing.T) {
	is := is.New(t)
	m := New(nil)

	_, err := m.AddLine(0, 0, 100, 0, false)
	is.NoErr(err)
	_, err = m.AddVertex(50, 0, false)
	is.NoErr(err)
	is.Equal(len(m.lines), 2)

	is.NoErr(m.RemoveVertex(50, 0, false))
	is.Equal(len(m.lines), 0)
	is.Equal(len(m.vertices), 2)

	_, err = m.AddLine(0, 0, 100, 0, false)
	is.NoErr(err)
	is.Equal(len(m.lines), 1)
	l, ok := m.lineByKey[LineKey(0, 0, 100, 0)]
	is.True(ok)
	is.Equal(l.V0.X, 0)
	is.Equal(l.V1.X, 100)
}

// TestScenarioS6UndoRedoCoalescing covers §8 S6 directly against the Map
// API (history_test.go already covers it against History in isolation).
func TestScenarioS6UndoRedoCoalescing(t *testing.T) {
	is := is.New(t)
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)
	is.Equal(len(m.sectors), 1)
	s := m.sectors[0]
	before := s.Properties.LightLevel
	depth := m.History.UndoDepth()

	is.NoErr(m.SetSectorProperty(s, "light_level", 160))
	is.NoErr(m.SetSectorProperty(s, "light_level", 164))
	is.NoErr(m.SetSectorProperty(s, "light_level", 168))
	is.Equal(s.Properties.LightLevel, 168)
	is.Equal(m.History.UndoDepth(), depth+1)

	is.True(m.History.Undo())
	is.Equal(s.Properties.LightLevel, before)
}

// TestScenarioS1BoxEndToEnd exercises the same geometry as
// facerecovery_test.go's TestRebuildBoxProducesOneSector but through the
// is-assertion style used for the longer integration scenarios.
func TestScenarioS1BoxEndToEnd(t *testing.T) {
	is := is.New(t)
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)

	is.Equal(len(m.vertices), 4)
	is.Equal(len(m.lines), 4)
	is.Equal(len(m.sectors), 1)
	is.Nil(m.sectors[0].Parent)
	errs := m.Validate()
	is.Equal(len(errs), 0)
}

// TestSerializeRoundTrip covers §8 property 4: deserialize(serialize(map))
// must reproduce an equivalent vertex/line/sector/thing set.
func TestSerializeRoundTrip(t *testing.T) {
	is := is.New(t)
	m := New(nil)
	mustAddLine(t, m, 0, 0, 100, 0)
	mustAddLine(t, m, 100, 0, 100, 100)
	mustAddLine(t, m, 100, 100, 0, 100)
	mustAddLine(t, m, 0, 100, 0, 0)
	_, err := m.AddThing(10, 10, 0, 1, 0)
	is.NoErr(err)
	is.NoErr(m.SetSectorProperty(m.sectors[0], "light_level", 200))

	data, err := m.Serialize()
	is.NoErr(err)

	m2, err := Deserialize(data, nil)
	is.NoErr(err)
	is.Equal(len(m2.vertices), len(m.vertices))
	is.Equal(len(m2.lines), len(m.lines))
	is.Equal(len(m2.sectors), len(m.sectors))
	is.Equal(len(m2.things), len(m.things))
	is.Equal(m2.sectors[0].Properties.LightLevel, 200)
	is.Equal(len(m2.Validate()), 0)
}

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

// mapcore.go is the central orchestrating type, playing the same role for
// this editor core that level.go's Level plays for VigilantBSP's build
// pipeline: it owns every array, every index, and dispatches to the
// specialized files (facerecovery.go, sectortree.go, copypaste.go,
// serialize.go) rather than inlining their algorithms here.
package sectorkit

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/zyedidia/generic/mapset"

	"github.com/sectorkit/sectorkit/internal/mlog"
)

// Map owns every vertex, line, sector and thing in one planar subdivision,
// plus the indexes, grids, selection, metadata and history needed to edit
// it interactively. Map is not safe for concurrent use - see SPEC_FULL §5,
// "single-threaded cooperative".
type Map struct {
	cfg *Config

	vertices []*Vertex
	lines    []*Line
	sectors  []*Sector
	things   []*Thing

	vertexByKey map[string]*Vertex
	lineByKey   map[string]*Line

	modifiedLines mapset.Set[*Line]
	selection     mapset.Set[int64]

	vertexGrid *SpatialGrid[*Vertex]
	lineGrid   *SpatialGrid[*Line]
	sectorGrid *SpatialGrid[*Sector]
	thingGrid  *SpatialGrid[*Thing]

	metadata map[string]interface{}

	History *History
	sinks   []NotifySink

	nextHandle int64
	corrupt    error
}

// New constructs an empty map. A nil cfg is replaced with DefaultConfig().
func New(cfg *Config) *Map {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	mlog.Log.SetVerbosity(cfg.Verbosity)
	return &Map{
		cfg:           cfg,
		vertexByKey:   make(map[string]*Vertex),
		lineByKey:     make(map[string]*Line),
		modifiedLines: mapset.New[*Line](),
		selection:     mapset.New[int64](),
		vertexGrid:    NewSpatialGrid[*Vertex](cfg.GridCellSize),
		lineGrid:      NewSpatialGrid[*Line](cfg.GridCellSize),
		sectorGrid:    NewSpatialGrid[*Sector](cfg.GridCellSize),
		thingGrid:     NewSpatialGrid[*Thing](cfg.GridCellSize),
		metadata:      make(map[string]interface{}),
		History:       NewHistory(),
	}
}

// AddSink registers an observer. Sinks are notified synchronously, in
// registration order, after the mutation that triggered the notification
// has fully applied.
func (m *Map) AddSink(sink NotifySink) {
	m.sinks = append(m.sinks, sink)
}

func (m *Map) notify(c Change) {
	for _, s := range m.sinks {
		s.Notify(m, c)
	}
}

func (m *Map) allocHandle() int64 {
	m.nextHandle++
	return m.nextHandle
}

// Corrupt reports whether an invariant violation has been observed on this
// map; once true, every mutating method refuses with ErrMapCorrupt.
func (m *Map) Corrupt() error { return m.corrupt }

// SectorByID returns the sector with the given handle, or nil if none
// exists - sector identity is ephemeral across rebuilds, so callers that
// hold onto a handle across a Rebuild should expect this to return nil.
func (m *Map) SectorByID(id int64) *Sector {
	for _, s := range m.sectors {
		if s.id == id {
			return s
		}
	}
	return nil
}

// Sectors returns a snapshot copy of the map's current sector list.
func (m *Map) Sectors() []*Sector {
	out := make([]*Sector, len(m.sectors))
	copy(out, m.sectors)
	return out
}

func (m *Map) fail(err *InvariantError) error {
	mlog.Log.Fatal("sectorkit: %s", err.Error())
	m.corrupt = err
	return err
}

func (m *Map) checkCorrupt() error {
	if m.corrupt != nil {
		return ErrMapCorrupt
	}
	return nil
}

// --- vertex primitives ---------------------------------------------------

func (m *Map) insertVertexRaw(v *Vertex) {
	m.vertexByKey[v.Key()] = v
	m.vertices = append(m.vertices, v)
	m.vertexGrid.Insert(v)
}

func (m *Map) eraseVertexRaw(v *Vertex) {
	delete(m.vertexByKey, v.Key())
	for i, o := range m.vertices {
		if o == v {
			m.vertices = append(m.vertices[:i], m.vertices[i+1:]...)
			break
		}
	}
	m.vertexGrid.Remove(v)
}

// AddVertex implements spec §4.4 add_vertex: rounds the coordinates,
// returns the existing vertex if one already occupies (x,y), otherwise
// creates one and splits every line that passes through it collinearly.
// skipRebuild suppresses the trailing Rebuild call some callers (AddLine's
// internal steps) want to defer until a larger batch of edits completes.
func (m *Map) AddVertex(x, y int, skipRebuild bool) (*Vertex, error) {
	if err := m.checkCorrupt(); err != nil {
		return nil, err
	}
	key := VertexKey(x, y)
	if existing, ok := m.vertexByKey[key]; ok {
		return existing, nil
	}

	v := &Vertex{id: m.allocHandle(), X: x, Y: y}
	action := &Action{
		Target:     v.id,
		Parameter:  "add_vertex",
		Coalescing: false,
		Do:         func() { m.insertVertexRaw(v) },
		Undo:       func() { m.eraseVertexRaw(v) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: VertexAdded, Vertex: v})

	if err := m.splitLinesThrough(v); err != nil {
		return v, err
	}

	if !skipRebuild {
		if _, errs := m.Rebuild(); len(errs) > 0 {
			mlog.Log.Verbosef(1, "AddVertex(%d,%d): %d rebuild loop(s) aborted", x, y, len(errs))
		}
	}
	return v, nil
}

// splitLinesThrough finds every existing line collinear with v and whose
// segment contains v, and splits each into two lines sharing v, preserving
// the old sides/flags on both halves (spec §4.4 add_vertex, last sentence).
func (m *Map) splitLinesThrough(v *Vertex) error {
	p := v.Point()
	eps := m.cfg.Epsilon
	var toSplit []*Line
	for _, l := range m.lines {
		if l.V0 == v || l.V1 == v {
			continue
		}
		a, b := l.V0.Point(), l.V1.Point()
		if Orientation(a, b, p, eps) == 0 && OnSegment(a, p, b, eps) {
			toSplit = append(toSplit, l)
		}
	}
	for _, l := range toSplit {
		if err := m.splitLine(l, v); err != nil {
			return err
		}
	}
	return nil
}

// splitLine replaces l with two lines, l.V0-v and v-l.V1, both carrying l's
// sides and flags, and marks both modified. It is itself a single history
// action so undo restores l exactly.
func (m *Map) splitLine(l *Line, v *Vertex) error {
	v0, v1 := l.V0, l.V1
	half1 := &Line{id: m.allocHandle(), V0: v0, V1: v, Front: l.Front, Back: l.Back, Flags: l.Flags}
	half2 := &Line{id: m.allocHandle(), V0: v, V1: v1, Front: l.Front, Back: l.Back, Flags: l.Flags}

	action := &Action{
		Target:     l.id,
		Parameter:  "split",
		Coalescing: false,
		Do: func() {
			m.eraseLineRaw(l)
			m.insertLineRaw(half1)
			m.insertLineRaw(half2)
			m.modifiedLines.Put(half1)
			m.modifiedLines.Put(half2)
		},
		Undo: func() {
			m.eraseLineRaw(half1)
			m.eraseLineRaw(half2)
			m.insertLineRaw(l)
			m.modifiedLines.Remove(half1)
			m.modifiedLines.Remove(half2)
			m.modifiedLines.Put(l)
		},
	}
	m.History.Do(action)
	m.notify(Change{Kind: LineRemoved, Line: l})
	m.notify(Change{Kind: LineAdded, Line: half1})
	m.notify(Change{Kind: LineAdded, Line: half2})
	return nil
}

// RemoveVertex implements spec §4.4 remove_vertex: removes every incident
// line first (each its own history step), then the vertex itself. Per the
// Open Question decision recorded in SPEC_FULL §9, this never re-merges the
// neighbors left behind - only AddLine performs collinear merging.
func (m *Map) RemoveVertex(x, y int, skipRebuild bool) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	v, ok := m.vertexByKey[VertexKey(x, y)]
	if !ok {
		return newValidationError(fmt.Sprintf("vertex:(%d,%d)", x, y), "remove_vertex", "no vertex at that position")
	}
	for _, l := range v.IncidentLines() {
		if err := m.removeLineRaw(l); err != nil {
			return err
		}
	}
	action := &Action{
		Target:     v.id,
		Parameter:  "remove_vertex",
		Coalescing: false,
		Do:         func() { m.eraseVertexRaw(v) },
		Undo:       func() { m.insertVertexRaw(v) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: VertexRemoved, Vertex: v})

	if !skipRebuild {
		m.Rebuild()
	}
	return nil
}

// MoveVertex implements spec §4.4 move_vertex. If `to` is unoccupied, every
// incident line of `from` is cloned onto a freshly created vertex at `to`
// and the old lines/vertex are removed - no vertex is ever mutated in
// place, so the reinsertion composes through History like any other edit.
// If `to` is already occupied, the two vertices are merged per the
// dedup/clone rule in §4.4.
func (m *Map) MoveVertex(fromX, fromY, toX, toY int, skipRebuild bool) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	if fromX == toX && fromY == toY {
		return nil // degenerate: identical move, ignored silently
	}
	from, ok := m.vertexByKey[VertexKey(fromX, fromY)]
	if !ok {
		return newValidationError(fmt.Sprintf("vertex:(%d,%d)", fromX, fromY), "move_vertex", "no vertex at that position")
	}

	target, existed := m.vertexByKey[VertexKey(toX, toY)]
	incident := from.IncidentLines()

	if !existed {
		nv, err := m.AddVertex(toX, toY, true)
		if err != nil {
			return err
		}
		target = nv
	}

	for _, l := range incident {
		other := l.Other(from)
		if other == target {
			// became degenerate (zero-length): drop it.
			if err := m.removeLineRaw(l); err != nil {
				return err
			}
			continue
		}
		newKey := LineKey(other.X, other.Y, target.X, target.Y)
		if _, dup := m.lineByKey[newKey]; dup {
			if err := m.removeLineRaw(l); err != nil {
				return err
			}
			continue
		}
		cv0, cv1 := target, other
		if l.V1 == from {
			cv0, cv1 = other, target
		}
		clone := &Line{id: m.allocHandle(), V0: cv0, V1: cv1, Front: l.Front, Back: l.Back, Flags: l.Flags}
		if err := m.removeLineRaw(l); err != nil {
			return err
		}
		action := &Action{
			Target:     clone.id,
			Parameter:  "move_clone",
			Coalescing: false,
			Do:         func() { m.insertLineRaw(clone); m.modifiedLines.Put(clone) },
			Undo:       func() { m.eraseLineRaw(clone); m.modifiedLines.Remove(clone) },
		}
		m.History.Do(action)
		m.notify(Change{Kind: LineAdded, Line: clone})
	}

	action := &Action{
		Target:     from.id,
		Parameter:  "move_vertex",
		Coalescing: true,
		Do:         func() { m.eraseVertexRaw(from) },
		Undo:       func() { m.insertVertexRaw(from) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: VertexRemoved, Vertex: from})

	if !skipRebuild {
		m.Rebuild()
	}
	return nil
}

// --- line primitives -------------------------------------------------------

func (m *Map) insertLineRaw(l *Line) {
	m.lineByKey[l.Key()] = l
	m.lines = append(m.lines, l)
	m.lineGrid.Insert(l)
	l.V0.addIncidentLine(l)
	l.V1.addIncidentLine(l)
}

func (m *Map) eraseLineRaw(l *Line) {
	delete(m.lineByKey, l.Key())
	for i, o := range m.lines {
		if o == l {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			break
		}
	}
	m.lineGrid.Remove(l)
	l.V0.removeIncidentLine(l)
	l.V1.removeIncidentLine(l)
}

// removeLineRaw is the shared guts of RemoveLine and the internal callers
// (RemoveVertex, MoveVertex) that must remove a line as one history step
// without the public method's corruption/lookup checks.
func (m *Map) removeLineRaw(l *Line) error {
	action := &Action{
		Target:     l.id,
		Parameter:  "remove_line",
		Coalescing: false,
		Do:         func() { m.eraseLineRaw(l); m.modifiedLines.Remove(l) },
		Undo:       func() { m.insertLineRaw(l); m.modifiedLines.Put(l) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: LineRemoved, Line: l})
	m.markTouchingModified(l.V0)
	m.markTouchingModified(l.V1)
	return nil
}

func (m *Map) markTouchingModified(v *Vertex) {
	for _, l := range v.IncidentLines() {
		m.modifiedLines.Put(l)
	}
}

// RemoveLine implements spec §4.4 remove_line: look up by key, remove if
// present. A missing key is a silent no-op, matching "ignored silently"
// degenerate-input handling rather than an invariant violation, since the
// caller cannot have known the line existed without racing another edit
// (impossible in this single-threaded model, but harmless either way).
func (m *Map) RemoveLine(x0, y0, x1, y1 int, skipRebuild bool) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	l, ok := m.lineByKey[LineKey(x0, y0, x1, y1)]
	if !ok {
		return nil
	}
	if err := m.removeLineRaw(l); err != nil {
		return err
	}
	if !skipRebuild {
		m.Rebuild()
	}
	return nil
}

// createLine is the single history-wrapped primitive that actually
// instantiates a new Line with default attributes, used by AddLine's gap
// path (step 6) and by CopySelection/PasteMap. splitLine builds its two
// halves directly instead.
func (m *Map) createLine(v0, v1 *Vertex) *Line {
	l := &Line{id: m.allocHandle(), V0: v0, V1: v1}
	action := &Action{
		Target:     l.id,
		Parameter:  "add_line",
		Coalescing: false,
		Do:         func() { m.insertLineRaw(l); m.modifiedLines.Put(l) },
		Undo:       func() { m.eraseLineRaw(l); m.modifiedLines.Remove(l) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: LineAdded, Line: l})
	return l
}

// WouldSegmentCrossAny implements spec §4.4's would_segment_cross_any: the
// first existing line that either properly intersects a-b or overlaps it
// collinearly beyond a shared endpoint, skipping any line present in
// ignore.
func (m *Map) WouldSegmentCrossAny(a, b r2.Point, ignore map[*Line]bool) *Line {
	eps := m.cfg.Epsilon
	for _, l := range m.lines {
		if ignore[l] {
			continue
		}
		c, d := l.V0.Point(), l.V1.Point()
		if SegmentsProperlyIntersect(a, b, c, d, eps) {
			return l
		}
		if CollinearOverlapMoreThanEndpoint(a, b, c, d, eps) {
			return l
		}
	}
	return nil
}

// interval is a [s,e] sub-range in the new segment's own t-parameterization
// (0 at from, 1 at to), used by AddLine step 5 to accumulate existing
// collinear coverage before computing the gaps that need new lines.
type interval struct{ s, e float64 }

// AddLine implements spec §4.4 add_line, the densest operation in the
// core, following its seven numbered steps in order.
func (m *Map) AddLine(x0, y0, x1, y1 int, skipRebuild bool) ([]*Line, error) {
	if err := m.checkCorrupt(); err != nil {
		return nil, err
	}
	// Step 1: round (inputs are already int here; reject degenerate).
	if x0 == x1 && y0 == y1 {
		return nil, nil
	}

	// Step 2: ensure both endpoints exist (splits any collinear line they
	// land on).
	v0, err := m.AddVertex(x0, y0, true)
	if err != nil {
		return nil, err
	}
	v1, err := m.AddVertex(x1, y1, true)
	if err != nil {
		return nil, err
	}

	// Step 3: exact line already present.
	if _, ok := m.lineByKey[LineKey(x0, y0, x1, y1)]; ok {
		if !skipRebuild {
			m.Rebuild()
		}
		return nil, nil
	}

	eps := m.cfg.Epsilon
	a, b := v0.Point(), v1.Point()
	dx, dy := b.X-a.X, b.Y-a.Y
	length2 := dx*dx + dy*dy

	tOf := func(p r2.Point) float64 {
		if length2 == 0 {
			return 0
		}
		return ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / length2
	}

	minX, minY, maxX, maxY := minInt(x0, x1), minInt(y0, y1), maxInt(x0, x1), maxInt(y0, y1)

	// Step 4: proper intersections with existing lines overlapping bounds.
	for {
		var found *Line
		var atPoint r2.Point
		for _, l := range m.lines {
			if l.V0 == v0 || l.V0 == v1 || l.V1 == v0 || l.V1 == v1 {
				continue
			}
			lMinX, lMinY, lMaxX, lMaxY := l.Bounds()
			if lMaxX < minX || lMinX > maxX || lMaxY < minY || lMinY > maxY {
				continue
			}
			c, d := l.V0.Point(), l.V1.Point()
			if SegmentsProperlyIntersect(a, b, c, d, eps) {
				if p, ok := IntersectionPoint(a, b, c, d); ok {
					found = l
					atPoint = p
					break
				}
			}
		}
		if found == nil {
			break
		}
		rx, ry := roundCoord(atPoint.X), roundCoord(atPoint.Y)
		if _, err := m.AddVertex(rx, ry, true); err != nil {
			return nil, err
		}
	}

	// Step 5: parameterize and accumulate collinear coverage.
	var intervals []interval
	for _, l := range m.lines {
		c, d := l.V0.Point(), l.V1.Point()
		if Orientation(a, b, c, eps) != 0 || Orientation(a, b, d, eps) != 0 {
			continue
		}
		tc, td := tOf(c), tOf(d)
		lo, hi := tc, td
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi < -eps || lo > 1+eps {
			continue
		}
		if lo < 0 {
			lo = 0
		}
		if hi > 1 {
			hi = 1
		}
		intervals = append(intervals, interval{lo, hi})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].s < intervals[j].s })
	var merged []interval
	for _, iv := range intervals {
		if len(merged) > 0 && iv.s <= merged[len(merged)-1].e+eps {
			if iv.e > merged[len(merged)-1].e {
				merged[len(merged)-1].e = iv.e
			}
			continue
		}
		merged = append(merged, iv)
	}

	// Step 5.5: a gap may still pass through a vertex already sitting on
	// this segment - one of step 4's proper intersections, or a
	// pre-existing split point - that the coverage-interval pass above
	// never sees since it only looks at other lines' endpoints, not at
	// vertices with no line of their own along (a,b). Force a break at
	// every such t so the gap is never emitted as one line straight
	// through it.
	var breakTs []float64
	for _, v := range m.vertices {
		if v == v0 || v == v1 {
			continue
		}
		p := v.Point()
		if Orientation(a, b, p, eps) != 0 {
			continue
		}
		if t := tOf(p); t > eps && t < 1-eps {
			breakTs = append(breakTs, t)
		}
	}
	sort.Float64s(breakTs)

	// Step 6: gaps between merged coverage become new lines, subdivided at
	// any forced break point that falls inside the gap.
	var created []*Line
	cursor := 0.0
	pointAt := func(t float64) (int, int) {
		return roundCoord(a.X + t*dx), roundCoord(a.Y + t*dy)
	}
	addSegment := func(s, e float64) error {
		if e-s <= eps {
			return nil
		}
		sx, sy := pointAt(s)
		ex, ey := pointAt(e)
		sv, err := m.AddVertex(sx, sy, true)
		if err != nil {
			return err
		}
		ev, err := m.AddVertex(ex, ey, true)
		if err != nil {
			return err
		}
		if sv == ev {
			return nil
		}
		if _, ok := m.lineByKey[LineKey(sv.X, sv.Y, ev.X, ev.Y)]; ok {
			return nil
		}
		created = append(created, m.createLine(sv, ev))
		return nil
	}
	addGap := func(s, e float64) error {
		points := []float64{s}
		for _, t := range breakTs {
			if t > s+eps && t < e-eps {
				points = append(points, t)
			}
		}
		points = append(points, e)
		for i := 0; i+1 < len(points); i++ {
			if err := addSegment(points[i], points[i+1]); err != nil {
				return err
			}
		}
		return nil
	}
	for _, iv := range merged {
		if err := addGap(cursor, iv.s); err != nil {
			return nil, err
		}
		cursor = iv.e
	}
	if err := addGap(cursor, 1); err != nil {
		return nil, err
	}

	// Step 7: outward collinear merge pass at each endpoint of every newly
	// created line.
	for _, l := range created {
		m.mergeOutward(l)
	}

	if !skipRebuild {
		if _, errs := m.Rebuild(); len(errs) > 0 {
			mlog.Log.Verbosef(1, "AddLine(%d,%d,%d,%d): %d rebuild loop(s) aborted", x0, y0, x1, y1, len(errs))
		}
	}
	return created, nil
}

// mergeOutward implements spec §4.4 step 7: repeatedly tries to merge l
// with a collinear neighbor at either endpoint until no merge applies.
func (m *Map) mergeOutward(l *Line) {
	for {
		merged := m.tryMergeAt(l, l.V0) || m.tryMergeAt(l, l.V1)
		if !merged {
			return
		}
	}
}

// tryMergeAt looks for a line incident to pivot, collinear with l, whose
// far endpoint is not already an endpoint of l, and attempts to fuse the
// two into a single (a,c) line. Returns whether a merge happened (in which
// case l itself was replaced in place by the merged line's fields, so the
// caller's *Line pointer keeps being the "current" line across repeated
// calls is not guaranteed - callers should re-fetch from pivot if looping;
// mergeOutward re-derives the candidate each iteration via l.V0/l.V1).
// A pivot where more than two lines meet is a junction and is never
// merged across.
func (m *Map) tryMergeAt(l *Line, pivot *Vertex) bool {
	eps := m.cfg.Epsilon
	if len(pivot.Lines) > 2 {
		return false
	}
	far := l.Other(pivot)
	for _, n := range pivot.IncidentLines() {
		if n == l {
			continue
		}
		other := n.Other(pivot)
		if other == far {
			continue // would be degenerate
		}
		p0, p1 := far.Point(), pivot.Point()
		p2 := other.Point()
		if Orientation(p0, p1, p2, eps) != 0 {
			continue
		}
		// Reject if merging would cross other geometry.
		ignore := map[*Line]bool{l: true, n: true}
		if m.WouldSegmentCrossAny(p0, p2, ignore) != nil {
			continue
		}
		mergedKey := LineKey(far.X, far.Y, other.X, other.Y)
		if existing, dup := m.lineByKey[mergedKey]; dup {
			m.removeLineRaw(l)
			m.removeLineRaw(n)
			m.modifiedLines.Put(existing)
			return true
		}
		// Merged line inherits attributes from the older neighbor: n was
		// already present before l was created by this AddLine call, so n
		// is the "older" neighbor whenever l is the fresh one.
		merged := &Line{id: m.allocHandle(), V0: far, V1: other, Front: n.Front, Back: n.Back, Flags: n.Flags}
		m.removeLineRaw(l)
		m.removeLineRaw(n)
		action := &Action{
			Target:     merged.id,
			Parameter:  "merge",
			Coalescing: false,
			Do:         func() { m.insertLineRaw(merged); m.modifiedLines.Put(merged) },
			Undo:       func() { m.eraseLineRaw(merged); m.modifiedLines.Remove(merged) },
		}
		m.History.Do(action)
		m.notify(Change{Kind: LineAdded, Line: merged})
		*l = *merged
		return true
	}
	return false
}

// --- things ----------------------------------------------------------------

// AddThing inserts a point entity, as its own history step.
func (m *Map) AddThing(x, y, z, typeID int, angle float64) (*Thing, error) {
	if err := m.checkCorrupt(); err != nil {
		return nil, err
	}
	t := &Thing{id: m.allocHandle(), X: x, Y: y, Z: z, TypeID: typeID, Angle: angle}
	action := &Action{
		Target:     t.id,
		Parameter:  "add_thing",
		Coalescing: false,
		Do:         func() { m.things = append(m.things, t); m.thingGrid.Insert(t) },
		Undo:       func() { m.removeThingRaw(t) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: ThingAdded, Thing: t})
	return t, nil
}

func (m *Map) removeThingRaw(t *Thing) {
	for i, o := range m.things {
		if o == t {
			m.things = append(m.things[:i], m.things[i+1:]...)
			break
		}
	}
	m.thingGrid.Remove(t)
}

// RemoveThing deletes a thing by handle.
func (m *Map) RemoveThing(id int64) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	var t *Thing
	for _, o := range m.things {
		if o.id == id {
			t = o
			break
		}
	}
	if t == nil {
		return newValidationError(fmt.Sprintf("thing:%d", id), "remove_thing", "no thing with that handle")
	}
	action := &Action{
		Target:     t.id,
		Parameter:  "remove_thing",
		Coalescing: false,
		Do:         func() { m.removeThingRaw(t) },
		Undo:       func() { m.things = append(m.things, t); m.thingGrid.Insert(t) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: ThingRemoved, Thing: t})
	return nil
}

// --- selection ---------------------------------------------------------

// Select replaces the current selection set and emits a Selected notification.
func (m *Map) Select(handles []int64) {
	m.selection = mapset.New[int64]()
	for _, h := range handles {
		m.selection.Put(h)
	}
	m.notify(Change{Kind: Selected, Selection: handles})
}

// Deselect clears the current selection.
func (m *Map) Deselect() {
	m.selection = mapset.New[int64]()
	m.notify(Change{Kind: Deselected})
}

// IsSelected reports whether a handle is in the current selection.
func (m *Map) IsSelected(handle int64) bool { return m.selection.Has(handle) }

// --- spatial iteration API ----------------------------------------------

// IterateVertices visits vertices in array order, or via the spatial grid
// when a bounding box is given, honoring selectionOnly; stops early if
// callback returns false. A nil box means "no bounds filter".
func (m *Map) IterateVertices(box *[4]int, selectionOnly bool, callback func(*Vertex) bool) {
	visit := func(v *Vertex) bool {
		if selectionOnly && !m.selection.Has(v.id) {
			return true
		}
		return callback(v)
	}
	if box == nil {
		for _, v := range m.vertices {
			if !visit(v) {
				return
			}
		}
		return
	}
	m.vertexGrid.Query(box[0], box[1], box[2], box[3], visit)
}

// IterateLines is IterateVertices's counterpart for lines.
func (m *Map) IterateLines(box *[4]int, selectionOnly bool, callback func(*Line) bool) {
	visit := func(l *Line) bool {
		if selectionOnly && !m.selection.Has(l.id) {
			return true
		}
		return callback(l)
	}
	if box == nil {
		for _, l := range m.lines {
			if !visit(l) {
				return
			}
		}
		return
	}
	m.lineGrid.Query(box[0], box[1], box[2], box[3], visit)
}

// IterateSectors is IterateVertices's counterpart for sectors.
func (m *Map) IterateSectors(box *[4]int, selectionOnly bool, callback func(*Sector) bool) {
	visit := func(s *Sector) bool {
		if selectionOnly && !m.selection.Has(s.id) {
			return true
		}
		return callback(s)
	}
	if box == nil {
		for _, s := range m.sectors {
			if !visit(s) {
				return
			}
		}
		return
	}
	m.sectorGrid.Query(box[0], box[1], box[2], box[3], visit)
}

// IterateThings is IterateVertices's counterpart for things.
func (m *Map) IterateThings(box *[4]int, selectionOnly bool, callback func(*Thing) bool) {
	visit := func(t *Thing) bool {
		if selectionOnly && !m.selection.Has(t.id) {
			return true
		}
		return callback(t)
	}
	if box == nil {
		for _, t := range m.things {
			if !visit(t) {
				return
			}
		}
		return
	}
	m.thingGrid.Query(box[0], box[1], box[2], box[3], visit)
}

// --- property setters (spec §6) ------------------------------------------

// SetSideProperty implements set_side_property: validates the attribute
// name/type, no-ops if the value is unchanged, otherwise applies it as a
// coalescing history step keyed by (line handle, "front"|"back"+":"+name).
func (m *Map) SetSideProperty(l *Line, isFront bool, attribute string, value interface{}) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	side := l.SideFor(isFront)
	var old interface{}
	var apply func(interface{})
	switch attribute {
	case "upper_texture":
		old, apply = side.UpperTexture, func(v interface{}) { side.UpperTexture = v.(string) }
	case "middle_texture":
		old, apply = side.MiddleTexture, func(v interface{}) { side.MiddleTexture = v.(string) }
	case "lower_texture":
		old, apply = side.LowerTexture, func(v interface{}) { side.LowerTexture = v.(string) }
	case "offset_x":
		old, apply = side.OffsetX, func(v interface{}) { side.OffsetX = v.(int) }
	case "offset_y":
		old, apply = side.OffsetY, func(v interface{}) { side.OffsetY = v.(int) }
	default:
		return newValidationError(lineTarget(l), attribute, "unknown side attribute")
	}
	if err := checkScalarType(old, value); err != nil {
		return newValidationError(lineTarget(l), attribute, err.Error())
	}
	if old == value {
		return nil
	}
	prefix := "back"
	if isFront {
		prefix = "front"
	}
	param := prefix + ":" + attribute
	action := &Action{
		Target:     l.id,
		Parameter:  param,
		Coalescing: true,
		Do:         func() { apply(value) },
		Undo:       func() { apply(old) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: SideChanged, Line: l, Property: attribute, IsFront: isFront, Value: value})
	return nil
}

// SetLineFlag implements set_line_flag.
func (m *Map) SetLineFlag(l *Line, attribute string, value bool) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	var old bool
	var apply func(bool)
	switch attribute {
	case "impassable":
		old, apply = l.Flags.Impassable, func(v bool) { l.Flags.Impassable = v }
	case "two_sided":
		old, apply = l.Flags.TwoSided, func(v bool) { l.Flags.TwoSided = v }
	case "upper_unpegged":
		old, apply = l.Flags.UpperUnpegged, func(v bool) { l.Flags.UpperUnpegged = v }
	case "lower_unpegged":
		old, apply = l.Flags.LowerUnpegged, func(v bool) { l.Flags.LowerUnpegged = v }
	case "secret":
		old, apply = l.Flags.Secret, func(v bool) { l.Flags.Secret = v }
	case "block_sound":
		old, apply = l.Flags.BlockSound, func(v bool) { l.Flags.BlockSound = v }
	case "dont_draw":
		old, apply = l.Flags.DontDraw, func(v bool) { l.Flags.DontDraw = v }
	default:
		return newValidationError(lineTarget(l), attribute, "unknown flag")
	}
	if old == value {
		return nil
	}
	action := &Action{
		Target:     l.id,
		Parameter:  "flag:" + attribute,
		Coalescing: true,
		Do:         func() { apply(value) },
		Undo:       func() { apply(old) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: FlagsChanged, Line: l, Property: attribute, Value: value})
	return nil
}

// SetSectorProperty implements set_sector_property.
func (m *Map) SetSectorProperty(s *Sector, attribute string, value interface{}) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	var old interface{}
	var apply func(interface{})
	switch attribute {
	case "floor_height":
		old, apply = s.Properties.FloorHeight, func(v interface{}) { s.Properties.FloorHeight = v.(int) }
	case "ceil_height":
		old, apply = s.Properties.CeilHeight, func(v interface{}) { s.Properties.CeilHeight = v.(int) }
	case "floor_texture":
		old, apply = s.Properties.FloorTexture, func(v interface{}) { s.Properties.FloorTexture = v.(string) }
	case "ceil_texture":
		old, apply = s.Properties.CeilTexture, func(v interface{}) { s.Properties.CeilTexture = v.(string) }
	case "light_level":
		old, apply = s.Properties.LightLevel, func(v interface{}) { s.Properties.LightLevel = v.(int) }
	case "tag":
		old, apply = s.Properties.Tag, func(v interface{}) { s.Properties.Tag = v.(int) }
	case "special":
		old, apply = s.Properties.Special, func(v interface{}) { s.Properties.Special = v.(int) }
	default:
		return newValidationError(sectorTarget(s), attribute, "unknown sector attribute")
	}
	if err := checkScalarType(old, value); err != nil {
		return newValidationError(sectorTarget(s), attribute, err.Error())
	}
	if old == value {
		return nil
	}
	action := &Action{
		Target:     s.id,
		Parameter:  "sector:" + attribute,
		Coalescing: true,
		Do:         func() { apply(value) },
		Undo:       func() { apply(old) },
	}
	m.History.Do(action)
	m.notify(Change{Kind: SectorChanged, Sector: s, Property: attribute, Value: value})
	return nil
}

// SetMapProperty implements set_map_property, storing into Map.metadata.
func (m *Map) SetMapProperty(attribute string, value interface{}) error {
	if err := m.checkCorrupt(); err != nil {
		return err
	}
	old, existed := m.metadata[attribute]
	if existed {
		if err := checkScalarType(old, value); err != nil {
			return newValidationError("map", attribute, err.Error())
		}
		if old == value {
			return nil
		}
	}
	action := &Action{
		Target:     0,
		Parameter:  "metadata:" + attribute,
		Coalescing: true,
		Do:         func() { m.metadata[attribute] = value },
		Undo: func() {
			if existed {
				m.metadata[attribute] = old
			} else {
				delete(m.metadata, attribute)
			}
		},
	}
	m.History.Do(action)
	m.notify(Change{Kind: MetadataChanged, Property: attribute, Value: value})
	return nil
}

func checkScalarType(old, value interface{}) error {
	if old == nil {
		return nil
	}
	switch old.(type) {
	case int:
		if _, ok := value.(int); !ok {
			return newInvariantError("scalar-type", "expected int, got %T", value)
		}
	case string:
		if _, ok := value.(string); !ok {
			return newInvariantError("scalar-type", "expected string, got %T", value)
		}
	case bool:
		if _, ok := value.(bool); !ok {
			return newInvariantError("scalar-type", "expected bool, got %T", value)
		}
	case float64:
		if _, ok := value.(float64); !ok {
			return newInvariantError("scalar-type", "expected float64, got %T", value)
		}
	}
	return nil
}

func lineTarget(l *Line) string     { return "line:" + l.Key() }
func sectorTarget(s *Sector) string { return fmt.Sprintf("sector:%d", s.id) }

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

// grid.go implements the uniform spatial grid the spec calls for: a
// cell-size-128 index from integer cell coordinates to the entities whose
// bounds overlap that cell. Column/cell containers are pruned empty the
// same way VigilantBSP's blockmap column lists are conceptually organized
// in blockity.go, and the close-vertex bucket lookup in node_vmap.go's
// VertexMap is the direct ancestor of GetBlock/insert here.
package sectorkit

import (
	"github.com/zyedidia/generic/mapset"
)

// Bounded is satisfied by every entity kind the grid can index: vertices,
// lines, sectors and things all expose an axis-aligned bounding box.
type Bounded interface {
	comparable
	Bounds() (minX, minY, maxX, maxY int)
}

type cellCoord struct {
	cx, cy int
}

// column holds every populated cell in one grid column (fixed cx), so an
// empty column can be pruned from the grid with a single delete the same
// way an empty cell is pruned from a column.
type column[T Bounded] struct {
	cells map[int]mapset.Set[T]
}

// SpatialGrid is a uniform grid over one kind of entity's bounding boxes.
// Map holds one instance per entity kind (vertices, lines, sectors,
// things) rather than one mixed-kind grid, because the spec's iteration API
// is already split by kind (iterate_vertices/lines/sectors/things).
type SpatialGrid[T Bounded] struct {
	cellSize int
	columns  map[int]*column[T]
}

// NewSpatialGrid constructs an empty grid with the given cell size (map
// units per cell; the spec fixes this at 128 via Config.GridCellSize).
func NewSpatialGrid[T Bounded](cellSize int) *SpatialGrid[T] {
	if cellSize <= 0 {
		cellSize = 128
	}
	return &SpatialGrid[T]{
		cellSize: cellSize,
		columns:  make(map[int]*column[T]),
	}
}

func (g *SpatialGrid[T]) cellRange(minX, minY, maxX, maxY int) (cx0, cy0, cx1, cy1 int) {
	cx0 = floorDiv(minX, g.cellSize)
	cy0 = floorDiv(minY, g.cellSize)
	cx1 = floorDiv(maxX, g.cellSize)
	cy1 = floorDiv(maxY, g.cellSize)
	return
}

// Insert registers e under every grid cell its bounds overlap.
func (g *SpatialGrid[T]) Insert(e T) {
	minX, minY, maxX, maxY := e.Bounds()
	cx0, cy0, cx1, cy1 := g.cellRange(minX, minY, maxX, maxY)
	for cx := cx0; cx <= cx1; cx++ {
		col, ok := g.columns[cx]
		if !ok {
			col = &column[T]{cells: make(map[int]mapset.Set[T])}
			g.columns[cx] = col
		}
		for cy := cy0; cy <= cy1; cy++ {
			cell, ok := col.cells[cy]
			if !ok {
				cell = mapset.New[T]()
				col.cells[cy] = cell
			}
			cell.Put(e)
		}
	}
}

// Remove deregisters e from every cell it was registered under, pruning
// any cell and column that becomes empty as a result (spec §4.2: "Column
// and cell containers must delete themselves when empty").
func (g *SpatialGrid[T]) Remove(e T) {
	minX, minY, maxX, maxY := e.Bounds()
	cx0, cy0, cx1, cy1 := g.cellRange(minX, minY, maxX, maxY)
	for cx := cx0; cx <= cx1; cx++ {
		col, ok := g.columns[cx]
		if !ok {
			continue
		}
		for cy := cy0; cy <= cy1; cy++ {
			cell, ok := col.cells[cy]
			if !ok {
				continue
			}
			cell.Remove(e)
			if cell.Size() == 0 {
				delete(col.cells, cy)
			}
		}
		if len(col.cells) == 0 {
			delete(g.columns, cx)
		}
	}
}

// Move removes e from its old bounds' cells and reinserts it at its
// current bounds - callers must snapshot the old bounds themselves before
// mutating e, since Bounded.Bounds() always reports the entity's live
// position.
func (g *SpatialGrid[T]) Move(e T, oldMinX, oldMinY, oldMaxX, oldMaxY int) {
	cx0, cy0, cx1, cy1 := g.cellRange(oldMinX, oldMinY, oldMaxX, oldMaxY)
	for cx := cx0; cx <= cx1; cx++ {
		col, ok := g.columns[cx]
		if !ok {
			continue
		}
		for cy := cy0; cy <= cy1; cy++ {
			cell, ok := col.cells[cy]
			if !ok {
				continue
			}
			cell.Remove(e)
			if cell.Size() == 0 {
				delete(col.cells, cy)
			}
		}
		if len(col.cells) == 0 {
			delete(g.columns, cx)
		}
	}
	g.Insert(e)
}

// Query visits every entity registered in a cell overlapping
// [minX,minY]-[maxX,maxY], deduplicated via a per-query visited set, after
// filtering to entities whose own bounds lie fully within the query
// rectangle (spec §4.2's "filter by the entity's own bounds ⊆ query
// test"). visit returning false stops the query early.
func (g *SpatialGrid[T]) Query(minX, minY, maxX, maxY int, visit func(T) bool) {
	cx0, cy0, cx1, cy1 := g.cellRange(minX, minY, maxX, maxY)
	visited := mapset.New[T]()
	for cx := cx0; cx <= cx1; cx++ {
		col, ok := g.columns[cx]
		if !ok {
			continue
		}
		for cy := cy0; cy <= cy1; cy++ {
			cell, ok := col.cells[cy]
			if !ok {
				continue
			}
			stop := false
			cell.Each(func(e T) {
				if stop || visited.Has(e) {
					return
				}
				visited.Put(e)
				eMinX, eMinY, eMaxX, eMaxY := e.Bounds()
				if eMinX < minX || eMinY < minY || eMaxX > maxX || eMaxY > maxY {
					return
				}
				if !visit(e) {
					stop = true
				}
			})
			if stop {
				return
			}
		}
	}
}

// CellCount reports how many non-empty cells exist, for Map.Stats() and for
// the grid invariant test in grid_test.go.
func (g *SpatialGrid[T]) CellCount() int {
	n := 0
	for _, col := range g.columns {
		n += len(col.cells)
	}
	return n
}

// Contains reports whether e is registered in the cell at (cx,cy) - used
// by tests and by Map.Validate to check invariant 9 directly.
func (g *SpatialGrid[T]) Contains(cx, cy int, e T) bool {
	col, ok := g.columns[cx]
	if !ok {
		return false
	}
	cell, ok := col.cells[cy]
	if !ok {
		return false
	}
	return cell.Has(e)
}

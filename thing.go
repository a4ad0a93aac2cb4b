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

// Thing is a point entity (player start, monster, pickup) independent of
// the line/sector subdivision - it never participates in face recovery or
// the spatial grid's line-bounds logic beyond being its own degenerate
// (point) bounds.
type Thing struct {
	id     int64
	X, Y   int
	Z      int
	TypeID int
	Angle  float64
}

// ID returns the thing's stable handle.
func (t *Thing) ID() int64 { return t.id }

// Bounds returns a degenerate (zero-area) bounding box at the thing's
// position, for spatial grid registration.
func (t *Thing) Bounds() (minX, minY, maxX, maxY int) {
	return t.X, t.Y, t.X, t.Y
}

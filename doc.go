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

// Package sectorkit is the in-memory geometric core of a Doom-style 2D level
// editor: a planar subdivision of vertices, lines and derived sectors that
// supports interactive edits while continuously recovering enclosed faces and
// their containment hierarchy. All mutation is reversible through a
// coalescing undo/redo log.
//
// Rendering, UI event handling, and engine-specific file formats are not part
// of this package - it only maintains the geometry and notifies observers.
package sectorkit

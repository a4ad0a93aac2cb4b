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

// history.go implements the coalescing undo/redo log every mutating Map
// method funnels through (spec §4.3). There is no undo system to draw on
// in VigilantBSP itself - it is a one-shot batch compiler - so the Action
// shape here is grounded on the Action{Type,Data,Inverse} +
// undoStack/redoStack fields in other_examples/travisdwitt-flerm, a
// terminal-UI editor that already solves the same "group of Do/Undo
// closures with push/pop stacks" problem, generalized from its
// enum-tagged struct to an explicit do/undo thunk pair with a coalescing
// key.
package sectorkit

import (
	"github.com/zyedidia/generic/stack"
)

// Action is one reversible step. Target/Parameter form the coalescing key:
// consecutive actions against the same (Target, Parameter) replace each
// other on the undo stack instead of stacking up, as long as both are
// marked Coalescing. Target is an entity handle (Vertex/Line/Sector/Thing
// ID, or 0 for map-level actions) rather than a pointer. Handles are per
// object: an entity rebuilt as a new object (MoveVertex reinserts rather
// than mutates) gets a new handle, so its actions do not coalesce with
// those recorded against the old one.
type Action struct {
	Do         func()
	Undo       func()
	Target     int64
	Parameter  string
	Coalescing bool
}

// History is the coalescing do/undo/redo stack described in spec §4.3.
type History struct {
	undo *stack.Stack[*Action]
	redo *stack.Stack[*Action]
}

// NewHistory returns an empty history log.
func NewHistory() *History {
	return &History{
		undo: stack.New[*Action](),
		redo: stack.New[*Action](),
	}
}

// Do stages and executes action. If the current top of the undo stack is
// coalescing, shares action's (Target, Parameter) key, and action itself
// is coalescing, the old top is replaced in place (the redo stack is left
// untouched) and action takes over the old top's Undo thunk, so undoing
// the coalesced run restores the state from before its first action;
// otherwise action is pushed fresh and the redo stack is cleared.
// action.Do is always invoked, exactly once, after staging.
func (h *History) Do(action *Action) {
	if h.undo.Size() > 0 {
		if top := h.undo.Peek(); top.Coalescing && action.Coalescing &&
			top.Target == action.Target && top.Parameter == action.Parameter {
			h.undo.Pop()
			action.Undo = top.Undo
			h.undo.Push(action)
			action.Do()
			return
		}
	}
	h.undo.Push(action)
	h.redo = stack.New[*Action]()
	action.Do()
}

// Undo pops the most recent action, runs its Undo thunk, and pushes it
// onto the redo stack. Returns false if there was nothing to undo.
func (h *History) Undo() bool {
	if h.undo.Size() == 0 {
		return false
	}
	action := h.undo.Pop()
	action.Undo()
	h.redo.Push(action)
	return true
}

// Redo pops the most recently undone action, runs its Do thunk again, and
// pushes it back onto the undo stack. Returns false if there was nothing
// to redo.
func (h *History) Redo() bool {
	if h.redo.Size() == 0 {
		return false
	}
	action := h.redo.Pop()
	action.Do()
	h.undo.Push(action)
	return true
}

// Clear empties both stacks without running any thunk.
func (h *History) Clear() {
	h.undo = stack.New[*Action]()
	h.redo = stack.New[*Action]()
}

// CanUndo reports whether Undo would have any effect.
func (h *History) CanUndo() bool { return h.undo.Size() > 0 }

// CanRedo reports whether Redo would have any effect.
func (h *History) CanRedo() bool { return h.redo.Size() > 0 }

// UndoDepth reports how many actions are currently undoable - used by
// tests checking coalescing collapsed a run of edits into a single entry
// (spec scenario S6). It drains the undo stack into a buffer to count it,
// then restores it in original order; only used from tests and
// Map.Stats(), never a hot path, so the drain/restore cost is acceptable.
func (h *History) UndoDepth() int {
	var buf []*Action
	for h.undo.Size() > 0 {
		buf = append(buf, h.undo.Pop())
	}
	for i := len(buf) - 1; i >= 0; i-- {
		h.undo.Push(buf[i])
	}
	return len(buf)
}

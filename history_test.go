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

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory()
	value := 0
	h.Do(&Action{
		Target: 1, Parameter: "x", Coalescing: false,
		Do:   func() { value = 1 },
		Undo: func() { value = 0 },
	})
	h.Do(&Action{
		Target: 2, Parameter: "y", Coalescing: false,
		Do:   func() { value = 2 },
		Undo: func() { value = 1 },
	})
	if value != 2 {
		t.Fatalf("value = %d, want 2", value)
	}
	if !h.Undo() {
		t.Fatalf("expected Undo to succeed")
	}
	if value != 1 {
		t.Errorf("value = %d, want 1 after one undo", value)
	}
	if !h.Undo() {
		t.Fatalf("expected second Undo to succeed")
	}
	if value != 0 {
		t.Errorf("value = %d, want 0 after two undos", value)
	}
	if h.Undo() {
		t.Errorf("expected Undo on empty stack to fail")
	}
	if !h.Redo() {
		t.Fatalf("expected Redo to succeed")
	}
	if value != 1 {
		t.Errorf("value = %d, want 1 after one redo", value)
	}
}

func TestHistoryCoalescing(t *testing.T) {
	h := NewHistory()
	value := 0
	before := -1
	for _, v := range []int{160, 164, 168} {
		v := v
		h.Do(&Action{
			Target: 42, Parameter: "light_level", Coalescing: true,
			Do:   func() { value = v },
			Undo: func() { value = before },
		})
	}
	if value != 168 {
		t.Fatalf("value = %d, want 168", value)
	}
	if got := h.UndoDepth(); got != 1 {
		t.Fatalf("UndoDepth() = %d, want 1 (coalesced run)", got)
	}
	h.Undo()
	if value != before {
		t.Errorf("value = %d, want %d after undoing the coalesced run", value, before)
	}
}

func TestHistoryCoalescingBreaksOnDifferentTarget(t *testing.T) {
	h := NewHistory()
	h.Do(&Action{Target: 1, Parameter: "p", Coalescing: true, Do: func() {}, Undo: func() {}})
	h.Do(&Action{Target: 2, Parameter: "p", Coalescing: true, Do: func() {}, Undo: func() {}})
	if got := h.UndoDepth(); got != 2 {
		t.Errorf("UndoDepth() = %d, want 2 for differing targets", got)
	}
}

func TestHistoryDoClearsRedoUnlessCoalescing(t *testing.T) {
	h := NewHistory()
	h.Do(&Action{Target: 1, Parameter: "p", Coalescing: false, Do: func() {}, Undo: func() {}})
	h.Undo()
	if !h.CanRedo() {
		t.Fatalf("expected a pending redo")
	}
	h.Do(&Action{Target: 2, Parameter: "q", Coalescing: false, Do: func() {}, Undo: func() {}})
	if h.CanRedo() {
		t.Errorf("expected a fresh non-coalescing Do to clear the redo stack")
	}
}

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

import "fmt"

// InvariantError reports that one of the data model invariants in the core
// was found broken. It is fatal to the Map it came from: the map is marked
// corrupt and refuses further mutation until the caller discards it or
// reloads from a known-good serialization.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("sectorkit: invariant %q violated: %s", e.Invariant, e.Detail)
}

func newInvariantError(invariant, detail string, a ...interface{}) *InvariantError {
	return &InvariantError{Invariant: invariant, Detail: fmt.Sprintf(detail, a...)}
}

// ValidationError reports a rejected property setter call: unknown
// attribute name, or a new value whose type does not match the old one.
// It never mutates state before being returned.
type ValidationError struct {
	Target    string
	Attribute string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sectorkit: validation failed for %s.%s: %s", e.Target, e.Attribute, e.Reason)
}

func newValidationError(target, attribute, reason string) *ValidationError {
	return &ValidationError{Target: target, Attribute: attribute, Reason: reason}
}

// RebuildError reports that a single CCW loop trace aborted during face
// recovery because its guard limit was exceeded; a degenerate next_left
// result is an InvariantError instead. Per the
// error taxonomy, this only aborts the one loop; the surrounding Rebuild
// call still succeeds and returns the other recovered sectors alongside any
// RebuildErrors collected.
type RebuildError struct {
	StartEdge string
	Reason    string
}

func (e *RebuildError) Error() string {
	return fmt.Sprintf("sectorkit: loop trace from %s aborted: %s", e.StartEdge, e.Reason)
}

// ErrMapCorrupt is returned by any mutating Map method once an
// InvariantError has been observed on that Map.
var ErrMapCorrupt = fmt.Errorf("sectorkit: map is corrupt after an invariant violation; reload or discard it")

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
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestOrientation(t *testing.T) {
	p := r2.Point{X: 0, Y: 0}
	q := r2.Point{X: 10, Y: 0}
	ccw := r2.Point{X: 10, Y: 10}
	cw := r2.Point{X: 10, Y: -10}
	col := r2.Point{X: 20, Y: 0}
	if got := Orientation(p, q, ccw, defaultEpsilon); got != 1 {
		t.Errorf("Orientation(ccw) = %d, want 1", got)
	}
	if got := Orientation(p, q, cw, defaultEpsilon); got != -1 {
		t.Errorf("Orientation(cw) = %d, want -1", got)
	}
	if got := Orientation(p, q, col, defaultEpsilon); got != 0 {
		t.Errorf("Orientation(collinear) = %d, want 0", got)
	}
}

func TestOnSegment(t *testing.T) {
	p := r2.Point{X: 0, Y: 0}
	r := r2.Point{X: 10, Y: 0}
	inside := r2.Point{X: 5, Y: 0}
	outside := r2.Point{X: 15, Y: 0}
	if !OnSegment(p, inside, r, defaultEpsilon) {
		t.Errorf("expected inside point to be on segment")
	}
	if OnSegment(p, outside, r, defaultEpsilon) {
		t.Errorf("expected outside point to not be on segment")
	}
}

func TestSegmentsProperlyIntersect(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 100, Y: 100}
	c := r2.Point{X: 0, Y: 100}
	d := r2.Point{X: 100, Y: 0}
	if !SegmentsProperlyIntersect(a, b, c, d, defaultEpsilon) {
		t.Errorf("expected a proper crossing")
	}
	// Touching at shared endpoint must NOT be a proper intersection.
	e := r2.Point{X: 100, Y: 100}
	f := r2.Point{X: 200, Y: 0}
	if SegmentsProperlyIntersect(a, b, b, f, defaultEpsilon) {
		t.Errorf("shared-endpoint touch must not count as proper intersection")
	}
	_ = e
}

func TestIntersectionPoint(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 100, Y: 100}
	c := r2.Point{X: 0, Y: 100}
	d := r2.Point{X: 100, Y: 0}
	pt, ok := IntersectionPoint(a, b, c, d)
	if !ok {
		t.Fatalf("expected an intersection point")
	}
	if math.Abs(pt.X-50) > 1e-9 || math.Abs(pt.Y-50) > 1e-9 {
		t.Errorf("IntersectionPoint = (%v,%v), want (50,50)", pt.X, pt.Y)
	}
}

func TestCollinearOverlapMoreThanEndpoint(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 50, Y: 0}
	c := r2.Point{X: 25, Y: 0}
	d := r2.Point{X: 75, Y: 0}
	if !CollinearOverlapMoreThanEndpoint(a, b, c, d, defaultEpsilon) {
		t.Errorf("expected overlap of [25,50]")
	}
	e := r2.Point{X: 50, Y: 0}
	f := r2.Point{X: 100, Y: 0}
	if CollinearOverlapMoreThanEndpoint(a, b, e, f, defaultEpsilon) {
		t.Errorf("touching only at shared endpoint must not count as overlap")
	}
}

func TestSignedArea2DCCWBox(t *testing.T) {
	flat := []float64{0, 0, 100, 0, 100, 100, 0, 100}
	if area := SignedArea2D(flat); area <= 0 {
		t.Errorf("SignedArea2D(CCW box) = %v, want > 0", area)
	}
	cw := []float64{0, 0, 0, 100, 100, 100, 100, 0}
	if area := SignedArea2D(cw); area >= 0 {
		t.Errorf("SignedArea2D(CW box) = %v, want < 0", area)
	}
}

func TestPolygonContainsPoint(t *testing.T) {
	box := []float64{0, 0, 100, 0, 100, 100, 0, 100}
	if !PolygonContainsPoint(box, r2.Point{X: 50, Y: 50}) {
		t.Errorf("center should be inside")
	}
	if PolygonContainsPoint(box, r2.Point{X: 0, Y: 50}) {
		t.Errorf("boundary point must be excluded")
	}
	if PolygonContainsPoint(box, r2.Point{X: 150, Y: 50}) {
		t.Errorf("outside point must be excluded")
	}
}

func TestPolygonContainsAllVertices(t *testing.T) {
	outer := []float64{0, 0, 1000, 0, 1000, 1000, 0, 1000}
	inner := []float64{100, 100, 200, 100, 200, 200, 100, 200}
	if !PolygonContainsAllVertices(inner, outer) {
		t.Errorf("inner box should be fully contained in outer box")
	}
	straddling := []float64{-10, 100, 200, 100, 200, 200, -10, 200}
	if PolygonContainsAllVertices(straddling, outer) {
		t.Errorf("straddling box must not be reported as fully contained")
	}
}

func TestAngleCCW(t *testing.T) {
	east := AngleTo(r2.Point{}, r2.Point{X: 1, Y: 0})
	north := AngleTo(r2.Point{}, r2.Point{X: 0, Y: 1})
	delta := AngleCCW(east, north)
	if math.Abs(float64(delta)-math.Pi/2) > 1e-9 {
		t.Errorf("AngleCCW(east,north) = %v, want pi/2", delta)
	}
	// Going the other way around should report the full turn minus pi/2.
	delta2 := AngleCCW(north, east)
	if math.Abs(float64(delta2)-3*math.Pi/2) > 1e-9 {
		t.Errorf("AngleCCW(north,east) = %v, want 3pi/2", delta2)
	}
}

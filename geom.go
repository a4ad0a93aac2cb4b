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

// geom.go holds the differential-geometry primitives the rest of the core
// is built from: orientation, segment intersection, collinear overlap,
// polygon area/containment and angle deltas. None of it allocates beyond
// the r2.Point/s1.Angle value types it is expressed in. Derived from the
// cross-product orientation tests and intersection context in
// VigilantBSP's diffgeometry.go, and from the CCW angle-delta walk in
// selfref.go's getPerimeter.
package sectorkit

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"golang.org/x/exp/constraints"
)

// defaultEpsilon matches DefaultConfig().Epsilon. The primitives below take
// eps as an explicit argument; Map passes its Config.Epsilon.
const defaultEpsilon = 1e-12

// Orientation classifies the turn p->q->r makes: +1 counter-clockwise,
// -1 clockwise, 0 collinear (within eps).
func Orientation(p, q, r r2.Point, eps float64) int {
	cross := (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
	if cross > eps {
		return 1
	}
	if cross < -eps {
		return -1
	}
	return 0
}

// OnSegment assumes p, q, r are collinear and reports whether q lies within
// the axis-aligned bounding box of p and r, within eps.
func OnSegment(p, q, r r2.Point, eps float64) bool {
	return q.X >= math.Min(p.X, r.X)-eps && q.X <= math.Max(p.X, r.X)+eps &&
		q.Y >= math.Min(p.Y, r.Y)-eps && q.Y <= math.Max(p.Y, r.Y)+eps
}

// SegmentsProperlyIntersect reports a strictly interior crossing of segment
// a-b with segment c-d: touching at a shared endpoint does not count.
func SegmentsProperlyIntersect(a, b, c, d r2.Point, eps float64) bool {
	o1 := Orientation(a, b, c, eps)
	o2 := Orientation(a, b, d, eps)
	o3 := Orientation(c, d, a, eps)
	o4 := Orientation(c, d, b, eps)
	return o1 != 0 && o2 != 0 && o3 != 0 && o4 != 0 && (o1*o2 < 0) && (o3*o4 < 0)
}

// IntersectionPoint computes the point where the lines through a-b and c-d
// cross, assuming SegmentsProperlyIntersect already reported true for the
// segments. Returns ok=false for parallel (non-intersecting) lines.
func IntersectionPoint(a, b, c, d r2.Point) (r2.Point, bool) {
	x1, y1, x2, y2 := a.X, a.Y, b.X, b.Y
	x3, y3, x4, y4 := c.X, c.Y, d.X, d.Y
	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return r2.Point{}, false
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	return r2.Point{X: x1 + t*(x2-x1), Y: y1 + t*(y2-y1)}, true
}

// CollinearOverlapMoreThanEndpoint reports whether segments a-b and c-d are
// collinear and their 1-D projection onto the dominant axis overlaps by
// more than eps - i.e. more than touching at a shared endpoint.
func CollinearOverlapMoreThanEndpoint(a, b, c, d r2.Point, eps float64) bool {
	if Orientation(a, b, c, eps) != 0 || Orientation(a, b, d, eps) != 0 {
		return false
	}
	dx, dy := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
	var pa, pb, pc, pd float64
	if dx >= dy {
		pa, pb, pc, pd = a.X, b.X, c.X, d.X
	} else {
		pa, pb, pc, pd = a.Y, b.Y, c.Y, d.Y
	}
	lo1, hi1 := math.Min(pa, pb), math.Max(pa, pb)
	lo2, hi2 := math.Min(pc, pd), math.Max(pc, pd)
	overlapLo := math.Max(lo1, lo2)
	overlapHi := math.Min(hi1, hi2)
	return overlapHi-overlapLo > eps
}

// SignedArea2D computes the shoelace signed area of a flattened polygon
// (x0,y0,x1,y1,...); positive means the vertices run counter-clockwise.
func SignedArea2D(flatXY []float64) float64 {
	n := len(flatXY) / 2
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += flatXY[2*i]*flatXY[2*j+1] - flatXY[2*j]*flatXY[2*i+1]
	}
	return area / 2
}

// PolygonContainsPoint does a strictly-interior ray cast: points exactly on
// the boundary are reported as not contained.
func PolygonContainsPoint(flatXY []float64, p r2.Point) bool {
	n := len(flatXY) / 2
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flatXY[2*i], flatXY[2*i+1]
		xj, yj := flatXY[2*j], flatXY[2*j+1]
		if yi == yj {
			continue
		}
		if (p.Y < yi) == (p.Y < yj) {
			continue
		}
		xCross := xi + (p.Y-yi)/(yj-yi)*(xj-xi)
		if p.X == xCross {
			return false // exactly on an edge: boundary excluded
		}
		if p.X < xCross {
			inside = !inside
		}
	}
	return inside
}

// PolygonContainsAllVertices reports whether every vertex of inner lies
// strictly inside outer.
func PolygonContainsAllVertices(inner, outer []float64) bool {
	n := len(inner) / 2
	for i := 0; i < n; i++ {
		p := r2.Point{X: inner[2*i], Y: inner[2*i+1]}
		if !PolygonContainsPoint(outer, p) {
			return false
		}
	}
	return true
}

// AngleTo returns the direction from a to b as an s1.Angle in radians,
// atan2-style (range (-pi, pi]).
func AngleTo(a, b r2.Point) s1.Angle {
	return s1.Angle(math.Atan2(b.Y-a.Y, b.X-a.X))
}

const fullCircle = s1.Angle(2 * math.Pi)

// AngleCCW returns the non-negative counter-clockwise delta from a to b,
// modulo a full turn; 0 <= result < 2*pi.
func AngleCCW(a, b s1.Angle) s1.Angle {
	d := b - a
	for d < 0 {
		d += fullCircle
	}
	for d >= fullCircle {
		d -= fullCircle
	}
	return d
}

// roundCoord rounds a float coordinate to the nearest integer using the
// same round-half-away-from-zero rule VigilantBSP's RoundToFixed1616 family
// relies on, generalized over any floating type via x/exp/constraints.
func roundCoord[T constraints.Float](v T) int {
	return int(math.Round(float64(v)))
}

func minInt[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxInt[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// floorDiv computes the mathematical floor of a/b for integers, unlike Go's
// truncating /, which matters for negative map coordinates dividing into
// grid cells.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

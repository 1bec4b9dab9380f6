// Package images - Geometry and image utilities for detection post-processing.
package images

import "github.com/chewxy/math32"

// Point is a planar coordinate in pixel space.
type Point struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

// Scale divides both coordinates by the given factor.
//
// Arguments:
//   - factor: The resize factor that produced the coordinates.
//
// Returns:
//   - Point: The point mapped back to the unscaled space.
func (p Point) Scale(factor float32) Point {
	return Point{X: p.X / factor, Y: p.Y / factor}
}

// Quad is an ordered set of four corner points. The corners need not be
// axis-aligned.
type Quad [4]Point

// Bounds returns the axis-aligned bounding box of the quad.
//
// Returns:
//   - Rect: The smallest rect containing all four corners.
func (q Quad) Bounds() Rect {
	return Rect{
		X1: math32.Min(math32.Min(q[0].X, q[1].X), math32.Min(q[2].X, q[3].X)),
		Y1: math32.Min(math32.Min(q[0].Y, q[1].Y), math32.Min(q[2].Y, q[3].Y)),
		X2: math32.Max(math32.Max(q[0].X, q[1].X), math32.Max(q[2].X, q[3].X)),
		Y2: math32.Max(math32.Max(q[0].Y, q[1].Y), math32.Max(q[2].Y, q[3].Y)),
	}
}

// Scale divides every corner by the given factor.
func (q Quad) Scale(factor float32) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(factor)
	}
	return out
}

// Rect is a lightweight axis-aligned bounding box.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Width returns X2 - X1.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns Y2 - Y1.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rect, or 0 for an empty rect.
func (r Rect) Area() float32 {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rect has no positive area.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Intersect returns the overlapping region of r and o. The result is empty
// when the rects are disjoint or only share an edge or corner.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X1: math32.Max(r.X1, o.X1),
		Y1: math32.Max(r.Y1, o.Y1),
		X2: math32.Min(r.X2, o.X2),
		Y2: math32.Min(r.Y2, o.Y2),
	}
}

// Overlaps reports whether the bounding boxes of two quads intersect with
// strictly positive area.
//
// Only the bounding boxes are compared, so two rotated quads whose boxes
// intersect are reported as overlapping even when the shapes themselves do not.
// A true overlap is never missed since a bounding box contains its quad.
//
// Arguments:
//   - a: The first quad.
//   - b: The second quad.
//
// Returns:
//   - bool: True if the bounding boxes share a region of positive area.
func Overlaps(a, b Quad) bool {
	return a.Bounds().Intersect(b.Bounds()).Area() > 0
}

// CalculateIoU returns the Intersection over Union of two rects.
//
//	IoU = Area of Intersection / Area of Union
//
// Disjoint or edge-touching rects return 0.
//
// Arguments:
//   - r: The first rect.
//   - o: The other rect to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//
//	iouScore := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	interArea := r.Intersect(o).Area()
	if interArea == 0 {
		return 0.0
	}

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}

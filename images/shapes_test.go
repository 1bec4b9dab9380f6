package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// box builds an axis-aligned quad from its corners, clockwise from top-left.
func box(x1, y1, x2, y2 float32) Quad {
	return Quad{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func TestQuadBounds(t *testing.T) {
	tests := []struct {
		name     string
		quad     Quad
		expected Rect
	}{
		{
			name:     "axis aligned",
			quad:     box(10, 20, 30, 60),
			expected: Rect{10, 20, 30, 60},
		},
		{
			name:     "rotated diamond",
			quad:     Quad{{5, 0}, {10, 5}, {5, 10}, {0, 5}},
			expected: Rect{0, 0, 10, 10},
		},
		{
			name:     "unordered corners",
			quad:     Quad{{30, 60}, {10, 20}, {10, 60}, {30, 20}},
			expected: Rect{10, 20, 30, 60},
		},
		{
			name:     "negative coordinates",
			quad:     Quad{{-4, -2}, {3, -7}, {1, 5}, {-1, 0}},
			expected: Rect{-4, -7, 3, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.quad.Bounds()
			assert.Equal(t, tt.expected, r)
			assert.Equal(t, tt.expected.X2-tt.expected.X1, r.Width())
			assert.Equal(t, tt.expected.Y2-tt.expected.Y1, r.Height())
		})
	}
}

func TestQuadScale(t *testing.T) {
	q := Quad{{64, 32}, {128, 32}, {128, 96}, {64, 96}}

	scaled := q.Scale(0.5)

	for i := range q {
		assert.Equal(t, q[i].X/0.5, scaled[i].X)
		assert.Equal(t, q[i].Y/0.5, scaled[i].Y)
	}
	assert.Equal(t, Point{64, 32}, q[0], "source quad must not change")
}

// TestOverlaps validates the positive-area rule of the bounding box overlap test.
func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Quad
		expected bool
	}{
		{
			name:     "identical",
			a:        box(0, 0, 1, 1),
			b:        box(0, 0, 1, 1),
			expected: true,
		},
		{
			name:     "partial overlap",
			a:        box(0, 0, 1, 1),
			b:        box(0.5, 0.5, 1.5, 1.5),
			expected: true,
		},
		{
			name:     "contained",
			a:        box(0, 0, 100, 100),
			b:        box(25, 25, 75, 75),
			expected: true,
		},
		{
			name:     "disjoint",
			a:        box(0, 0, 1, 1),
			b:        box(2, 2, 3, 3),
			expected: false,
		},
		{
			name:     "touching edge",
			a:        box(0, 0, 1, 1),
			b:        box(1, 0, 2, 1),
			expected: false,
		},
		{
			name:     "touching corner",
			a:        box(0, 0, 1, 1),
			b:        box(1, 1, 2, 2),
			expected: false,
		},
		{
			name:     "overlap only in x",
			a:        box(0, 0, 2, 1),
			b:        box(1, 5, 3, 6),
			expected: false,
		},
		{
			// The diamonds do not touch, but their boxes do.
			name:     "rotated shapes with overlapping boxes",
			a:        Quad{{5, 0}, {10, 5}, {5, 10}, {0, 5}},
			b:        Quad{{14, 9}, {19, 14}, {14, 19}, {9, 14}},
			expected: true,
		},
		{
			name:     "degenerate line inside box",
			a:        box(0, 0, 10, 10),
			b:        Quad{{2, 5}, {8, 5}, {8, 5}, {2, 5}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.expected, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

// TestIoU_Correctness validates the IoU implementation against known test cases.
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		r1       Rect
		r2       Rect
		expected float32
	}{
		{
			name:     "Identical rectangles",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{0, 0, 100, 100},
			expected: 1.0,
		},
		{
			name:     "No overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{200, 200, 300, 300},
			expected: 0.0,
		},
		{
			name:     "Touching edges",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{100, 0, 200, 100},
			expected: 0.0,
		},
		{
			name:     "Half overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{50, 50, 150, 150},
			expected: 0.142857, // 2500 / 17500
		},
		{
			name:     "One inside other",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{25, 25, 75, 75},
			expected: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			assert.InDelta(t, tt.expected, result, 0.001)
			assert.InDelta(t, result, CalculateIoU(tt.r2, tt.r1), 1e-6, "IoU must be symmetric")
		})
	}
}

func TestRectEmpty(t *testing.T) {
	assert.True(t, Rect{}.Empty())
	assert.True(t, Rect{5, 5, 5, 10}.Empty())
	assert.False(t, Rect{0, 0, 1, 1}.Empty())
	assert.Equal(t, float32(0), Rect{3, 3, 1, 1}.Area())
}

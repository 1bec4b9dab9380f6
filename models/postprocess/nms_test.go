package postprocess

import (
	"fmt"
	"testing"

	"github.com/nvr-ai/go-armor/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float32) images.Quad {
	return images.Quad{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func det(row int, conf float32, q images.Quad) Detection {
	return Detection{Points: q, Confidence: conf, Row: row}
}

func rows(ds []Detection) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = d.Row
	}
	return out
}

func TestSortByConfidence(t *testing.T) {
	ds := []Detection{
		det(0, 0.6, square(0, 0, 1)),
		det(1, 0.9, square(0, 0, 1)),
		det(2, 0.6, square(0, 0, 1)),
		det(3, 0.7, square(0, 0, 1)),
		det(4, 0.6, square(0, 0, 1)),
	}

	SortByConfidence(ds)

	assert.Equal(t, []int{1, 3, 0, 2, 4}, rows(ds), "ties must keep their original order")
}

func TestApplyGreedyNMS(t *testing.T) {
	tests := []struct {
		name     string
		input    []Detection
		expected []int
	}{
		{
			name:     "empty",
			input:    nil,
			expected: []int{},
		},
		{
			name:     "single",
			input:    []Detection{det(0, 0.9, square(0, 0, 1))},
			expected: []int{0},
		},
		{
			name: "overlapping pair keeps higher confidence",
			input: []Detection{
				det(0, 0.9, square(0, 0, 1)),
				det(1, 0.6, square(0.5, 0.5, 1)),
			},
			expected: []int{0},
		},
		{
			name: "disjoint all kept",
			input: []Detection{
				det(0, 0.9, square(0, 0, 1)),
				det(1, 0.8, square(5, 5, 1)),
				det(2, 0.7, square(10, 10, 1)),
			},
			expected: []int{0, 1, 2},
		},
		{
			name: "edge touching is not an overlap",
			input: []Detection{
				det(0, 0.9, square(0, 0, 1)),
				det(1, 0.8, square(1, 0, 1)),
			},
			expected: []int{0, 1},
		},
		{
			// 1 overlaps 0 and 2, but 2 does not overlap 0. Once 0 removes 1,
			// 1 can no longer remove 2.
			name: "chain only suppresses direct neighbours of survivors",
			input: []Detection{
				det(0, 0.9, square(0, 0, 2)),
				det(1, 0.8, square(1.5, 0, 2)),
				det(2, 0.7, square(3, 0, 2)),
			},
			expected: []int{0, 2},
		},
		{
			name: "survivor suppresses many",
			input: []Detection{
				det(0, 0.95, square(0, 0, 10)),
				det(1, 0.9, square(1, 1, 2)),
				det(2, 0.85, square(5, 5, 2)),
				det(3, 0.8, square(8, 8, 5)),
				det(4, 0.75, square(20, 20, 2)),
			},
			expected: []int{0, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyGreedyNMS(tt.input, DefaultNMSConfig())
			require.NotNil(t, out)
			assert.Equal(t, tt.expected, rows(out))
		})
	}
}

// TestApplyGreedyNMSClassAgnostic verifies that suppression ignores the
// decoded classes by default.
func TestApplyGreedyNMSClassAgnostic(t *testing.T) {
	a := det(0, 0.9, square(0, 0, 1))
	b := det(1, 0.8, square(0.5, 0, 1))
	b.Color, b.Tag = 1, 3

	out := ApplyGreedyNMS([]Detection{a, b}, DefaultNMSConfig())
	assert.Equal(t, []int{0}, rows(out))

	out = ApplyGreedyNMS([]Detection{a, b}, NMSConfig{ClassAware: true})
	assert.Equal(t, []int{0, 1}, rows(out))

	b.Color, b.Tag = a.Color, a.Tag
	out = ApplyGreedyNMS([]Detection{a, b}, NMSConfig{ClassAware: true})
	assert.Equal(t, []int{0}, rows(out))
}

func TestApplyGreedyNMSIoUThreshold(t *testing.T) {
	a := det(0, 0.9, square(0, 0, 100))
	b := det(1, 0.8, square(50, 50, 100)) // IoU 1/7
	c := det(2, 0.7, square(10, 0, 100))  // IoU with a 90/110

	out := ApplyGreedyNMS([]Detection{a, b, c}, NMSConfig{IoUThreshold: 0.5})
	assert.Equal(t, []int{0, 1}, rows(out))
}

// TestApplyGreedyNMSProperties checks ordering, suppression and idempotence on
// a dense grid of candidates.
func TestApplyGreedyNMSProperties(t *testing.T) {
	var ds []Detection
	for i := 0; i < 40; i++ {
		x := float32(i%8) * 1.5
		y := float32(i/8) * 1.5
		ds = append(ds, det(i, 1-float32(i%13)/20, square(x, y, 2)))
	}
	SortByConfidence(ds)

	out := ApplyGreedyNMS(ds, DefaultNMSConfig())
	require.NotEmpty(t, out)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Confidence, out[i].Confidence, "confidences must be non-increasing")
	}

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			assert.False(t, images.Overlaps(out[i].Points, out[j].Points),
				fmt.Sprintf("survivors %d and %d overlap", out[i].Row, out[j].Row))
		}
	}

	again := ApplyGreedyNMS(out, DefaultNMSConfig())
	assert.Equal(t, out, again, "NMS must be idempotent")
}

func TestDetectionString(t *testing.T) {
	d := Detection{Points: square(1, 2, 3), Confidence: 0.75, Color: 1, Tag: 4, Row: 7}
	assert.Equal(t, "Detection row=7 color=1 tag=4 (confidence 0.750000): (1.00, 2.00), (4.00, 5.00)", d.String())
}

func BenchmarkApplyGreedyNMS(b *testing.B) {
	ds := make([]Detection, 0, 64)
	for i := 0; i < 64; i++ {
		ds = append(ds, det(i, 1-float32(i)/128, square(float32(i%8)*40, float32(i/8)*40, 48)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ApplyGreedyNMS(ds, DefaultNMSConfig())
	}
}

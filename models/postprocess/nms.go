// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-armor/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the bounding box IoU above which a lower-confidence
	// detection is suppressed. Zero suppresses on any positive-area overlap.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold" validate:"gte=0,lt=1"`
	// ClassAware restricts suppression to detections with the same color and tag.
	ClassAware bool `json:"class_aware" yaml:"class_aware"`
}

// DefaultNMSConfig suppresses any positive-area overlap regardless of class.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{}
}

// suppresses reports whether the anchor suppresses the candidate.
func (c NMSConfig) suppresses(anchor, candidate Detection) bool {
	if c.ClassAware && (anchor.Color != candidate.Color || anchor.Tag != candidate.Tag) {
		return false
	}
	if c.IoUThreshold <= 0 {
		return images.Overlaps(anchor.Points, candidate.Points)
	}
	return images.CalculateIoU(anchor.Bounds(), candidate.Bounds()) > c.IoUThreshold
}

// SortByConfidence orders detections by descending confidence in place.
// Detections with equal confidence keep their relative order.
func SortByConfidence(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
}

// ApplyGreedyNMS performs greedy Non-Maximum Suppression.
//
// Each detection that has not been removed is kept, then every later
// detection it suppresses is removed. A kept detection is never removed by a
// later one, so the highest-confidence member of an overlapping group always
// survives.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - config: NMS configuration.
//
// Returns:
//   - Filtered slice of detections in input order. Never nil.
func ApplyGreedyNMS(detections []Detection, config NMSConfig) []Detection {
	n := len(detections)
	filtered := make([]Detection, 0, n)
	removed := make([]bool, n)

	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)

		for j := i + 1; j < n; j++ {
			if removed[j] {
				continue
			}
			if config.suppresses(anchor, detections[j]) {
				removed[j] = true
			}
		}
	}

	return filtered
}

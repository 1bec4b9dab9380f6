package armor

import "fmt"

// ColorLabels names the color classes in output order.
var ColorLabels = [NumColors]string{"B", "R", "N", "P"}

// TagLabels names the tag classes in output order.
var TagLabels = [NumTags]string{"G", "1", "2", "3", "4", "5", "O"}

// ColorLabel returns the name of a color class.
func ColorLabel(id int) string {
	if id >= 0 && id < NumColors {
		return ColorLabels[id]
	}
	return fmt.Sprintf("unknown_%d", id)
}

// TagLabel returns the name of a tag class.
func TagLabel(id int) string {
	if id >= 0 && id < NumTags {
		return TagLabels[id]
	}
	return fmt.Sprintf("unknown_%d", id)
}

package models

import "fmt"

// AspectRatio is one of the supported output shapes. The working ratio of an
// extracted segment is 16:9; every other target requires a crop re-encode.
type AspectRatio string

const (
	RatioVertical AspectRatio = "9:16"
	RatioSquare   AspectRatio = "1:1"
	RatioWide     AspectRatio = "16:9"
	RatioPortrait AspectRatio = "4:5"
)

// ParseAspectRatio validates a client-supplied ratio string.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch AspectRatio(s) {
	case RatioVertical, RatioSquare, RatioWide, RatioPortrait:
		return AspectRatio(s), nil
	default:
		return "", fmt.Errorf("unsupported aspect ratio: %q", s)
	}
}

// Fraction returns the ratio as an integer width:height pair.
func (r AspectRatio) Fraction() (w, h int) {
	switch r {
	case RatioVertical:
		return 9, 16
	case RatioSquare:
		return 1, 1
	case RatioPortrait:
		return 4, 5
	default:
		return 16, 9
	}
}

// CropSpec is a pure value describing the crop step: the target shape and
// which horizontal slice of the source to keep.
type CropSpec struct {
	Ratio AspectRatio
	// Position selects the horizontal offset as a percentage of the slack
	// width: 0 is the left edge, 50 centered, 100 the right edge.
	Position float64
}

// NeedsReencode reports whether the crop step can be a pure stream copy.
func (s CropSpec) NeedsReencode() bool {
	return s.Ratio != RatioWide
}

package face

import (
	"errors"
	"fmt"
	"image"
)

// DetectOptions tunes the multi-scale sliding-window search.
type DetectOptions struct {
	// ScaleFactor is the growth of the window between scale levels. Smaller is
	// more thorough and slower.
	ScaleFactor float64 `mapstructure:"scale-factor" validate:"gt=1"`
	// MinNeighbors is how many overlapping raw hits a region needs to count
	// as a face. Higher values suppress false positives.
	MinNeighbors int `mapstructure:"min-neighbors" validate:"gte=0"`
	// MinSize is the smallest window side in pixels.
	MinSize int `mapstructure:"min-size" validate:"gt=0"`
	// ShiftFactor is the window stride as a fraction of its size.
	ShiftFactor float64 `mapstructure:"shift-factor" validate:"gt=0,lte=1"`
}

// DefaultDetectOptions returns the frontal-face settings: scale step 1.1,
// five neighbors and an 80x80 minimum face.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinSize:      80,
		ShiftFactor:  0.1,
	}
}

// Validate catches settings that would stall the scale loop.
func (o DetectOptions) Validate() error {
	if o.MinSize <= 0 {
		return fmt.Errorf("min size must be positive, got %d", o.MinSize)
	}
	if o.ScaleFactor <= 1 {
		return fmt.Errorf("scale factor must be greater than 1, got %g", o.ScaleFactor)
	}
	// Window sizes are integers: the first step must actually grow the window.
	if int(float64(o.MinSize)*o.ScaleFactor) <= o.MinSize {
		return fmt.Errorf("scale factor %g does not grow a %dpx window", o.ScaleFactor, o.MinSize)
	}
	if o.ShiftFactor <= 0 || o.ShiftFactor > 1 {
		return fmt.Errorf("shift factor must be in (0, 1], got %g", o.ShiftFactor)
	}
	if o.MinNeighbors < 0 {
		return fmt.Errorf("min neighbors must not be negative, got %d", o.MinNeighbors)
	}
	return nil
}

// Cascade is a pre-trained frontal-face classifier. Scan returns every raw
// window the classifier accepted, before any grouping. Implementations are
// loaded once and must be safe for concurrent read-only use.
type Cascade interface {
	Scan(gray *image.Gray, opts DetectOptions) []FaceBox
}

// ErrNoCascade is returned when Detect is called without a classifier.
var ErrNoCascade = errors.New("no face cascade loaded")

// Detect finds faces in img. Raw hits from the cascade are grouped by overlap
// and only groups with at least opts.MinNeighbors members survive. The
// result is clipped to the image; an empty result is not an error.
func Detect(img image.Image, cascade Cascade, opts DetectOptions) (DetectionResult, error) {
	if err := requireImage("detect", img); err != nil {
		return nil, err
	}
	if cascade == nil {
		return nil, ErrNoCascade
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	src := opaque(img)
	gray := Grayscale(src)
	hits := cascade.Scan(gray, opts)

	result := DetectionResult{}
	for _, box := range groupHits(hits, opts.MinNeighbors) {
		if r, ok := box.Clip(src.Bounds()); ok {
			result = append(result, boxFromRect(r))
		}
	}
	return result, nil
}

package face

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// PigoCascade runs a pigo pixel-intensity-comparison cascade. The unpacked
// classifier is immutable after loading and is shared across goroutines.
type PigoCascade struct {
	classifier *pigo.Pigo
}

// LoadCascade reads and unpacks a pigo cascade file (e.g. "facefinder").
func LoadCascade(path string) (*PigoCascade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cascade %q: %w", path, err)
	}
	return NewCascade(data)
}

// NewCascade unpacks a cascade from its binary representation.
func NewCascade(data []byte) (c *PigoCascade, err error) {
	// Unpack indexes into the packet without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("unpacking cascade: corrupt cascade data: %v", r)
		}
	}()

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}
	return &PigoCascade{classifier: classifier}, nil
}

// Scan slides square windows from opts.MinSize up to the short image side.
func (c *PigoCascade) Scan(gray *image.Gray, opts DetectOptions) []FaceBox {
	b := gray.Bounds()
	rows, cols := b.Dy(), b.Dx()
	maxSize := min(rows, cols)
	if maxSize < opts.MinSize {
		return nil
	}

	pixels := gray.Pix
	if gray.Stride != cols || b.Min != (image.Point{}) {
		pixels = make([]uint8, rows*cols)
		for y := 0; y < rows; y++ {
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pixels[y*cols:(y+1)*cols], gray.Pix[off:off+cols])
		}
	}

	params := pigo.CascadeParams{
		MinSize:     opts.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: opts.ShiftFactor,
		ScaleFactor: opts.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := c.classifier.RunCascade(params, 0.0)
	hits := make([]FaceBox, 0, len(dets))
	for _, d := range dets {
		hits = append(hits, FaceBox{
			X:      d.Col - d.Scale/2,
			Y:      d.Row - d.Scale/2,
			Width:  d.Scale,
			Height: d.Scale,
		})
	}
	return hits
}

package face

import (
	"fmt"
	"image"
)

// FaceBox is an axis-aligned face rectangle in source pixel coordinates.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectionResult holds boxes in the detector's native order. It may be empty.
type DetectionResult []FaceBox

// Rect returns the box as a half-open rectangle. Unlike image.Rect it does not
// swap coordinates, so a box with a non-positive size stays empty.
func (b FaceBox) Rect() image.Rectangle {
	if b.Width <= 0 || b.Height <= 0 {
		return image.Rectangle{}
	}
	return image.Rectangle{
		Min: image.Pt(b.X, b.Y),
		Max: image.Pt(b.X+b.Width, b.Y+b.Height),
	}
}

// Clip intersects the box with bounds. ok is false when nothing is left.
func (b FaceBox) Clip(bounds image.Rectangle) (r image.Rectangle, ok bool) {
	r = b.Rect().Intersect(bounds)
	return r, !r.Empty()
}

func (b FaceBox) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.Width, b.Height)
}

func boxFromRect(r image.Rectangle) FaceBox {
	return FaceBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

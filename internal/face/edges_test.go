package face

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// step returns a gray image whose columns x < at are lo and the rest hi.
func step(w, h, at int, lo, hi uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < at {
				g.SetGray(x, y, color.Gray{Y: lo})
			} else {
				g.SetGray(x, y, color.Gray{Y: hi})
			}
		}
	}
	return g
}

func TestCannyStrongStep(t *testing.T) {
	edges := Canny(step(20, 12, 10, 0, 255), EdgeLowThreshold, EdgeHighThreshold)

	for y := 0; y < 12; y++ {
		for x := 0; x < 20; x++ {
			got := edges.GrayAt(x, y).Y
			want := uint8(0)
			if x == 9 {
				want = 255
			}
			if got != want {
				t.Fatalf("edge(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestCannyThresholds(t *testing.T) {
	tests := []struct {
		name      string
		lo, hi    uint8
		wantEdges bool
	}{
		{"flat", 90, 90, false},
		// |dx| = 4*30 = 120 sits between the thresholds with no strong seed.
		{"weak only", 0, 30, false},
		// |dx| = 4*45 = 180 clears the high threshold.
		{"strong", 0, 45, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := Canny(step(16, 16, 8, tt.lo, tt.hi), EdgeLowThreshold, EdgeHighThreshold)
			found := bytes.IndexByte(edges.Pix, 255) >= 0
			if found != tt.wantEdges {
				t.Errorf("edges found = %v, want %v", found, tt.wantEdges)
			}
		})
	}
}

func TestCannyTinyImages(t *testing.T) {
	for _, size := range []image.Point{{0, 0}, {1, 1}, {2, 5}} {
		g := image.NewGray(image.Rectangle{Max: size})
		edges := Canny(g, EdgeLowThreshold, EdgeHighThreshold)
		if edges.Bounds().Size() != size {
			t.Errorf("Canny(%v) returned %v", size, edges.Bounds().Size())
		}
	}
}

func TestRenderEdgesDeterministic(t *testing.T) {
	img := noise(96, 64, 42)
	before := bytes.Clone(img.Pix)
	boxes := []FaceBox{{X: 10, Y: 10, Width: 30, Height: 20}, {X: 80, Y: 50, Width: 40, Height: 40}}

	a, err := RenderEdges(img, boxes)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderEdges(img, boxes)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two renders of the same input differ")
	}
	if !bytes.Equal(img.Pix, before) {
		t.Error("RenderEdges mutated its input")
	}
	if a == b || &a.Pix[0] == &img.Pix[0] {
		t.Error("RenderEdges returned shared buffers")
	}
}

func TestRenderEdgesBoxStroke(t *testing.T) {
	// A flat image has no edges, so only the outline is white.
	img := uniform(60, 50, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	box := FaceBox{X: 10, Y: 10, Width: 20, Height: 15}

	out, err := RenderEdges(img, []FaceBox{box})
	if err != nil {
		t.Fatal(err)
	}

	white := [3]uint8{255, 255, 255}
	black := [3]uint8{0, 0, 0}
	tests := []struct {
		x, y int
		want [3]uint8
	}{
		{10, 10, white}, // top-left corner
		{11, 11, white}, // second stroke pixel
		{20, 10, white}, // top edge
		{20, 24, white}, // bottom edge, last row of the box
		{29, 17, white}, // right edge, last column of the box
		{12, 12, black}, // inside the stroke
		{20, 17, black}, // center
		{9, 10, black},  // just outside
		{30, 17, black}, // just outside right
		{0, 0, black},
	}
	for _, tt := range tests {
		if got := rgbAt(out, tt.x, tt.y); got != tt.want {
			t.Errorf("pixel(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatal("edge visualization must be opaque")
		}
	}
}

func TestRenderEdgesClipsBoxes(t *testing.T) {
	img := uniform(40, 40, color.NRGBA{A: 255})
	out, err := RenderEdges(img, []FaceBox{{X: 30, Y: 30, Width: 50, Height: 50}, {X: 100, Y: 100, Width: 5, Height: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbAt(out, 30, 30); got != [3]uint8{255, 255, 255} {
		t.Errorf("clipped box corner not drawn: %v", got)
	}
	if got := rgbAt(out, 39, 35); got != [3]uint8{255, 255, 255} {
		t.Errorf("clipped right edge not drawn at image border: %v", got)
	}
}

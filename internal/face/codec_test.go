package face

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 7, 5))
	src.SetNRGBA(3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 0})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 7, 5) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xFF {
			t.Fatal("decoded image is not opaque")
		}
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ferrors.ErrDecodeFailure},
		{"text", []byte("definitely not an image"), ferrors.ErrDecodeFailure},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), ferrors.ErrDecodeFailure},
		{"container", append([]byte("KF1"), make([]byte, 60)...), ferrors.ErrDecodeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := noise(16, 9, 7)
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back.Pix, img.Pix) {
		t.Error("PNG preview is not lossless")
	}

	if _, err := EncodePNG(nil); !errors.Is(err, ferrors.ErrDecodeFailure) {
		t.Errorf("EncodePNG(nil) = %v", err)
	}
}

func TestNewCascadeCorrupt(t *testing.T) {
	if _, err := NewCascade([]byte{1, 2, 3}); err == nil {
		t.Error("expected an error for a truncated cascade")
	}
	if _, err := LoadCascade("does/not/exist"); err == nil {
		t.Error("expected an error for a missing cascade file")
	}
}

func loadTestCascade(t *testing.T) *PigoCascade {
	t.Helper()
	cascade, err := LoadCascade(filepath.Join("testdata", "facefinder"))
	if err != nil {
		t.Fatalf("LoadCascade failed: %v", err)
	}
	return cascade
}

func loadSample(t *testing.T) *image.NRGBA {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(sample.jpg) failed: %v", err)
	}
	return img
}

func near(a, b, tol int) bool {
	d := a - b
	return d >= -tol && d <= tol
}

func TestPigoCascadeFindsFace(t *testing.T) {
	cascade := loadTestCascade(t)
	img := loadSample(t)

	got, err := Detect(img, cascade, DefaultDetectOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one face, got %v", got)
	}

	// The face in the sample sits at roughly (38,85) with a 231px side.
	want := FaceBox{X: 38, Y: 85, Width: 231, Height: 231}
	box := got[0]
	if !near(box.X, want.X, 3) || !near(box.Y, want.Y, 3) || !near(box.Width, want.Width, 3) || box.Width != box.Height {
		t.Errorf("face box = %v, want about %v", box, want)
	}
	if !box.Rect().In(img.Bounds()) {
		t.Errorf("face box %v leaves the image %v", box, img.Bounds())
	}
}

func TestPigoCascadeRawHits(t *testing.T) {
	cascade := loadTestCascade(t)
	gray := Grayscale(loadSample(t))
	opts := DefaultDetectOptions()

	hits := cascade.Scan(gray, opts)
	covering := 0
	for _, h := range hits {
		if h.Width != h.Height || h.Width < opts.MinSize {
			t.Errorf("unexpected window %v", h)
		}
		// Windows are anchored at their top-left corner, so hits on the
		// face cover its centre.
		if image.Pt(153, 200).In(h.Rect()) {
			covering++
		}
	}
	if covering < opts.MinNeighbors {
		t.Errorf("%d of %d raw hits cover the face centre, want at least %d", covering, len(hits), opts.MinNeighbors)
	}
}

func TestPigoCascadeRepacksStridedPixels(t *testing.T) {
	cascade := loadTestCascade(t)
	gray := Grayscale(loadSample(t))
	b := gray.Bounds()

	// Same pixels, padded rows.
	padded := &image.Gray{
		Pix:    make([]uint8, (b.Dx()+17)*b.Dy()),
		Stride: b.Dx() + 17,
		Rect:   b,
	}
	for y := 0; y < b.Dy(); y++ {
		copy(padded.Pix[y*padded.Stride:], gray.Pix[y*gray.Stride:y*gray.Stride+b.Dx()])
	}

	opts := DefaultDetectOptions()
	want := cascade.Scan(gray, opts)
	got := cascade.Scan(padded, opts)
	if len(got) != len(want) {
		t.Fatalf("strided scan found %d hits, tight scan %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPigoCascadeIgnoresNoise(t *testing.T) {
	cascade := loadTestCascade(t)

	// Random noise should not look like a frontal face.
	got, err := Detect(noise(320, 240, 3), cascade, DefaultDetectOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("detected %d faces in noise: %v", len(got), got)
	}

	// Images smaller than the minimum window yield nothing.
	if hits := cascade.Scan(Grayscale(noise(40, 40, 1)), DefaultDetectOptions()); len(hits) != 0 {
		t.Errorf("scan of a 40x40 image returned %v", hits)
	}
}

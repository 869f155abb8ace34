package face

import (
	"bytes"
	"fmt"
	"image"
	"reflect"

	"github.com/disintegration/imaging"

	// Extra raster formats beyond the stdlib JPEG, PNG and GIF decoders.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

// MaxPixels caps the decoded size so a tiny compressed upload cannot expand
// into gigabytes of pixels.
const MaxPixels = 100_000_000

// Decode turns uploaded bytes into an opaque NRGBA image. EXIF orientation is
// applied. Anything that is not a recognizable image, zero bytes included,
// yields ErrDecodeFailure; an empty upload is caught before decoding.
func Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no image data", ferrors.ErrDecodeFailure)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ferrors.ErrDecodeFailure, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", ferrors.ErrDecodeFailure, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ferrors.ErrDecodeFailure, err)
	}
	return opaque(img), nil
}

// EncodePNG serializes img losslessly for preview files.
func EncodePNG(img image.Image) ([]byte, error) {
	if !valid(img) {
		return nil, fmt.Errorf("encode: %w", ferrors.ErrDecodeFailure)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// opaque clones img into a new NRGBA anchored at (0,0) with alpha forced to
// 255. The alpha channel carries no information for the pipeline.
func opaque(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}

// valid rejects nil interfaces, typed nil pointers and empty images.
func valid(img image.Image) bool {
	if img == nil {
		return false
	}
	if v := reflect.ValueOf(img); v.Kind() == reflect.Pointer && v.IsNil() {
		return false
	}
	return !img.Bounds().Empty()
}

func requireImage(op string, img image.Image) error {
	if !valid(img) {
		return fmt.Errorf("%s: no image: %w", op, ferrors.ErrDecodeFailure)
	}
	return nil
}

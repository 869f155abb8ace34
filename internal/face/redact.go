package face

import (
	"image"

	"github.com/disintegration/imaging"
)

// BlurSigma is the Gaussian sigma of the redaction blur. imaging sizes its
// kernel as 2*ceil(3*sigma)+1, so 6.5 yields the 41x41 kernel, and 6.5 is
// also the sigma a 41-tap Gaussian gets when none is specified.
const BlurSigma = 6.5

// Redact returns a privacy preview of img.
//
// With no usable boxes the whole image is blurred: a detector miss does not
// prove there is no face, so the preview degrades to obscuring everything.
// Otherwise only the clipped box regions are blurred and composited back;
// every pixel outside the boxes is left byte-identical.
func Redact(img image.Image, boxes []FaceBox) (*image.NRGBA, error) {
	if err := requireImage("redact", img); err != nil {
		return nil, err
	}

	out := opaque(img)

	var regions []image.Rectangle
	for _, box := range boxes {
		if r, ok := box.Clip(out.Bounds()); ok {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return imaging.Blur(out, BlurSigma), nil
	}

	for _, r := range regions {
		blurred := imaging.Blur(imaging.Crop(out, r), BlurSigma)
		out = imaging.Paste(out, blurred, r.Min)
	}
	return out, nil
}

package face

import "image"

// BT.601 luma weights in Q14 fixed point, rounded to nearest.
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
)

// Grayscale converts an opaque NRGBA image to a single intensity channel.
// The returned image has Stride == width.
func Grayscale(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range out {
			p := row[x*4 : x*4+3 : x*4+3]
			out[x] = uint8((uint32(p[0])*lumaR + uint32(p[1])*lumaG + uint32(p[2])*lumaB + 1<<(lumaShift-1)) >> lumaShift)
		}
	}
	return dst
}

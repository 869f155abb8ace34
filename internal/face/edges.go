package face

import (
	"image"
	"image/color"
	"image/draw"
)

// Edge visualization settings.
const (
	EdgeLowThreshold  = 80
	EdgeHighThreshold = 160
	BoxStroke         = 2
)

// Pixel classes used during non-maximum suppression and hysteresis.
const (
	notEdge uint8 = iota
	weakEdge
	strongEdge
)

// Canny returns a binary edge map (0 or 255) of gray using 3x3 Sobel
// gradients with the L1 magnitude |dx|+|dy|, non-maximum suppression along
// the quantized gradient direction, and hysteresis between low and high.
// Borders are replicated when computing gradients.
func Canny(gray *image.Gray, low, high int) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if low > high {
		low, high = high, low
	}

	at := func(x, y int) int32 {
		x = clampInt(x, 0, w-1)
		y = clampInt(y, 0, h-1)
		return int32(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	dx := make([]int32, w*h)
	dy := make([]int32, w*h)
	mag := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs32(gx) + abs32(gy)
		}
	}

	// Magnitudes outside the image count as zero.
	m := func(x, y int) int32 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// tan(22.5deg) in Q15; tan(67.5deg) = tan(22.5deg) + 2.
	const tg22 = 13573
	class := make([]uint8, w*h)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := mag[i]
			if v <= int32(low) {
				continue
			}

			ax, ay := int64(abs32(dx[i])), int64(abs32(dy[i]))<<15
			tg22x := ax * tg22
			var isMax bool
			switch {
			case ay < tg22x:
				isMax = v > m(x-1, y) && v >= m(x+1, y)
			case ay > tg22x+(ax<<16):
				isMax = v > m(x, y-1) && v >= m(x, y+1)
			default:
				s := 1
				if (dx[i] ^ dy[i]) < 0 {
					s = -1
				}
				isMax = v > m(x-s, y-1) && v > m(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if v > int32(high) {
				class[i] = strongEdge
				stack = append(stack, i)
			} else {
				class[i] = weakEdge
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.Pix[i] = 0xFF

		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == weakEdge {
					class[j] = strongEdge
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

// RenderEdges draws the Canny edge map of img (80/160) as a three-channel
// image and outlines every box with a white stroke of BoxStroke pixels laid
// inside the clipped box.
func RenderEdges(img image.Image, boxes []FaceBox) (*image.NRGBA, error) {
	if err := requireImage("render edges", img); err != nil {
		return nil, err
	}

	edges := Canny(Grayscale(opaque(img)), EdgeLowThreshold, EdgeHighThreshold)

	b := edges.Bounds()
	out := image.NewNRGBA(b)
	for i, v := range edges.Pix {
		p := out.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = v, v, v, 0xFF
	}

	for _, box := range boxes {
		strokeRect(out, box, BoxStroke)
	}
	return out, nil
}

func strokeRect(dst *image.NRGBA, box FaceBox, stroke int) {
	r, ok := box.Clip(dst.Bounds())
	if !ok {
		return
	}
	white := image.NewUniform(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke), // top
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y), // left
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, band := range bands {
		draw.Draw(dst, band.Intersect(r), white, image.Point{}, draw.Src)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

package face

import "image"

// overlapThreshold is the intersection-over-union at which two raw hits are
// considered the same face.
const overlapThreshold = 0.2

// groupHits merges overlapping raw hits and keeps groups with at least
// minNeighbors members. Each survivor is the rounded mean of its members.
// Groups are returned in the order their first member appeared.
func groupHits(hits []FaceBox, minNeighbors int) []FaceBox {
	n := len(hits)
	if n == 0 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	rects := make([]image.Rectangle, n)
	for i, h := range hits {
		rects[i] = h.Rect()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if iou(rects[i], rects[j]) >= overlapThreshold {
				ri, rj := find(i), find(j)
				if ri == rj {
					continue
				}
				// Keep the earlier index as root so output order follows input.
				if ri < rj {
					parent[rj] = ri
				} else {
					parent[ri] = rj
				}
			}
		}
	}

	type acc struct {
		x, y, w, h, count int
	}
	sums := make(map[int]*acc)
	var order []int
	for i, h := range hits {
		root := find(i)
		a, ok := sums[root]
		if !ok {
			a = &acc{}
			sums[root] = a
			order = append(order, root)
		}
		a.x += h.X
		a.y += h.Y
		a.w += h.Width
		a.h += h.Height
		a.count++
	}

	var out []FaceBox
	for _, root := range order {
		a := sums[root]
		if a.count < minNeighbors {
			continue
		}
		box := FaceBox{
			X:      roundDiv(a.x, a.count),
			Y:      roundDiv(a.y, a.count),
			Width:  roundDiv(a.w, a.count),
			Height: roundDiv(a.h, a.count),
		}
		if box.Width > 0 && box.Height > 0 {
			out = append(out, box)
		}
	}
	return out
}

func iou(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}

// roundDiv divides rounding half away from zero.
func roundDiv(sum, n int) int {
	if sum >= 0 {
		return (sum + n/2) / n
	}
	return -((-sum + n/2) / n)
}

// Package face implements the face-region pipeline: cascade detection on the
// intensity channel, the Canny edge visualization with detected boxes drawn
// on top, and the privacy blur that redacts detected faces.
//
// Every function returns a freshly allocated image and never mutates its
// input. Images are handled as opaque *image.NRGBA with their origin at (0,0).
package face

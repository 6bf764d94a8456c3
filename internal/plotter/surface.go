// SPDX-License-Identifier: MIT
package plotter

import (
	"encoding/binary"
	"image"

	"golang.org/x/image/draw"
)

// Surface is a row-major grid of packed pixels (see colourmap.Pack).
type Surface struct {
	Width  int
	Height int
	Pix    []uint32
}

// NewSurface allocates a blank surface. Negative sizes are treated as zero.
func NewSurface(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	return &Surface{
		Width:  width,
		Height: height,
		Pix:    make([]uint32, width*height),
	}
}

// At returns the pixel at column x, row y.
func (s *Surface) At(x, y int) uint32 {
	return s.Pix[y*s.Width+x]
}

// Set writes the pixel at column x, row y.
func (s *Surface) Set(x, y int, p uint32) {
	s.Pix[y*s.Width+x] = p
}

// Clear blanks every pixel.
func (s *Surface) Clear() {
	clear(s.Pix)
}

// FillRow paints a whole row.
func (s *Surface) FillRow(y int, p uint32) {
	if y < 0 || y >= s.Height {
		return
	}
	row := s.Pix[y*s.Width : (y+1)*s.Width]
	for i := range row {
		row[i] = p
	}
}

// ScrollOrClear prepares the surface for columns new columns drawn at the
// right edge. With redraw set every pixel left of them is blanked; otherwise
// each row shifts left by columns. The rightmost columns keep stale content
// and must be repainted by the caller.
func (s *Surface) ScrollOrClear(redraw bool, columns int) {
	keep := s.Width - columns
	if keep <= 0 {
		return
	}
	for y := range s.Height {
		row := s.Pix[y*s.Width : (y+1)*s.Width]
		if redraw {
			clear(row[:keep])
		} else if columns > 0 {
			copy(row, row[columns:])
		}
	}
}

// NRGBA copies the surface into an image.
func (s *Surface) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i, p := range s.Pix {
		binary.LittleEndian.PutUint32(img.Pix[i*4:], p)
	}
	return img
}

// StretchFrom scales src to fill s. Used to keep a resized view populated
// until the next redraw renders it from history.
func (s *Surface) StretchFrom(src *Surface) {
	if src == nil || src.Width == 0 || src.Height == 0 || s.Width == 0 || s.Height == 0 {
		return
	}
	in := src.NRGBA()
	out := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.NearestNeighbor.Scale(out, out.Bounds(), in, in.Bounds(), draw.Src, nil)
	for i := range s.Pix {
		s.Pix[i] = binary.LittleEndian.Uint32(out.Pix[i*4:])
	}
}

// Equal reports whether two surfaces hold the same pixels.
func (s *Surface) Equal(o *Surface) bool {
	if s.Width != o.Width || s.Height != o.Height {
		return false
	}
	for i := range s.Pix {
		if s.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

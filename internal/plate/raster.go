// SPDX-License-Identifier: MIT

package plate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"stripchart/internal/plotter"
)

// JPEGQuality is the encoder quality used for JPEG exports.
const JPEGQuality = 95

// Raster is a Canvas over an RGBA image with a white background. Lines are
// one pixel wide and cover the pixels whose centres they pass through.
type Raster struct {
	img   *image.RGBA
	ink   *image.Uniform
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewRaster returns a white canvas of the given size.
func NewRaster(width, height int) (*Raster, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &Raster{
		img:   img,
		ink:   image.NewUniform(color.Black),
		font:  fnt,
		faces: make(map[float64]font.Face),
	}, nil
}

// RGBA returns the canvas image.
func (r *Raster) RGBA() *image.RGBA { return r.img }

// Close releases the font faces.
func (r *Raster) Close() error {
	for size, face := range r.faces {
		face.Close()
		delete(r.faces, size)
	}
	return nil
}

func (r *Raster) face(size float64) (font.Face, error) {
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	r.faces[size] = face
	return face, nil
}

// Image copies img with its top left corner at (x, y).
func (r *Raster) Image(img image.Image, x, y float64) error {
	pt := image.Pt(int(math.Floor(x)), int(math.Floor(y)))
	b := img.Bounds()
	draw.Draw(r.img, b.Sub(b.Min).Add(pt), img, b.Min, draw.Over)
	return nil
}

func (r *Raster) Line(x0, y0, x1, y1 float64) {
	switch {
	case x0 == x1:
		r.vline(x0, math.Min(y0, y1), math.Max(y0, y1))
	case y0 == y1:
		r.hline(y0, math.Min(x0, x1), math.Max(x0, x1))
	default:
		steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
		for i := 0; i <= steps; i++ {
			t := float64(i) / float64(steps)
			r.img.Set(int(math.Floor(x0+t*(x1-x0))), int(math.Floor(y0+t*(y1-y0))), color.Black)
		}
	}
}

func (r *Raster) vline(x, top, bottom float64) {
	col := int(math.Floor(x))
	for row := int(math.Floor(top)); row < int(math.Ceil(bottom)); row++ {
		r.img.Set(col, row, color.Black)
	}
}

func (r *Raster) hline(y, left, right float64) {
	row := int(math.Floor(y))
	for col := int(math.Floor(left)); col < int(math.Ceil(right)); col++ {
		r.img.Set(col, row, color.Black)
	}
}

func (r *Raster) StrokeRect(x, y, w, h float64) {
	r.hline(y, x, x+w)
	r.hline(y+h, x, x+w)
	r.vline(x, y, y+h)
	r.vline(x+w, y, y+h)
}

func (r *Raster) Text(t Text) {
	face, err := r.face(t.Size)
	if err != nil {
		return
	}
	d := &font.Drawer{Face: face, Src: r.ink}
	width := fix(d.MeasureString(t.S))
	m := face.Metrics()
	ascent, descent := fix(m.Ascent), fix(m.Descent)
	dx, dy := textOffset(t, width, ascent, descent)

	if !t.Rotated {
		d.Dst = r.img
		d.Dot = fixed.P(int(math.Round(t.X+dx)), int(math.Round(t.Y+dy)))
		d.DrawString(t.S)
		return
	}

	// Rasterise upright, then turn a quarter anticlockwise into place.
	w := int(math.Ceil(width))
	h := int(math.Ceil(ascent + descent))
	if w < 1 || h < 1 {
		return
	}
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = src
	d.Dot = fixed.P(0, int(math.Round(ascent)))
	d.DrawString(t.S)

	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.Set(x, y, src.RGBAAt(w-1-y, x))
		}
	}
	left := int(math.Round(t.X + dy - ascent))
	top := int(math.Round(t.Y - dx - width))
	draw.Draw(r.img, dst.Bounds().Add(image.Pt(left, top)), dst, image.Point{}, draw.Over)
}

func fix(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// RenderRaster draws the plate for snap into a new image.
func RenderRaster(snap *plotter.Snapshot, title string) (*image.RGBA, error) {
	r, err := NewRaster(Width, Height)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if err := NewLayout(snap, title).Draw(r); err != nil {
		return nil, err
	}
	return r.img, nil
}

// Encode renders snap and writes it to w in the given format.
func Encode(w io.Writer, snap *plotter.Snapshot, title string, format Format) error {
	if format == PDF {
		return RenderVector(w, snap, title)
	}
	img, err := RenderRaster(snap, title)
	if err != nil {
		return err
	}
	switch format {
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

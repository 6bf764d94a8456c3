// SPDX-License-Identifier: MIT

package plate

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	"stripchart/internal/plotter"
)

// Helvetica metrics in thousandths of an em.
const (
	helveticaAscent  = 718
	helveticaDescent = 207
)

// Vector is a Canvas over a single page PDF document, one point per pixel.
type Vector struct {
	doc    *fpdf.Fpdf
	images int
}

// NewVector returns a blank page of the given size in points.
func NewVector(width, height float64) *Vector {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "", labelFontSize)
	doc.SetDrawColor(0, 0, 0)
	doc.SetTextColor(0, 0, 0)
	doc.SetLineWidth(1)
	return &Vector{doc: doc}
}

// Image embeds img losslessly at its pixel size.
func (v *Vector) Image(img image.Image, x, y float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	v.images++
	name := fmt.Sprintf("plot%d", v.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	v.doc.RegisterImageOptionsReader(name, opts, &buf)
	b := img.Bounds()
	v.doc.ImageOptions(name, x, y, float64(b.Dx()), float64(b.Dy()), false, opts, 0, "")
	return v.doc.Error()
}

func (v *Vector) Line(x0, y0, x1, y1 float64) {
	v.doc.Line(x0, y0, x1, y1)
}

func (v *Vector) StrokeRect(x, y, w, h float64) {
	v.doc.Rect(x, y, w, h, "D")
}

func (v *Vector) Text(t Text) {
	v.doc.SetFontSize(t.Size)
	width := v.doc.GetStringWidth(t.S)
	dx, dy := textOffset(t, width, t.Size*helveticaAscent/1000, t.Size*helveticaDescent/1000)
	if !t.Rotated {
		v.doc.Text(t.X+dx, t.Y+dy, t.S)
		return
	}
	v.doc.TransformBegin()
	v.doc.TransformRotate(90, t.X, t.Y)
	v.doc.Text(t.X+dx, t.Y+dy, t.S)
	v.doc.TransformEnd()
}

// WriteTo writes the finished document to w.
func (v *Vector) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	err := v.doc.Output(cw)
	return cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// RenderVector draws the plate for snap as a PDF and writes it to w.
func RenderVector(w io.Writer, snap *plotter.Snapshot, title string) error {
	v := NewVector(Width, Height)
	if err := NewLayout(snap, title).Draw(v); err != nil {
		return err
	}
	if _, err := v.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

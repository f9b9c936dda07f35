package pagination

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/go-pdf/fpdf"
)

// Assemble writes one A4 portrait page per image. Each image spans the page
// width; an image taller than the page is scaled down to fit and centred.
func Assemble(pages []image.Image) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyContent
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("pagination: encode page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opt, &buf)

		x, y, w, h := placement(img.Bounds().Dx(), img.Bounds().Dy())
		pdf.AddPage()
		pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("pagination: page %d: %w", i+1, err)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Pixel rounding of the page height can overshoot A4 by a fraction of a
// millimetre; that much is absorbed instead of shrinking the page.
const roundingSlackMM = 0.5

// placement maps a pixel slice onto the A4 page in millimetres.
func placement(px, py int) (x, y, w, h float64) {
	w = A4WidthMM
	h = A4WidthMM * float64(py) / float64(px)
	if h <= A4HeightMM+roundingSlackMM {
		return 0, 0, w, math.Min(h, A4HeightMM)
	}
	w = A4HeightMM * float64(px) / float64(py)
	h = A4HeightMM
	x = (A4WidthMM - w) / 2
	return x, 0, w, h
}

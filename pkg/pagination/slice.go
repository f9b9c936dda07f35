package pagination

import (
	"fmt"
	"image"
	"image/draw"
)

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Slice cuts img into one image per page. Every returned image is exactly
// opts.PageWidth pixels wide.
func Slice(img image.Image, pages []Page, opts Options) ([]image.Image, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != opts.PageWidth {
		return nil, fmt.Errorf("pagination: bitmap is %dpx wide, want %dpx", b.Dx(), opts.PageWidth)
	}

	out := make([]image.Image, 0, len(pages))
	for i, p := range pages {
		if p.Top < 0 || p.Bottom > b.Dy() || p.Height() <= 0 {
			return nil, fmt.Errorf("pagination: page %d [%d,%d) outside bitmap height %d", i, p.Top, p.Bottom, b.Dy())
		}
		r := image.Rect(b.Min.X, b.Min.Y+p.Top, b.Max.X, b.Min.Y+p.Bottom)
		if si, ok := img.(subImager); ok {
			out = append(out, si.SubImage(r))
			continue
		}
		dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
		out = append(out, dst)
	}
	return out, nil
}

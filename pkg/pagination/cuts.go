package pagination

import (
	"errors"
	"math"
	"sort"
)

// A4 proportions in millimetres.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

const (
	DefaultPageWidth = 794 // A4 at 96 dpi
	DefaultAbove     = 0.15
	DefaultBelow     = 0.05
)

var (
	ErrEmptyContent   = errors.New("pagination: content has no height")
	ErrInvalidOptions = errors.New("pagination: invalid options")
)

// Options controls page geometry. Zero values fall back to the defaults.
type Options struct {
	// PageWidth is the pixel width of the bitmap, i.e. the width of one A4 page.
	PageWidth int
	// PageHeight is the nominal page height in pixels. Defaults to PageWidth
	// scaled by the A4 aspect ratio.
	PageHeight int
	// Above and Below size the search window around an ideal cut, as a
	// fraction of PageHeight.
	Above float64
	Below float64
}

func (o Options) withDefaults() (Options, error) {
	if o.PageWidth == 0 {
		o.PageWidth = DefaultPageWidth
	}
	if o.PageWidth < 0 || o.PageHeight < 0 || o.Above < 0 || o.Below < 0 || o.Above >= 1 {
		return o, ErrInvalidOptions
	}
	if o.PageHeight == 0 {
		o.PageHeight = int(math.Round(float64(o.PageWidth) * A4HeightMM / A4WidthMM))
	}
	if o.Above == 0 {
		o.Above = DefaultAbove
	}
	if o.Below == 0 {
		o.Below = DefaultBelow
	}
	return o, nil
}

// Page is the vertical extent [Top, Bottom) of one page in bitmap pixels.
// Snapped is set when Bottom was moved onto a section boundary.
type Page struct {
	Top     int  `json:"top"`
	Bottom  int  `json:"bottom"`
	Snapped bool `json:"snapped"`
}

func (p Page) Height() int { return p.Bottom - p.Top }

// PlanCuts resolves page extents for content of the given height. Boundaries
// are candidate cut offsets (section starts) in the same coordinate space.
func PlanCuts(contentHeight int, boundaries []int, opts Options) ([]Page, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if contentHeight <= 0 {
		return nil, ErrEmptyContent
	}

	candidates := normalizeBoundaries(boundaries, contentHeight)
	ph := opts.PageHeight
	above := int(math.Floor(opts.Above * float64(ph)))
	below := int(math.Floor(opts.Below * float64(ph)))

	// A remainder within Below of one page is kept whole on the last page;
	// Assemble scales it to fit. Cuts never leave a tail shorter than Below.
	var pages []Page
	pos := 0
	for contentHeight-pos > ph+below {
		ideal := pos + ph
		cut, snapped := nearestBoundary(candidates, ideal, ideal-above, ideal+below, pos, contentHeight-below)
		if !snapped {
			cut = ideal
		}
		pages = append(pages, Page{Top: pos, Bottom: cut, Snapped: snapped})
		pos = cut
	}
	pages = append(pages, Page{Top: pos, Bottom: contentHeight})
	return pages, nil
}

// Offsets returns the bottom edge of every page.
func Offsets(pages []Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.Bottom
	}
	return out
}

// normalizeBoundaries sorts and de-duplicates the offsets, dropping any that
// do not lie strictly inside the content.
func normalizeBoundaries(in []int, height int) []int {
	out := make([]int, 0, len(in))
	for _, b := range in {
		if b > 0 && b < height {
			out = append(out, b)
		}
	}
	sort.Ints(out)
	j := 0
	for i, b := range out {
		if i == 0 || b != out[j-1] {
			out[j] = b
			j++
		}
	}
	return out[:j]
}

// nearestBoundary returns the candidate closest to ideal inside [lo, hi] that
// also lies strictly between pos and limit. Ties go to the earlier offset.
func nearestBoundary(candidates []int, ideal, lo, hi, pos, limit int) (int, bool) {
	if lo <= pos {
		lo = pos + 1
	}
	if hi >= limit {
		hi = limit - 1
	}
	start := sort.SearchInts(candidates, lo)
	best, found := 0, false
	bestDist := 0
	for i := start; i < len(candidates) && candidates[i] <= hi; i++ {
		d := candidates[i] - ideal
		if d < 0 {
			d = -d
		}
		if !found || d < bestDist {
			best, bestDist, found = candidates[i], d, true
		}
	}
	return best, found
}

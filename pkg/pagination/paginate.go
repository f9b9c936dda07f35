package pagination

import "image"

// Result is the outcome of paginating one bitmap.
type Result struct {
	PDF     []byte        `json:"-"`
	Pages   []Page        `json:"pages"`
	Offsets []int         `json:"offsets"`
	Images  []image.Image `json:"-"`
}

// Paginate plans cuts for bitmap, slices it and assembles the PDF. The
// content height is the bitmap height.
func Paginate(bitmap image.Image, boundaries []int, opts Options) (*Result, error) {
	pages, err := PlanCuts(bitmap.Bounds().Dy(), boundaries, opts)
	if err != nil {
		return nil, err
	}
	imgs, err := Slice(bitmap, pages, opts)
	if err != nil {
		return nil, err
	}
	pdf, err := Assemble(imgs)
	if err != nil {
		return nil, err
	}
	return &Result{PDF: pdf, Pages: pages, Offsets: Offsets(pages), Images: imgs}, nil
}

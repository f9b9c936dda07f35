// Package pagination splits a tall rendered bitmap of a CV into A4 pages.
//
// A page is cut at the section boundary nearest to the ideal fixed-height cut
// line, as long as that boundary lies within a tolerance window around it
// (15% above, 5% below by default). Without a usable boundary the page is cut
// at the ideal line. The slices are then placed one per page into a PDF.
//
//	res, err := pagination.Paginate(bitmap, offsets, pagination.Options{PageWidth: 794})
//	os.WriteFile("cv.pdf", res.PDF, 0o644)
package pagination

package infrastructure

import (
	"bytes"
	"errors"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("output is not a PDF document")

// CountPages checks the PDF signature and returns the number of pages.
func CountPages(b []byte) (int, error) {
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		return 0, ErrNotPDF
	}
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

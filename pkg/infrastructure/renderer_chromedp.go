package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const renderTimeout = 60 * time.Second

// BoundarySelector matches the elements a page may be cut above.
const BoundarySelector = "h1,h2,h3,section,[data-section],.cv-entry"

const boundaryScript = `(() => {
  const out = [];
  document.querySelectorAll(%q).forEach(el => {
    const r = el.getBoundingClientRect();
    if (r.height > 0) out.push(r.top + window.scrollY);
  });
  return out;
})()`

type ChromedpRenderer struct {
	execPath string
}

// NewChromedpRenderer uses execPath as the browser binary when non-empty.
func NewChromedpRenderer(execPath string) *ChromedpRenderer {
	return &ChromedpRenderer{execPath: execPath}
}

// Capture is a full-page screenshot plus the vertical offsets of section
// boundaries, both in bitmap pixels.
type Capture struct {
	PNG        []byte
	Bitmap     image.Image
	Boundaries []int
	Width      int
	Height     int
}

func (r *ChromedpRenderer) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	tctx, cancelTimeout := context.WithTimeout(cctx, renderTimeout)
	return tctx, func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	}
}

// writeHTML stores html in a fresh temp dir and returns its file:// URL.
func writeHTML(html string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "cv-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmpDir) }
	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		cleanup()
		return "", nil, err
	}
	return "file://" + htmlPath, cleanup, nil
}

// RenderHTMLToPDF prints html with the browser's own A4 pagination.
func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	bctx, cancel := r.browser(ctx)
	defer cancel()

	htmlURL, cleanup, err := writeHTML(html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var pdfBuf []byte
	err = chromedp.Run(bctx,
		chromedp.Navigate(htmlURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// Capture lays html out at the given viewport width and screenshots the
// whole document.
func (r *ChromedpRenderer) Capture(ctx context.Context, html string, width int) (*Capture, error) {
	if width <= 0 {
		return nil, fmt.Errorf("capture: invalid width %d", width)
	}
	bctx, cancel := r.browser(ctx)
	defer cancel()

	htmlURL, cleanup, err := writeHTML(html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var (
		offsets []float64
		shot    []byte
	)
	err = chromedp.Run(bctx,
		chromedp.EmulateViewport(int64(width), int64(math.Round(float64(width)*297/210))),
		chromedp.Navigate(htmlURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(boundaryScript, BoundarySelector), &offsets),
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("capture: decode screenshot: %w", err)
	}
	b := img.Bounds()

	// CSS pixels -> bitmap pixels
	scale := float64(b.Dx()) / float64(width)
	boundaries := make([]int, 0, len(offsets))
	for _, o := range offsets {
		boundaries = append(boundaries, int(math.Round(o*scale)))
	}

	return &Capture{
		PNG:        shot,
		Bitmap:     img,
		Boundaries: boundaries,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}

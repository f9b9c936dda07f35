package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dyd/internal/domain"
	"dyd/internal/model"
	"dyd/pkg/cvtemplate"
	"dyd/pkg/docx"
	infra "dyd/pkg/infrastructure"
	"dyd/pkg/pagination"

	"github.com/google/uuid"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatHTML = "html"

	ModeSmart = "smart"
	ModePrint = "print"
)

const renderAttempts = 3

type ExportRequest struct {
	Format   string `json:"format"`
	Mode     string `json:"mode,omitempty"`
	Template string `json:"template,omitempty"`
}

func (r *ExportRequest) normalize(cv model.CV) error {
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	if r.Format == "" {
		r.Format = FormatPDF
	}
	switch r.Format {
	case FormatPDF:
		r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
		if r.Mode == "" {
			r.Mode = ModeSmart
		}
		if r.Mode != ModeSmart && r.Mode != ModePrint {
			return domain.NewValidationError(fmt.Sprintf("unknown mode %q", r.Mode), "mode")
		}
	case FormatDOCX, FormatHTML:
		r.Mode = ""
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown format %q", r.Format), "format")
	}
	theme := r.Template
	if theme == "" {
		theme = cv.Template
	}
	resolved, err := cvtemplate.Resolve(theme)
	if err != nil {
		return domain.NewValidationError(err.Error(), "template")
	}
	r.Template = resolved
	return nil
}

// Document is one rendered CV file.
type Document struct {
	Data        []byte
	ContentType string
	Ext         string
	Pages       int
	Mode        string
	Template    string
}

// RenderDocument renders cv in the requested format. pageWidth is the
// browser viewport used by the smart PDF mode.
func RenderDocument(ctx context.Context, r Renderer, cv model.CV, req ExportRequest, pageWidth int, log *slog.Logger) (*Document, error) {
	if err := req.normalize(cv); err != nil {
		return nil, err
	}
	if req.Format == FormatDOCX {
		var buf bytes.Buffer
		if err := docx.Write(&buf, cv); err != nil {
			return nil, err
		}
		return &Document{Data: buf.Bytes(), ContentType: docx.ContentType, Ext: "docx", Template: req.Template}, nil
	}

	html, err := cvtemplate.Render(cv, req.Template)
	if err != nil {
		return nil, err
	}
	if req.Format == FormatHTML {
		return &Document{Data: []byte(html), ContentType: "text/html; charset=utf-8", Ext: "html", Template: req.Template}, nil
	}
	if r == nil {
		return nil, fmt.Errorf("export: no renderer configured")
	}

	doc := &Document{ContentType: "application/pdf", Ext: "pdf", Mode: req.Mode, Template: req.Template}
	err = retry(ctx, renderAttempts, log, func() error {
		var data []byte
		var rerr error
		if req.Mode == ModeSmart {
			data, rerr = smartPDF(ctx, r, html, pageWidth)
		} else {
			data, rerr = r.RenderHTMLToPDF(ctx, html)
		}
		if rerr != nil {
			return rerr
		}
		pages, rerr := infra.CountPages(data)
		if rerr != nil {
			return fmt.Errorf("invalid PDF output (len=%d): %w", len(data), rerr)
		}
		doc.Data, doc.Pages = data, pages
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func smartPDF(ctx context.Context, r Renderer, html string, pageWidth int) ([]byte, error) {
	capture, err := r.Capture(ctx, html, pageWidth)
	if err != nil {
		return nil, err
	}
	// The bitmap may be wider than the viewport on high-DPI screens.
	res, err := pagination.Paginate(capture.Bitmap, capture.Boundaries, pagination.Options{PageWidth: capture.Width})
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// retry runs fn up to attempts times with exponential backoff starting at
// one second.
func retry(ctx context.Context, attempts int, log *slog.Logger, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("render attempt failed", "attempt", i+1, "error", err)
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * backoffUnit
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("rendering failed after %d attempts: %w", attempts, err)
}

var backoffUnit = time.Second

// ExportService renders CVs and uploads the files.
type ExportService struct {
	cvs       CVRepo
	exports   ExportRepo
	renderer  Renderer
	store     ObjectStore
	pageWidth int
	log       *slog.Logger
}

func NewExportService(cvs CVRepo, exports ExportRepo, renderer Renderer, store ObjectStore, pageWidth int, log *slog.Logger) *ExportService {
	if pageWidth <= 0 {
		pageWidth = pagination.DefaultPageWidth
	}
	return &ExportService{cvs: cvs, exports: exports, renderer: renderer, store: store, pageWidth: pageWidth, log: log}
}

func (s *ExportService) Export(ctx context.Context, userID, cvID uuid.UUID, req ExportRequest) (*domain.Export, error) {
	rec, err := ownedCV(ctx, s.cvs, userID, cvID)
	if err != nil {
		return nil, err
	}
	doc, err := RenderDocument(ctx, s.renderer, rec.Data, req, s.pageWidth, s.log)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	path := fmt.Sprintf("exports/%s/%s/%s.%s", userID, cvID, id, doc.Ext)
	url, err := s.store.Put(ctx, path, doc.ContentType, doc.Data)
	if err != nil {
		return nil, err
	}

	exp := &domain.Export{
		ID:        id,
		UserID:    userID,
		CVID:      cvID,
		Format:    doc.Ext,
		Mode:      doc.Mode,
		Template:  doc.Template,
		Pages:     doc.Pages,
		Size:      len(doc.Data),
		Path:      path,
		URL:       url,
		CreatedAt: time.Now(),
	}
	if err := s.exports.CreateExport(ctx, exp); err != nil {
		return nil, err
	}
	s.log.Info("cv exported", "cv_id", cvID, "format", exp.Format, "mode", exp.Mode, "pages", exp.Pages, "size", exp.Size)
	return exp, nil
}

func (s *ExportService) List(ctx context.Context, userID, cvID uuid.UUID) ([]domain.Export, error) {
	if _, err := ownedCV(ctx, s.cvs, userID, cvID); err != nil {
		return nil, err
	}
	return s.exports.ListExports(ctx, userID, cvID)
}

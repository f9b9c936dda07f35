// Package docx writes a CV as a minimal WordprocessingML (.docx) document.
//
// Only the three parts Word requires are emitted: the content types, the
// package relationships and the main document. Formatting is applied with
// direct run properties so no styles part is needed.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"dyd/internal/model"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const (
	docOpen  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr></w:body></w:document>`
)

// ContentType is the MIME type of the generated file.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// run sizes are in half-points
const (
	sizeName    = 40
	sizeHeading = 26
	sizeTitle   = 22
	sizeBody    = 20
)

type body struct {
	buf bytes.Buffer
}

func (b *body) para(text string, size int, bold, italic bool) {
	if text == "" {
		return
	}
	b.buf.WriteString(`<w:p><w:r><w:rPr>`)
	if bold {
		b.buf.WriteString(`<w:b/>`)
	}
	if italic {
		b.buf.WriteString(`<w:i/>`)
	}
	b.buf.WriteString(`<w:sz w:val="`)
	b.buf.WriteString(strconv.Itoa(size))
	b.buf.WriteString(`"/></w:rPr><w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b.buf, []byte(text))
	b.buf.WriteString(`</w:t></w:r></w:p>`)
}

func (b *body) heading(text string) { b.para(text, sizeHeading, true, false) }
func (b *body) text(text string)    { b.para(text, sizeBody, false, false) }
func (b *body) bullet(text string)  { b.para("• "+text, sizeBody, false, false) }

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Document returns the word/document.xml part for cv.
func Document(cv model.CV) []byte {
	var b body
	b.buf.WriteString(docOpen)

	p := cv.Personal
	b.para(p.Name, sizeName, true, false)
	b.para(p.Headline, sizeTitle, false, true)
	links := make([]string, 0, len(p.Links))
	for _, l := range p.Links {
		links = append(links, l.URL)
	}
	b.text(joinNonEmpty(" | ", p.Email, p.Phone, p.Location, strings.Join(links, " | ")))

	if cv.Summary != "" {
		b.heading("Profile")
		b.text(cv.Summary)
	}
	if len(cv.Experience) > 0 {
		b.heading("Experience")
		for _, r := range cv.Experience {
			b.para(joinNonEmpty(" · ", r.Title, r.Company), sizeTitle, true, false)
			b.para(joinNonEmpty(" · ", r.Period(), r.Location), sizeBody, false, true)
			b.text(r.Summary)
			for _, bl := range r.Bullets {
				b.bullet(bl)
			}
		}
	}
	if len(cv.Education) > 0 {
		b.heading("Education")
		for _, e := range cv.Education {
			b.para(e.School, sizeTitle, true, false)
			b.para(joinNonEmpty(" · ", joinNonEmpty(", ", e.Degree, e.Field), e.Period()), sizeBody, false, true)
			b.text(e.Notes)
		}
	}
	if len(cv.Skills) > 0 {
		b.heading("Skills")
		b.text(strings.Join(cv.Skills, " · "))
	}
	if len(cv.Languages) > 0 {
		b.heading("Languages")
		for _, l := range cv.Languages {
			b.bullet(joinNonEmpty(" – ", l.Name, l.Level))
		}
	}
	if len(cv.Certifications) > 0 {
		b.heading("Certifications")
		for _, c := range cv.Certifications {
			b.bullet(joinNonEmpty(" · ", c.Name, c.Issuer, c.Date))
		}
	}

	b.buf.WriteString(docClose)
	return b.buf.Bytes()
}

// Write writes cv as a .docx package to w.
func Write(w io.Writer, cv model.CV) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypes)},
		{"_rels/.rels", []byte(packageRels)},
		{"word/document.xml", Document(cv)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(p.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

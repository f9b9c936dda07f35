package cvtemplate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"dyd/internal/model"

	"golang.org/x/net/publicsuffix"
)

//go:embed themes/*.html themes/*.css
var themeFS embed.FS

const DefaultTheme = "modern"

// Themes lists the visual templates a CV can be rendered with.
var Themes = []string{"modern", "classic", "compact"}

var ErrUnknownTemplate = errors.New("cvtemplate: unknown template")

var layout = template.Must(template.New("layout.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(themeFS, "themes/layout.html"))

// LinkView is a contact link with a short display label.
type LinkView struct {
	Label string
	URL   string
}

type view struct {
	Theme string
	CSS   template.CSS
	CV    model.CV
	Links []LinkView
}

// Resolve maps an empty theme to the default and rejects unknown names.
func Resolve(theme string) (string, error) {
	if theme == "" {
		return DefaultTheme, nil
	}
	for _, t := range Themes {
		if t == theme {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, theme)
}

// Render produces a standalone HTML document for cv with the theme's CSS
// inlined. An empty theme falls back to the CV's own template choice.
func Render(cv model.CV, theme string) (string, error) {
	if theme == "" {
		theme = cv.Template
	}
	theme, err := Resolve(theme)
	if err != nil {
		return "", err
	}
	css, err := themeFS.ReadFile("themes/" + theme + ".css")
	if err != nil {
		return "", err
	}

	v := view{Theme: theme, CSS: template.CSS(css), CV: cv}
	for _, l := range cv.Personal.Links {
		if l.URL == "" {
			continue
		}
		label := l.Label
		if label == "" {
			label = LinkLabel(l.URL)
		}
		v.Links = append(v.Links, LinkView{Label: label, URL: l.URL})
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LinkLabel shortens a URL to its registrable domain plus path, e.g.
// "https://www.github.com/ada" -> "github.com/ada".
func LinkLabel(raw string) string {
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	label := strings.TrimPrefix(host, "www.")
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		label = etld
	}
	if p := strings.Trim(parsed.Path, "/"); p != "" {
		label += "/" + p
	}
	return label
}
